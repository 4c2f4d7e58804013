package cart

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront/internal/optimistic"
	"github.com/angelmondragon/storefront/pkg/cache"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

const resource = "cart"

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo   *Repository
	Runner *optimistic.Runner
}

// Service exposes the shopper's cart with optimistic mutations.
type Service interface {
	Get(ctx context.Context) (types.Cart, error)
	Add(ctx context.Context, in AddItemInput) (types.Cart, error)
	UpdateQuantity(ctx context.Context, itemID string, quantity int) (types.Cart, error)
	Remove(ctx context.Context, itemID string) (types.Cart, error)
	MergeGuest(ctx context.Context, items []AddItemInput) (types.Cart, error)
}

type service struct {
	repo   *Repository
	runner *optimistic.Runner
	cache  *cache.Cache
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.Runner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mutation runner is required")
	}
	return &service{
		repo:   params.Repo,
		runner: params.Runner,
		cache:  params.Runner.Cache(),
	}, nil
}

func (s *service) Get(ctx context.Context) (types.Cart, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyCart, s.repo.Get)
}

// Add bumps the matching line or appends a placeholder line, then replaces
// the cart with the server's answer.
func (s *service) Add(ctx context.Context, in AddItemInput) (types.Cart, error) {
	in = in.normalize()
	summary := s.productSummary(ctx, in)

	return optimistic.Run(ctx, s.runner, optimistic.Mutation[types.Cart]{
		Resource: resource,
		Validate: in.Validate,
		Patches: []optimistic.Patch[types.Cart]{
			optimistic.On(cache.KeyCart, func(current types.Cart, _ bool) (types.Cart, bool) {
				return addLine(current, in, summary), true
			}, serverCart),
		},
		Call: func(ctx context.Context) (types.Cart, error) {
			return s.repo.Add(ctx, in)
		},
		SuccessMessage: "added to cart",
		FailureMessage: "could not add to cart",
	})
}

// UpdateQuantity sets the quantity of one line. Zero removes the line.
func (s *service) UpdateQuantity(ctx context.Context, itemID string, quantity int) (types.Cart, error) {
	itemID = strings.TrimSpace(itemID)
	if quantity == 0 {
		return s.Remove(ctx, itemID)
	}

	return optimistic.Run(ctx, s.runner, optimistic.Mutation[types.Cart]{
		Resource: resource,
		Validate: func() error {
			if itemID == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required")
			}
			if quantity < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
					WithDetails(map[string]string{"quantity": "must be at least 1"})
			}
			return nil
		},
		Patches: []optimistic.Patch[types.Cart]{
			optimistic.On(cache.KeyCart, func(current types.Cart, cached bool) (types.Cart, bool) {
				idx := current.IndexOf(itemID)
				if !cached || idx < 0 {
					return current, false
				}
				next := current.Clone()
				next.Items[idx].Quantity = quantity
				next.Recalculate()
				return next, true
			}, serverCart),
		},
		Call: func(ctx context.Context) (types.Cart, error) {
			return s.repo.UpdateQuantity(ctx, itemID, quantity)
		},
		FailureMessage: "could not update quantity",
	})
}

func (s *service) Remove(ctx context.Context, itemID string) (types.Cart, error) {
	itemID = strings.TrimSpace(itemID)

	return optimistic.Run(ctx, s.runner, optimistic.Mutation[types.Cart]{
		Resource: resource,
		Validate: func() error {
			if itemID == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required")
			}
			return nil
		},
		Patches: []optimistic.Patch[types.Cart]{
			optimistic.On(cache.KeyCart, func(current types.Cart, cached bool) (types.Cart, bool) {
				idx := current.IndexOf(itemID)
				if !cached || idx < 0 {
					return current, false
				}
				next := current.Clone()
				next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
				next.Recalculate()
				return next, true
			}, serverCart),
		},
		Call: func(ctx context.Context) (types.Cart, error) {
			return s.repo.Remove(ctx, itemID)
		},
		SuccessMessage: "removed from cart",
		FailureMessage: "could not remove item",
	})
}

// MergeGuest folds lines collected before sign-in into the account cart.
func (s *service) MergeGuest(ctx context.Context, items []AddItemInput) (types.Cart, error) {
	valid := make([]AddItemInput, 0, len(items))
	for _, item := range items {
		item = item.normalize()
		if item.Validate() == nil {
			valid = append(valid, item)
		}
	}
	if len(valid) == 0 {
		return s.Get(ctx)
	}

	return optimistic.Run(ctx, s.runner, optimistic.Mutation[types.Cart]{
		Resource: resource,
		Patches: []optimistic.Patch[types.Cart]{
			optimistic.On[types.Cart, types.Cart](cache.KeyCart, nil, serverCart),
		},
		Call: func(ctx context.Context) (types.Cart, error) {
			return s.repo.Merge(ctx, valid)
		},
		FailureMessage: "could not merge guest cart",
	})
}

// productSummary picks the best snapshot for a placeholder line: the
// product passed in, then the cached product, then just the id.
func (s *service) productSummary(ctx context.Context, in AddItemInput) types.ProductSummary {
	if in.Product != nil {
		return in.Product.Summary()
	}
	if in.ProductID != "" {
		if product, ok, err := cache.Get[types.Product](ctx, s.cache, cache.ProductKey(in.ProductID)); err == nil && ok {
			return product.Summary()
		}
	}
	return types.ProductSummary{ID: in.ProductID}
}

func addLine(current types.Cart, in AddItemInput, summary types.ProductSummary) types.Cart {
	next := current.Clone()
	for i, item := range next.Items {
		if item.Matches(in.ProductID, in.Color, in.Size) {
			next.Items[i].Quantity += in.Quantity
			next.Recalculate()
			return next
		}
	}
	next.Items = append(next.Items, types.CartItem{
		ID:       uuid.NewString(),
		Product:  summary,
		Color:    in.Color,
		Size:     in.Size,
		Quantity: in.Quantity,
	})
	next.Recalculate()
	return next
}

func serverCart(_ types.Cart, result types.Cart) (types.Cart, bool) {
	return result, true
}
