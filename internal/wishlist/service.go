package wishlist

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront/internal/optimistic"
	"github.com/angelmondragon/storefront/pkg/cache"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

const resource = "wishlist"

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Repo   *Repository
	Runner *optimistic.Runner
}

// Service exposes the shopper's wishlist with optimistic mutations.
type Service interface {
	Get(ctx context.Context) (types.Wishlist, error)
	Add(ctx context.Context, productID string) (types.Wishlist, error)
	Remove(ctx context.Context, productID string) (types.Wishlist, error)
	Toggle(ctx context.Context, productID string) (types.Wishlist, bool, error)
	Contains(ctx context.Context, productID string) (bool, error)
	MergeGuest(ctx context.Context, productIDs []string) (types.Wishlist, error)
}

type service struct {
	repo   *Repository
	runner *optimistic.Runner
	cache  *cache.Cache
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
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

func (s *service) Get(ctx context.Context) (types.Wishlist, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyWishlist, s.repo.Get)
}

func (s *service) Add(ctx context.Context, productID string) (types.Wishlist, error) {
	productID = strings.TrimSpace(productID)
	product := s.product(ctx, productID)

	return optimistic.Run(ctx, s.runner, optimistic.Mutation[types.Wishlist]{
		Resource: resource,
		Validate: requireProductID(productID),
		Patches: []optimistic.Patch[types.Wishlist]{
			optimistic.On(cache.KeyWishlist, func(current types.Wishlist, _ bool) (types.Wishlist, bool) {
				return current.With(product), true
			}, serverWishlist),
		},
		Call: func(ctx context.Context) (types.Wishlist, error) {
			return s.repo.Add(ctx, productID)
		},
		SuccessMessage: "saved to wishlist",
		FailureMessage: "could not update wishlist",
	})
}

// Remove drops productID. Removing a product the loaded wishlist does not
// hold changes nothing and sends nothing.
func (s *service) Remove(ctx context.Context, productID string) (types.Wishlist, error) {
	productID = strings.TrimSpace(productID)
	return optimistic.Run(ctx, s.runner, optimistic.Mutation[types.Wishlist]{
		Resource: resource,
		Validate: requireProductID(productID),
		Settled: func(ctx context.Context) (types.Wishlist, bool) {
			current, ok, err := cache.Get[types.Wishlist](ctx, s.cache, cache.KeyWishlist)
			return current, err == nil && ok && !current.Contains(productID)
		},
		Patches: []optimistic.Patch[types.Wishlist]{
			optimistic.On(cache.KeyWishlist, func(current types.Wishlist, cached bool) (types.Wishlist, bool) {
				if !cached {
					return current, false
				}
				return current.Without(productID), true
			}, serverWishlist),
		},
		Call: func(ctx context.Context) (types.Wishlist, error) {
			return s.repo.Remove(ctx, productID)
		},
		SuccessMessage: "removed from wishlist",
		FailureMessage: "could not update wishlist",
	})
}

// Toggle adds productID when absent and removes it otherwise. The returned
// flag reports whether the product is now on the wishlist.
func (s *service) Toggle(ctx context.Context, productID string) (types.Wishlist, bool, error) {
	present, err := s.Contains(ctx, productID)
	if err != nil {
		return types.Wishlist{}, false, err
	}
	if present {
		w, err := s.Remove(ctx, productID)
		return w, w.Contains(productID), err
	}
	w, err := s.Add(ctx, productID)
	return w, w.Contains(productID), err
}

func (s *service) Contains(ctx context.Context, productID string) (bool, error) {
	productID = strings.TrimSpace(productID)
	if err := requireProductID(productID)(); err != nil {
		return false, err
	}
	w, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return w.Contains(productID), nil
}

func (s *service) MergeGuest(ctx context.Context, productIDs []string) (types.Wishlist, error) {
	ids := make([]string, 0, len(productIDs))
	seen := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; id == "" || dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return s.Get(ctx)
	}

	return optimistic.Run(ctx, s.runner, optimistic.Mutation[types.Wishlist]{
		Resource: resource,
		Patches: []optimistic.Patch[types.Wishlist]{
			optimistic.On[types.Wishlist, types.Wishlist](cache.KeyWishlist, nil, serverWishlist),
		},
		Call: func(ctx context.Context) (types.Wishlist, error) {
			return s.repo.Merge(ctx, ids)
		},
		FailureMessage: "could not merge guest wishlist",
	})
}

func (s *service) product(ctx context.Context, productID string) types.Product {
	if productID != "" {
		if p, ok, err := cache.Get[types.Product](ctx, s.cache, cache.ProductKey(productID)); err == nil && ok {
			return p
		}
	}
	return types.Product{ID: productID}
}

func requireProductID(productID string) func() error {
	return func() error {
		if productID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		return nil
	}
}

func serverWishlist(_ types.Wishlist, result types.Wishlist) (types.Wishlist, bool) {
	return result, true
}
