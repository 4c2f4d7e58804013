package orders

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront/internal/optimistic"
	"github.com/angelmondragon/storefront/pkg/cache"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

const resource = "orders"

// CartReader is the part of the cart service checkout needs.
type CartReader interface {
	Get(ctx context.Context) (types.Cart, error)
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Repo   *Repository
	Runner *optimistic.Runner
	Cart   CartReader
}

// Service exposes order history, checkout and cancellation.
type Service interface {
	List(ctx context.Context) ([]types.Order, error)
	Get(ctx context.Context, id string) (types.Order, error)
	Place(ctx context.Context, in CheckoutInput) (types.Order, error)
	Cancel(ctx context.Context, id string) (types.Order, error)
	Track(ctx context.Context, id string) (Tracking, error)
}

type service struct {
	repo   *Repository
	runner *optimistic.Runner
	cache  *cache.Cache
	cart   CartReader
}

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repo is required")
	}
	if params.Runner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mutation runner is required")
	}
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart reader is required")
	}
	return &service{
		repo:   params.Repo,
		runner: params.Runner,
		cache:  params.Runner.Cache(),
		cart:   params.Cart,
	}, nil
}

func (s *service) List(ctx context.Context) ([]types.Order, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyOrders, s.repo.List)
}

func (s *service) Get(ctx context.Context, id string) (types.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return cache.Fetch(ctx, s.cache, cache.OrderKey(id), func(ctx context.Context) (types.Order, error) {
		return s.repo.Find(ctx, id)
	})
}

// Place checks out the selected cart lines. The order id comes from the
// backend, so nothing is guessed locally; cart and order caches are dropped
// once the order exists.
func (s *service) Place(ctx context.Context, in CheckoutInput) (types.Order, error) {
	in = in.normalize()
	notifier := s.runner.Notifier()

	req, err := s.checkoutRequest(ctx, in)
	if err != nil {
		notifier.Error(ctx, "could not place order", err)
		return types.Order{}, err
	}

	epoch := s.cache.Epoch()
	order, err := s.repo.Place(ctx, req)
	if err != nil {
		notifier.Error(ctx, "could not place order", err)
		return types.Order{}, err
	}

	// The order exists now; cache trouble only costs a refetch.
	logg := s.runner.Logger()
	if err := s.cache.Invalidate(ctx, cache.KeyCart, cache.KeyOrders); err != nil {
		logg.Error(logg.WithCacheKey(ctx, string(cache.KeyOrders)), "optimistic.reconcile_failed", err)
	}
	if order.ID != "" {
		key := cache.OrderKey(order.ID)
		if _, err := cache.SetAt(ctx, s.cache, epoch, key, order); err != nil {
			logg.Error(logg.WithCacheKey(ctx, string(key)), "optimistic.reconcile_failed", err)
		}
	}
	notifier.Success(ctx, "order placed")
	return order, nil
}

func (s *service) checkoutRequest(ctx context.Context, in CheckoutInput) (placeOrderRequest, error) {
	if !in.PaymentMethod.IsValid() {
		return placeOrderRequest{}, pkgerrors.New(pkgerrors.CodeValidation, "paymentMethod must be one of COD Card").
			WithDetails(map[string]string{"paymentMethod": "must be one of COD Card"})
	}

	cart, err := s.cart.Get(ctx)
	if err != nil {
		return placeOrderRequest{}, err
	}
	if cart.IsEmpty() {
		return placeOrderRequest{}, pkgerrors.New(pkgerrors.CodeBusinessRule, msgCartEmpty)
	}
	if in.AddressID == "" {
		return placeOrderRequest{}, pkgerrors.New(pkgerrors.CodeBusinessRule, msgSelectAddress)
	}

	items := in.ItemIDs
	if len(items) == 0 {
		for _, item := range cart.Items {
			items = append(items, item.ID)
		}
	}
	for _, id := range items {
		if cart.IndexOf(id) < 0 {
			return placeOrderRequest{}, pkgerrors.New(pkgerrors.CodeValidation, "cart item "+id+" is not in the cart")
		}
	}

	return placeOrderRequest{
		Items:             items,
		ShippingAddressID: in.AddressID,
		PaymentMethod:     in.PaymentMethod,
	}, nil
}

// Cancel flips a pending order to Cancelled in both the list and the detail
// cache before asking the backend.
func (s *service) Cancel(ctx context.Context, id string) (types.Order, error) {
	id = strings.TrimSpace(id)
	known, knownOK := s.cachedOrder(ctx, id)

	flip := func(o types.Order) types.Order {
		o.Status = enums.OrderStatusCancelled
		return o
	}

	return optimistic.Run(ctx, s.runner, optimistic.Mutation[types.Order]{
		Resource: resource,
		Validate: func() error {
			if id == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
			}
			if knownOK && !known.Status.CanCancel() {
				return pkgerrors.New(pkgerrors.CodeBusinessRule, msgNotCancellable)
			}
			return nil
		},
		Patches: []optimistic.Patch[types.Order]{
			optimistic.On(cache.KeyOrders, func(current []types.Order, cached bool) ([]types.Order, bool) {
				idx := indexOf(current, id)
				if !cached || idx < 0 {
					return current, false
				}
				next := append([]types.Order(nil), current...)
				next[idx] = flip(next[idx])
				return next, true
			}, func(current []types.Order, result types.Order) ([]types.Order, bool) {
				idx := indexOf(current, id)
				if idx < 0 {
					return nil, false
				}
				next := append([]types.Order(nil), current...)
				next[idx] = result
				return next, true
			}),
			optimistic.On(cache.OrderKey(id), func(current types.Order, cached bool) (types.Order, bool) {
				if !cached {
					return current, false
				}
				return flip(current), true
			}, func(_ types.Order, result types.Order) (types.Order, bool) {
				return result, result.ID != ""
			}),
		},
		Call: func(ctx context.Context) (types.Order, error) {
			return s.repo.Cancel(ctx, id)
		},
		SuccessMessage: "order cancelled",
		FailureMessage: "could not cancel order",
	})
}

func (s *service) Track(ctx context.Context, id string) (Tracking, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return Tracking{}, err
	}
	return Track(order), nil
}

// cachedOrder looks for id in the detail cache, then the list cache.
func (s *service) cachedOrder(ctx context.Context, id string) (types.Order, bool) {
	if id == "" {
		return types.Order{}, false
	}
	if o, ok, err := cache.Get[types.Order](ctx, s.cache, cache.OrderKey(id)); err == nil && ok {
		return o, true
	}
	if list, ok, err := cache.Get[[]types.Order](ctx, s.cache, cache.KeyOrders); err == nil && ok {
		if idx := indexOf(list, id); idx >= 0 {
			return list[idx], true
		}
	}
	return types.Order{}, false
}

func indexOf(list []types.Order, id string) int {
	for i, o := range list {
		if o.ID == id {
			return i
		}
	}
	return -1
}
