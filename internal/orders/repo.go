package orders

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/storefront/pkg/restclient"
	"github.com/angelmondragon/storefront/pkg/types"
)

// Repository wraps the order endpoints.
type Repository struct {
	client restclient.Doer
}

func NewRepository(client restclient.Doer) *Repository {
	return &Repository{client: client}
}

func (r *Repository) List(ctx context.Context) ([]types.Order, error) {
	out := []types.Order{}
	err := r.client.Do(ctx, restclient.Request{Method: http.MethodGet, Path: "/orders/my-orders"}, &out)
	return out, err
}

func (r *Repository) Find(ctx context.Context, id string) (types.Order, error) {
	var out types.Order
	err := r.client.Do(ctx, restclient.Request{
		Method: http.MethodGet,
		Path:   "/orders/my-orders/" + url.PathEscape(id),
		Route:  "/orders/my-orders/:id",
	}, &out)
	return out, err
}

func (r *Repository) Place(ctx context.Context, req placeOrderRequest) (types.Order, error) {
	var out types.Order
	err := r.client.Do(ctx, restclient.Request{Method: http.MethodPost, Path: "/orders", Body: req}, &out)
	return out, err
}

func (r *Repository) Cancel(ctx context.Context, id string) (types.Order, error) {
	var out types.Order
	err := r.client.Do(ctx, restclient.Request{
		Method: http.MethodPut,
		Path:   "/orders/my-orders/" + url.PathEscape(id) + "/cancel",
		Route:  "/orders/my-orders/:id/cancel",
	}, &out)
	return out, err
}
