package cart

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/storefront/pkg/restclient"
	"github.com/angelmondragon/storefront/pkg/types"
)

// Repository wraps the cart endpoints. Every mutation answers with the full cart.
type Repository struct {
	client restclient.Doer
}

func NewRepository(client restclient.Doer) *Repository {
	return &Repository{client: client}
}

func (r *Repository) Get(ctx context.Context) (types.Cart, error) {
	var cart types.Cart
	err := r.client.Do(ctx, restclient.Request{Method: http.MethodGet, Path: "/cart"}, &cart)
	return normalize(cart), err
}

func (r *Repository) Add(ctx context.Context, in AddItemInput) (types.Cart, error) {
	var cart types.Cart
	err := r.client.Do(ctx, restclient.Request{Method: http.MethodPost, Path: "/cart/add", Body: in}, &cart)
	return normalize(cart), err
}

func (r *Repository) UpdateQuantity(ctx context.Context, itemID string, quantity int) (types.Cart, error) {
	var cart types.Cart
	err := r.client.Do(ctx, restclient.Request{
		Method: http.MethodPatch,
		Path:   "/cart/update/" + url.PathEscape(itemID),
		Route:  "/cart/update/:id",
		Body:   updateQuantityRequest{Quantity: quantity},
	}, &cart)
	return normalize(cart), err
}

func (r *Repository) Remove(ctx context.Context, itemID string) (types.Cart, error) {
	var cart types.Cart
	err := r.client.Do(ctx, restclient.Request{
		Method: http.MethodDelete,
		Path:   "/cart/remove/" + url.PathEscape(itemID),
		Route:  "/cart/remove/:id",
	}, &cart)
	return normalize(cart), err
}

func (r *Repository) Merge(ctx context.Context, items []AddItemInput) (types.Cart, error) {
	var cart types.Cart
	err := r.client.Do(ctx, restclient.Request{Method: http.MethodPost, Path: "/cart/merge", Body: mergeRequest{Items: items}}, &cart)
	return normalize(cart), err
}

func normalize(cart types.Cart) types.Cart {
	if cart.Items == nil {
		cart.Items = []types.CartItem{}
	}
	return cart
}
