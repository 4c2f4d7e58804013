package wishlist

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/storefront/pkg/restclient"
	"github.com/angelmondragon/storefront/pkg/types"
)

type addRequest struct {
	ProductID string `json:"productId"`
}

type mergeRequest struct {
	ProductIDs []string `json:"productIds"`
}

// Repository wraps the wishlist endpoints. Mutations answer with the full wishlist.
type Repository struct {
	client restclient.Doer
}

func NewRepository(client restclient.Doer) *Repository {
	return &Repository{client: client}
}

func (r *Repository) Get(ctx context.Context) (types.Wishlist, error) {
	var out types.Wishlist
	err := r.client.Do(ctx, restclient.Request{Method: http.MethodGet, Path: "/wishlist"}, &out)
	return normalize(out), err
}

func (r *Repository) Add(ctx context.Context, productID string) (types.Wishlist, error) {
	var out types.Wishlist
	err := r.client.Do(ctx, restclient.Request{Method: http.MethodPost, Path: "/wishlist/add", Body: addRequest{ProductID: productID}}, &out)
	return normalize(out), err
}

func (r *Repository) Remove(ctx context.Context, productID string) (types.Wishlist, error) {
	var out types.Wishlist
	err := r.client.Do(ctx, restclient.Request{
		Method: http.MethodDelete,
		Path:   "/wishlist/remove/" + url.PathEscape(productID),
		Route:  "/wishlist/remove/:id",
	}, &out)
	return normalize(out), err
}

func (r *Repository) Merge(ctx context.Context, productIDs []string) (types.Wishlist, error) {
	var out types.Wishlist
	err := r.client.Do(ctx, restclient.Request{Method: http.MethodPost, Path: "/wishlist/merge", Body: mergeRequest{ProductIDs: productIDs}}, &out)
	return normalize(out), err
}

func normalize(w types.Wishlist) types.Wishlist {
	if w.Products == nil {
		w.Products = []types.Product{}
	}
	return w
}
