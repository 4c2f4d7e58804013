package catalog

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/storefront/pkg/restclient"
	"github.com/angelmondragon/storefront/pkg/types"
)

// Repository wraps the catalog endpoints.
type Repository struct {
	client restclient.Doer
}

func NewRepository(client restclient.Doer) *Repository {
	return &Repository{client: client}
}

func (r *Repository) ListProducts(ctx context.Context, q ProductQuery) (types.ProductPage, error) {
	var page types.ProductPage
	err := r.client.Do(ctx, restclient.Request{
		Method: http.MethodGet,
		Path:   "/products",
		Query:  q.Values(),
	}, &page)
	if page.Products == nil {
		page.Products = []types.Product{}
	}
	return page, err
}

func (r *Repository) FindProduct(ctx context.Context, id string) (types.Product, error) {
	var product types.Product
	err := r.client.Do(ctx, restclient.Request{
		Method: http.MethodGet,
		Path:   "/products/" + url.PathEscape(id),
		Route:  "/products/:id",
	}, &product)
	return product, err
}

func (r *Repository) ListCategories(ctx context.Context) ([]types.Category, error) {
	out := []types.Category{}
	err := r.client.Do(ctx, restclient.Request{Method: http.MethodGet, Path: "/categories"}, &out)
	return out, err
}

func (r *Repository) ListBrands(ctx context.Context) ([]types.Brand, error) {
	out := []types.Brand{}
	err := r.client.Do(ctx, restclient.Request{Method: http.MethodGet, Path: "/brands"}, &out)
	return out, err
}
