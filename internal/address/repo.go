package address

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/storefront/pkg/restclient"
	"github.com/angelmondragon/storefront/pkg/types"
)

// Repository wraps the address book endpoints.
type Repository struct {
	client restclient.Doer
}

func NewRepository(client restclient.Doer) *Repository {
	return &Repository{client: client}
}

func (r *Repository) List(ctx context.Context) ([]types.Address, error) {
	out := []types.Address{}
	err := r.client.Do(ctx, restclient.Request{Method: http.MethodGet, Path: "/addresses"}, &out)
	return out, err
}

func (r *Repository) Create(ctx context.Context, in AddressInput) (types.Address, error) {
	var out types.Address
	err := r.client.Do(ctx, restclient.Request{Method: http.MethodPost, Path: "/addresses", Body: in}, &out)
	return out, err
}

func (r *Repository) Update(ctx context.Context, id string, body any) (types.Address, error) {
	var out types.Address
	err := r.client.Do(ctx, restclient.Request{
		Method: http.MethodPut,
		Path:   "/addresses/" + url.PathEscape(id),
		Route:  "/addresses/:id",
		Body:   body,
	}, &out)
	return out, err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.client.Do(ctx, restclient.Request{
		Method: http.MethodDelete,
		Path:   "/addresses/" + url.PathEscape(id),
		Route:  "/addresses/:id",
	}, nil)
}
