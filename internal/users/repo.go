package users

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/pkg/restclient"
	"github.com/angelmondragon/storefront/pkg/types"
)

// Repository wraps the profile endpoints.
type Repository struct {
	client restclient.Doer
}

func NewRepository(client restclient.Doer) *Repository {
	return &Repository{client: client}
}

func (r *Repository) Profile(ctx context.Context) (types.User, error) {
	var out types.User
	err := r.client.Do(ctx, restclient.Request{Method: http.MethodGet, Path: "/users/profile"}, &out)
	return out, err
}

func (r *Repository) UpdateProfile(ctx context.Context, in ProfileInput) (types.User, error) {
	var out types.User
	err := r.client.Do(ctx, restclient.Request{Method: http.MethodPut, Path: "/users/profile", Body: in}, &out)
	return out, err
}
