package address

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront/internal/optimistic"
	"github.com/angelmondragon/storefront/pkg/cache"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/angelmondragon/storefront/pkg/validate"
)

const resource = "addresses"

// ServiceParams groups dependencies for the address service.
type ServiceParams struct {
	Repo   *Repository
	Runner *optimistic.Runner
}

// Service exposes the shopper's address book.
type Service interface {
	List(ctx context.Context) ([]types.Address, error)
	Create(ctx context.Context, in AddressInput) (types.Address, error)
	Update(ctx context.Context, id string, in AddressInput) (types.Address, error)
	Delete(ctx context.Context, id string) error
	SetDefault(ctx context.Context, id string) (types.Address, error)
}

type service struct {
	repo   *Repository
	runner *optimistic.Runner
	cache  *cache.Cache
}

// NewService builds an address service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address repo is required")
	}
	if params.Runner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mutation runner is required")
	}
	return &service{repo: params.Repo, runner: params.Runner, cache: params.Runner.Cache()}, nil
}

func (s *service) List(ctx context.Context) ([]types.Address, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyAddresses, s.repo.List)
}

// Create appends a placeholder entry that the server's address replaces.
func (s *service) Create(ctx context.Context, in AddressInput) (types.Address, error) {
	in = in.normalize()
	placeholder := in.toAddress(uuid.NewString())

	return optimistic.Run(ctx, s.runner, optimistic.Mutation[types.Address]{
		Resource: resource,
		Validate: func() error { return validate.Struct(in) },
		Patches: []optimistic.Patch[types.Address]{
			optimistic.On(cache.KeyAddresses, func(current []types.Address, _ bool) ([]types.Address, bool) {
				return upsert(current, placeholder), true
			}, func(current []types.Address, result types.Address) ([]types.Address, bool) {
				return upsert(without(current, placeholder.ID), result), true
			}),
		},
		Call: func(ctx context.Context) (types.Address, error) {
			return s.repo.Create(ctx, in)
		},
		SuccessMessage: "address saved",
		FailureMessage: "could not save address",
	})
}

func (s *service) Update(ctx context.Context, id string, in AddressInput) (types.Address, error) {
	id = strings.TrimSpace(id)
	in = in.normalize()

	return optimistic.Run(ctx, s.runner, optimistic.Mutation[types.Address]{
		Resource: resource,
		Validate: func() error {
			if id == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "address id is required")
			}
			return validate.Struct(in)
		},
		Patches: []optimistic.Patch[types.Address]{
			optimistic.On(cache.KeyAddresses, func(current []types.Address, cached bool) ([]types.Address, bool) {
				if !cached || indexOf(current, id) < 0 {
					return current, false
				}
				return upsert(current, in.toAddress(id)), true
			}, serverAddress),
		},
		Call: func(ctx context.Context) (types.Address, error) {
			return s.repo.Update(ctx, id, in)
		},
		SuccessMessage: "address updated",
		FailureMessage: "could not update address",
	})
}

// Delete removes id. The server may promote another address to default, so
// the list is dropped on success and the next read fetches it.
func (s *service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)

	_, err := optimistic.Run(ctx, s.runner, optimistic.Mutation[struct{}]{
		Resource: resource,
		Validate: func() error {
			if id == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "address id is required")
			}
			return nil
		},
		Patches: []optimistic.Patch[struct{}]{
			optimistic.On[[]types.Address, struct{}](cache.KeyAddresses, func(current []types.Address, cached bool) ([]types.Address, bool) {
				if !cached {
					return current, false
				}
				return without(current, id), true
			}, nil),
		},
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.repo.Delete(ctx, id)
		},
		SuccessMessage: "address deleted",
		FailureMessage: "could not delete address",
	})
	return err
}

// SetDefault marks id as the only default address.
func (s *service) SetDefault(ctx context.Context, id string) (types.Address, error) {
	id = strings.TrimSpace(id)

	return optimistic.Run(ctx, s.runner, optimistic.Mutation[types.Address]{
		Resource: resource,
		Validate: func() error {
			if id == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "address id is required")
			}
			return nil
		},
		Patches: []optimistic.Patch[types.Address]{
			optimistic.On(cache.KeyAddresses, func(current []types.Address, cached bool) ([]types.Address, bool) {
				idx := indexOf(current, id)
				if !cached || idx < 0 {
					return current, false
				}
				next := append([]types.Address(nil), current...)
				next[idx].IsDefault = true
				return onlyDefault(next, id), true
			}, serverAddress),
		},
		Call: func(ctx context.Context) (types.Address, error) {
			return s.repo.Update(ctx, id, setDefaultRequest{IsDefault: true})
		},
		SuccessMessage: "default address updated",
		FailureMessage: "could not update default address",
	})
}

// serverAddress writes the server's copy of one address into the list.
func serverAddress(current []types.Address, result types.Address) ([]types.Address, bool) {
	if result.ID == "" {
		return nil, false
	}
	return upsert(current, result), true
}

// upsert replaces or appends a, keeping at most one default.
func upsert(list []types.Address, a types.Address) []types.Address {
	next := append([]types.Address(nil), list...)
	if idx := indexOf(next, a.ID); idx >= 0 {
		next[idx] = a
	} else {
		next = append(next, a)
	}
	if a.IsDefault {
		next = onlyDefault(next, a.ID)
	}
	return next
}

func onlyDefault(list []types.Address, id string) []types.Address {
	for i := range list {
		list[i].IsDefault = list[i].ID == id
	}
	return list
}

func without(list []types.Address, id string) []types.Address {
	out := make([]types.Address, 0, len(list))
	for _, a := range list {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

func indexOf(list []types.Address, id string) int {
	for i, a := range list {
		if a.ID == id {
			return i
		}
	}
	return -1
}
