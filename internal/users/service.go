package users

import (
	"context"

	"github.com/angelmondragon/storefront/internal/optimistic"
	"github.com/angelmondragon/storefront/pkg/cache"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/angelmondragon/storefront/pkg/validate"
)

const resource = "profile"

// ServiceParams groups dependencies for the profile service.
type ServiceParams struct {
	Repo   *Repository
	Runner *optimistic.Runner
}

// Service exposes the signed-in user's profile.
type Service interface {
	GetProfile(ctx context.Context) (types.User, error)
	UpdateProfile(ctx context.Context, in ProfileInput) (types.User, error)
}

type service struct {
	repo   *Repository
	runner *optimistic.Runner
	cache  *cache.Cache
}

// NewService builds a profile service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	if params.Runner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mutation runner is required")
	}
	return &service{repo: params.Repo, runner: params.Runner, cache: params.Runner.Cache()}, nil
}

func (s *service) GetProfile(ctx context.Context) (types.User, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyProfile, s.repo.Profile)
}

// UpdateProfile patches the profile and the session user together, since
// both show the same name.
func (s *service) UpdateProfile(ctx context.Context, in ProfileInput) (types.User, error) {
	in = in.normalize()
	apply := func(current types.User, cached bool) (types.User, bool) {
		if !cached {
			return current, false
		}
		current.FullName = in.FullName
		if in.Phone != "" {
			current.Phone = in.Phone
		}
		if in.Avatar != "" {
			current.Avatar = in.Avatar
		}
		return current, true
	}
	reconcile := func(_ types.User, result types.User) (types.User, bool) {
		return result, result.ID != ""
	}

	return optimistic.Run(ctx, s.runner, optimistic.Mutation[types.User]{
		Resource: resource,
		Validate: func() error { return validate.Struct(in) },
		Patches: []optimistic.Patch[types.User]{
			optimistic.On(cache.KeyProfile, apply, reconcile),
			optimistic.On(cache.KeyAuthUser, apply, reconcile),
		},
		Call: func(ctx context.Context) (types.User, error) {
			return s.repo.UpdateProfile(ctx, in)
		},
		SuccessMessage: "profile updated",
		FailureMessage: "could not update profile",
	})
}
