package catalog

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/storefront/pkg/cache"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo  *Repository
	Cache *cache.Cache
}

// Service exposes the read-only catalog: products, categories and brands.
type Service interface {
	ListProducts(ctx context.Context, q ProductQuery) (types.ProductPage, error)
	GetProduct(ctx context.Context, id string) (types.Product, error)
	ListCategories(ctx context.Context) ([]types.Category, error)
	ListBrands(ctx context.Context) ([]types.Brand, error)
	Prefetch(ctx context.Context) error
}

type service struct {
	repo  *Repository
	cache *cache.Cache
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	if params.Cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cache is required")
	}
	return &service{repo: params.Repo, cache: params.Cache}, nil
}

// ListProducts returns one page of products. Each distinct query is cached
// under its own key.
func (s *service) ListProducts(ctx context.Context, q ProductQuery) (types.ProductPage, error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return types.ProductPage{}, err
	}
	page, err := cache.Fetch(ctx, s.cache, cache.ProductsKey(q.cacheSuffix()), func(ctx context.Context) (types.ProductPage, error) {
		return s.repo.ListProducts(ctx, q)
	})
	if err != nil {
		return types.ProductPage{}, err
	}
	s.seedProducts(ctx, page.Products)
	return page, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (types.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return cache.Fetch(ctx, s.cache, cache.ProductKey(id), func(ctx context.Context) (types.Product, error) {
		return s.repo.FindProduct(ctx, id)
	})
}

func (s *service) ListCategories(ctx context.Context) ([]types.Category, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyCategories, s.repo.ListCategories)
}

func (s *service) ListBrands(ctx context.Context) ([]types.Brand, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyBrands, s.repo.ListBrands)
}

// Prefetch warms categories, brands and the first product page in parallel.
func (s *service) Prefetch(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.ListCategories(ctx)
		return err
	})
	g.Go(func() error {
		_, err := s.ListBrands(ctx)
		return err
	})
	g.Go(func() error {
		_, err := s.ListProducts(ctx, ProductQuery{})
		return err
	})
	return g.Wait()
}

// seedProducts caches listed products by id so detail views and cart
// guesses can use them without another request.
func (s *service) seedProducts(ctx context.Context, products []types.Product) {
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		key := cache.ProductKey(p.ID)
		if _, ok, err := cache.Get[types.Product](ctx, s.cache, key); err != nil || ok {
			continue
		}
		_ = cache.Set(ctx, s.cache, key, p)
	}
}
