package backend

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/pagination"
	"github.com/angelmondragon/storefront/pkg/types"
)

// ProductFilter is the parsed query of GET /products.
type ProductFilter struct {
	Page     int
	Limit    int
	Category string
	Brand    string
	Search   string
	Sort     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Products filters, sorts and pages the catalog.
func (s *Store) Products(f ProductFilter) types.ProductPage {
	p := pagination.Params{Page: f.Page, Limit: f.Limit}.Normalize()

	s.mu.Lock()
	matched := make([]types.Product, 0, len(s.products))
	newest := make(map[string]int, len(s.products))
	for i, product := range s.products {
		newest[product.ID] = i
		if f.matches(product) {
			matched = append(matched, product)
		}
	}
	s.mu.Unlock()

	switch strings.ToLower(f.Sort) {
	case "price_asc":
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].EffectivePrice().LessThan(matched[j].EffectivePrice())
		})
	case "price_desc":
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].EffectivePrice().GreaterThan(matched[j].EffectivePrice())
		})
	case "rating", "popular":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Rating > matched[j].Rating })
	case "newest":
		sort.SliceStable(matched, func(i, j int) bool { return newest[matched[i].ID] > newest[matched[j].ID] })
	}

	total := len(matched)
	start := min(p.Offset(), total)
	end := min(start+p.Limit, total)
	return types.ProductPage{
		Products: append([]types.Product{}, matched[start:end]...),
		Pagination: types.Pagination{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: pagination.TotalPages(total, p.Limit),
		},
	}
}

func (f ProductFilter) matches(p types.Product) bool {
	if f.Category != "" && !refMatches(p.Category, f.Category) {
		return false
	}
	if f.Brand != "" && !refMatches(p.Brand, f.Brand) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	price := p.EffectivePrice()
	if f.MinPrice != nil && price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

func refMatches(ref *types.Ref, want string) bool {
	if ref == nil {
		return false
	}
	return ref.ID == want || strings.EqualFold(ref.Name, want)
}

func (s *Store) Product(id string) (types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productLocked(id)
}

func (s *Store) productLocked(id string) (types.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return types.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *Store) Categories() []types.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Category{}, s.categories...)
}

func (s *Store) Brands() []types.Brand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Brand{}, s.brands...)
}

// AddProduct appends p to the catalog, replacing a product with the same id.
func (s *Store) AddProduct(p types.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			return
		}
	}
	s.products = append(s.products, p)
}
