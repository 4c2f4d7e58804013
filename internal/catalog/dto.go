package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/pagination"
	"github.com/angelmondragon/storefront/pkg/validate"
)

// ProductQuery filters the product listing.
type ProductQuery struct {
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Category string           `json:"category"`
	Brand    string           `json:"brand"`
	Search   string           `json:"search"`
	Sort     string           `json:"sort" validate:"omitempty,oneof=newest price_asc price_desc rating popular"`
	MinPrice *decimal.Decimal `json:"minPrice"`
	MaxPrice *decimal.Decimal `json:"maxPrice"`
}

// Normalize clamps paging and trims the free-text filters.
func (q ProductQuery) Normalize() ProductQuery {
	p := pagination.Params{Page: q.Page, Limit: q.Limit}.Normalize()
	q.Page, q.Limit = p.Page, p.Limit
	q.Category = strings.TrimSpace(q.Category)
	q.Brand = strings.TrimSpace(q.Brand)
	q.Search = strings.TrimSpace(q.Search)
	q.Sort = strings.TrimSpace(strings.ToLower(q.Sort))
	return q
}

// Validate checks the sort key and the price range.
func (q ProductQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return err
	}
	if q.MinPrice != nil && q.MinPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "minPrice must not be negative")
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return pkgerrors.New(pkgerrors.CodeValidation, "minPrice must not exceed maxPrice")
	}
	return nil
}

// Values renders the query string sent to GET /products.
func (q ProductQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	setIf(v, "category", q.Category)
	setIf(v, "brand", q.Brand)
	setIf(v, "search", q.Search)
	setIf(v, "sort", q.Sort)
	if q.MinPrice != nil {
		v.Set("minPrice", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", q.MaxPrice.String())
	}
	return v
}

// cacheSuffix identifies the listing in the cache. url.Values encodes keys
// in sorted order so equal queries share an entry.
func (q ProductQuery) cacheSuffix() string {
	return q.Values().Encode()
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
