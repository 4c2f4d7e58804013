package types

import "github.com/shopspring/decimal"

// Ref is the short form of a category or brand embedded in a product.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug,omitempty"`
	Description   string           `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Images        []string         `json:"images,omitempty"`
	Colors        []string         `json:"colors,omitempty"`
	Sizes         []string         `json:"sizes,omitempty"`
	Stock         int              `json:"stock"`
	Category      *Ref             `json:"category,omitempty"`
	Brand         *Ref             `json:"brand,omitempty"`
	Rating        float64          `json:"rating"`
}

// EffectivePrice is the discount price when one is set and lower than the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.IsPositive() && p.DiscountPrice.LessThan(p.Price) {
		return *p.DiscountPrice
	}
	return p.Price
}

// Image returns the first image, if any.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Summary is the snapshot of p carried by cart and order lines.
func (p Product) Summary() ProductSummary {
	return ProductSummary{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.EffectivePrice(),
		Image: p.Image(),
	}
}

// ProductSummary is the product snapshot embedded in cart and order lines.
type ProductSummary struct {
	ID    string          `json:"id"`
	Name  string          `json:"name,omitempty"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}
