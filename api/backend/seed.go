package backend

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/types"
)

func demoCatalog() ([]types.Product, []types.Category, []types.Brand) {
	categories := []types.Category{
		{ID: "cat-shoes", Name: "Shoes", Slug: "shoes"},
		{ID: "cat-shirts", Name: "Shirts", Slug: "shirts"},
		{ID: "cat-bags", Name: "Bags", Slug: "bags"},
	}
	brands := []types.Brand{
		{ID: "brand-north", Name: "Northwind", Slug: "northwind"},
		{ID: "brand-tide", Name: "Tidewater", Slug: "tidewater"},
	}
	ref := func(id, name string) *types.Ref { return &types.Ref{ID: id, Name: name} }
	price := decimal.RequireFromString
	discount := func(v string) *decimal.Decimal {
		d := decimal.RequireFromString(v)
		return &d
	}

	products := []types.Product{
		{
			ID: "prod-runner", Name: "Trail Runner", Slug: "trail-runner",
			Description: "Lightweight trail running shoe",
			Price:       price("89.99"), DiscountPrice: discount("74.99"),
			Images: []string{"https://cdn.example.com/runner.jpg"},
			Colors: []string{"black", "blue"}, Sizes: []string{"40", "41", "42", "43"},
			Stock: 25, Category: ref("cat-shoes", "Shoes"), Brand: ref("brand-north", "Northwind"), Rating: 4.6,
		},
		{
			ID: "prod-loafer", Name: "Leather Loafer", Slug: "leather-loafer",
			Description: "Hand-stitched leather loafer",
			Price:       price("129.00"),
			Images:      []string{"https://cdn.example.com/loafer.jpg"},
			Colors:      []string{"brown"}, Sizes: []string{"41", "42", "43"},
			Stock: 8, Category: ref("cat-shoes", "Shoes"), Brand: ref("brand-tide", "Tidewater"), Rating: 4.2,
		},
		{
			ID: "prod-oxford", Name: "Oxford Shirt", Slug: "oxford-shirt",
			Description: "Cotton oxford button-down",
			Price:       price("49.50"),
			Images:      []string{"https://cdn.example.com/oxford.jpg"},
			Colors:      []string{"white", "blue"}, Sizes: []string{"S", "M", "L", "XL"},
			Stock: 40, Category: ref("cat-shirts", "Shirts"), Brand: ref("brand-tide", "Tidewater"), Rating: 4.8,
		},
		{
			ID: "prod-tee", Name: "Everyday Tee", Slug: "everyday-tee",
			Description: "Soft jersey t-shirt",
			Price:       price("19.00"), DiscountPrice: discount("15.00"),
			Images: []string{"https://cdn.example.com/tee.jpg"},
			Colors: []string{"white", "black", "green"}, Sizes: []string{"S", "M", "L"},
			Stock: 120, Category: ref("cat-shirts", "Shirts"), Brand: ref("brand-north", "Northwind"), Rating: 3.9,
		},
		{
			ID: "prod-tote", Name: "Canvas Tote", Slug: "canvas-tote",
			Description: "Waxed canvas tote bag",
			Price:       price("35.00"),
			Images:      []string{"https://cdn.example.com/tote.jpg"},
			Colors:      []string{"olive"}, Sizes: []string{"one-size"},
			Stock: 3, Category: ref("cat-bags", "Bags"), Brand: ref("brand-north", "Northwind"), Rating: 4.4,
		},
	}
	return products, categories, brands
}
