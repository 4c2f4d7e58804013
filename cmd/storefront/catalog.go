package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/storefront/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

func newProductsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}
	cmd.AddCommand(newProductsListCmd(c), newProductsGetCmd(c))
	return cmd
}

func newProductsListCmd(c *cli) *cobra.Command {
	var (
		q        catalog.ProductQuery
		minPrice string
		maxPrice string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products matching the filters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if q.MinPrice, err = parsePrice("min-price", minPrice); err != nil {
				return err
			}
			if q.MaxPrice, err = parsePrice("max-price", maxPrice); err != nil {
				return err
			}
			page, err := c.app.Catalog.ListProducts(cmd.Context(), q)
			if err != nil {
				return err
			}
			return c.render(page, func(w io.Writer) {
				printProducts(w, page.Products)
				fmt.Fprintf(w, "page %d of %d (%d products)\n",
					page.Pagination.Page, page.Pagination.TotalPages, page.Pagination.Total)
			})
		},
	}
	f := cmd.Flags()
	f.IntVar(&q.Page, "page", 1, "page number")
	f.IntVar(&q.Limit, "limit", 0, "products per page")
	f.StringVar(&q.Category, "category", "", "category id or name")
	f.StringVar(&q.Brand, "brand", "", "brand id or name")
	f.StringVar(&q.Search, "search", "", "free-text search")
	f.StringVar(&q.Sort, "sort", "", "newest, price_asc, price_desc, rating or popular")
	f.StringVar(&minPrice, "min-price", "", "lowest price")
	f.StringVar(&maxPrice, "max-price", "", "highest price")
	return cmd
}

func newProductsGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <product-id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.app.Catalog.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.render(p, func(w io.Writer) {
				fmt.Fprintf(w, "id\t%s\n", p.ID)
				fmt.Fprintf(w, "name\t%s\n", p.Name)
				if p.Description != "" {
					fmt.Fprintf(w, "about\t%s\n", p.Description)
				}
				fmt.Fprintf(w, "price\t%s", money(p.EffectivePrice()))
				if !p.EffectivePrice().Equal(p.Price) {
					fmt.Fprintf(w, " (was %s)", money(p.Price))
				}
				fmt.Fprintln(w)
				fmt.Fprintf(w, "colors\t%s\n", strings.Join(p.Colors, ", "))
				fmt.Fprintf(w, "sizes\t%s\n", strings.Join(p.Sizes, ", "))
				fmt.Fprintf(w, "stock\t%d\n", p.Stock)
				if p.Category != nil {
					fmt.Fprintf(w, "category\t%s\n", p.Category.Name)
				}
				if p.Brand != nil {
					fmt.Fprintf(w, "brand\t%s\n", p.Brand.Name)
				}
			})
		},
	}
}

func newCategoriesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := c.app.Catalog.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			return c.render(list, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tSLUG")
				for _, cat := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\n", cat.ID, cat.Name, cat.Slug)
				}
			})
		},
	}
}

func newBrandsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "brands",
		Short: "List brands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := c.app.Catalog.ListBrands(cmd.Context())
			if err != nil {
				return err
			}
			return c.render(list, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tSLUG")
				for _, b := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Name, b.Slug)
				}
			})
		},
	}
}

func parsePrice(flag, value string) (*decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("--%s: %q is not a price", flag, value))
	}
	return &d, nil
}

