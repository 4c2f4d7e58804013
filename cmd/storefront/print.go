package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/types"
)

// render prints v as JSON with --json, otherwise through text.
func (c *cli) render(v any, text func(w io.Writer)) error {
	if c.jsonOutput {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func printProducts(w io.Writer, products []types.Product) {
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK\tCOLORS\tSIZES")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			p.ID, p.Name, money(p.EffectivePrice()), p.Stock,
			strings.Join(p.Colors, ","), strings.Join(p.Sizes, ","))
	}
}

func printCart(w io.Writer, c types.Cart) {
	if c.IsEmpty() {
		fmt.Fprintln(w, "cart is empty")
		return
	}
	fmt.Fprintln(w, "ITEM\tPRODUCT\tCOLOR\tSIZE\tQTY\tSUBTOTAL")
	for _, item := range c.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			item.ID, firstNonEmpty(item.Product.Name, item.Product.ID), item.Color, item.Size,
			item.Quantity, money(item.Subtotal()))
	}
	fmt.Fprintf(w, "\t\t\t\t%d\t%s\n", c.TotalItems, money(c.TotalPrice))
}

func printOrders(w io.Writer, orders []types.Order) {
	fmt.Fprintln(w, "ID\tSTATUS\tPAYMENT\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.Status, o.PaymentMethod, money(o.TotalAmount), o.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func printAddresses(w io.Writer, list []types.Address) {
	fmt.Fprintln(w, "ID\tDEFAULT\tNAME\tADDRESS")
	for _, a := range list {
		mark := ""
		if a.IsDefault {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s, %s %s, %s\n", a.ID, mark, a.FullName, a.Street, a.City, a.PostalCode, a.Country)
	}
}

func printUser(w io.Writer, u types.User) {
	fmt.Fprintf(w, "id\t%s\n", u.ID)
	fmt.Fprintf(w, "name\t%s\n", u.FullName)
	fmt.Fprintf(w, "email\t%s\n", u.Email)
	if u.Phone != "" {
		fmt.Fprintf(w, "phone\t%s\n", u.Phone)
	}
	if u.Role != "" {
		fmt.Fprintf(w, "role\t%s\n", u.Role)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
