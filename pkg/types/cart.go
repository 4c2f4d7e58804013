package types

import "github.com/shopspring/decimal"

type CartItem struct {
	ID       string         `json:"id"`
	Product  ProductSummary `json:"product"`
	Color    string         `json:"color"`
	Size     string         `json:"size"`
	Quantity int            `json:"quantity"`
}

// Subtotal is the line price times its quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Matches reports whether the line holds the given product variant.
func (i CartItem) Matches(productID, color, size string) bool {
	return i.Product.ID == productID && i.Color == color && i.Size == size
}

type Cart struct {
	ID         string          `json:"id,omitempty"`
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Clone returns a copy that shares nothing mutable with c.
func (c Cart) Clone() Cart {
	out := c
	out.Items = append([]CartItem(nil), c.Items...)
	return out
}

// Recalculate refreshes the totals from the lines.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	count := 0
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
		count += item.Quantity
	}
	c.TotalItems = count
	c.TotalPrice = total
}

// IndexOf returns the position of the line with the given id, or -1.
func (c Cart) IndexOf(itemID string) int {
	for i, item := range c.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
