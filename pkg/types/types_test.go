package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRecalculate(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{ID: "a", Product: ProductSummary{ID: "p1", Price: decimal.RequireFromString("19.99")}, Quantity: 2},
		{ID: "b", Product: ProductSummary{ID: "p2", Price: decimal.RequireFromString("5.01")}, Quantity: 1},
	}}
	cart.Recalculate()
	assert.Equal(t, 3, cart.TotalItems)
	assert.Equal(t, "44.99", cart.TotalPrice.StringFixed(2))
	assert.Equal(t, 1, cart.IndexOf("b"))
	assert.Equal(t, -1, cart.IndexOf("z"))

	clone := cart.Clone()
	clone.Items[0].Quantity = 9
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestProductEffectivePrice(t *testing.T) {
	discount := decimal.RequireFromString("8")
	p := Product{Price: decimal.RequireFromString("10"), DiscountPrice: &discount, Images: []string{"a.png", "b.png"}}
	assert.True(t, p.EffectivePrice().Equal(discount))
	assert.Equal(t, "a.png", p.Summary().Image)

	higher := decimal.RequireFromString("12")
	p.DiscountPrice = &higher
	assert.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("10")))
}

func TestProductDecodesNumericPrices(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","price":12.5,"discountPrice":"9.90"}`), &p))
	assert.Equal(t, "12.5", p.Price.String())
	require.NotNil(t, p.DiscountPrice)
	assert.Equal(t, "9.9", p.DiscountPrice.String())
}

func TestWishlistCopies(t *testing.T) {
	w := Wishlist{Products: []Product{{ID: "p1"}}}
	added := w.With(Product{ID: "p2"}).With(Product{ID: "p2"})
	assert.Len(t, added.Products, 2)
	assert.Len(t, w.Products, 1)

	removed := added.Without("p1")
	assert.False(t, removed.Contains("p1"))
	assert.True(t, added.Contains("p1"))
}

func TestDefaultAddress(t *testing.T) {
	_, ok := DefaultAddress(nil)
	assert.False(t, ok)

	a, ok := DefaultAddress([]Address{{ID: "1"}, {ID: "2", IsDefault: true}})
	require.True(t, ok)
	assert.Equal(t, "2", a.ID)

	a, _ = DefaultAddress([]Address{{ID: "1"}, {ID: "2"}})
	assert.Equal(t, "1", a.ID)
}
