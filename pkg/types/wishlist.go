package types

// Wishlist holds the products a shopper saved for later. The backend keeps it
// deduplicated by product id.
type Wishlist struct {
	Products []Product `json:"products"`
}

// Contains reports whether productID is on the wishlist.
func (w Wishlist) Contains(productID string) bool {
	return w.indexOf(productID) >= 0
}

// Without returns a copy of w with productID removed.
func (w Wishlist) Without(productID string) Wishlist {
	out := Wishlist{Products: make([]Product, 0, len(w.Products))}
	for _, p := range w.Products {
		if p.ID != productID {
			out.Products = append(out.Products, p)
		}
	}
	return out
}

// With returns a copy of w with product appended unless already present.
func (w Wishlist) With(product Product) Wishlist {
	out := Wishlist{Products: append([]Product(nil), w.Products...)}
	if !w.Contains(product.ID) {
		out.Products = append(out.Products, product)
	}
	return out
}

func (w Wishlist) indexOf(productID string) int {
	for i, p := range w.Products {
		if p.ID == productID {
			return i
		}
	}
	return -1
}
