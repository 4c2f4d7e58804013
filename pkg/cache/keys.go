package cache

import "strings"

// Key identifies one cached resource. Keys are hierarchical: "orders" is a
// prefix of "orders:<id>", so invalidating "orders" drops both.
type Key string

const (
	KeyAuthUser   Key = "auth:user"
	KeyProfile    Key = "profile"
	KeyCart       Key = "cart"
	KeyWishlist   Key = "wishlist"
	KeyOrders     Key = "orders"
	KeyAddresses  Key = "addresses"
	KeyCategories Key = "categories"
	KeyBrands     Key = "brands"
	KeyProducts   Key = "products"
	KeyProduct    Key = "product"
)

const separator = ":"

// Join appends parts to the key, skipping empty parts.
func (k Key) Join(parts ...string) Key {
	clean := []string{string(k)}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return Key(strings.Join(clean, separator))
}

// HasPrefix reports whether k equals prefix or sits below it in the hierarchy.
func (k Key) HasPrefix(prefix Key) bool {
	if k == prefix {
		return true
	}
	return strings.HasPrefix(string(k), string(prefix)+separator)
}

func (k Key) String() string {
	return string(k)
}

// OrderKey is the detail key of one order.
func OrderKey(id string) Key {
	return KeyOrders.Join(id)
}

// ProductKey is the detail key of one product.
func ProductKey(id string) Key {
	return KeyProduct.Join(id)
}

// ProductsKey is the key of one product listing query.
func ProductsKey(query string) Key {
	return KeyProducts.Join(query)
}

// SessionKeys lists every key scoped to the signed-in user.
func SessionKeys() []Key {
	return []Key{KeyAuthUser, KeyProfile, KeyCart, KeyWishlist, KeyOrders, KeyAddresses}
}
