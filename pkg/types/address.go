package types

// Address is one entry of the shopper's address book.
type Address struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"isDefault"`
}

// DefaultAddress returns the address flagged as default, falling back to the
// first entry. ok is false when the book is empty.
func DefaultAddress(addresses []Address) (Address, bool) {
	for _, a := range addresses {
		if a.IsDefault {
			return a, true
		}
	}
	if len(addresses) > 0 {
		return addresses[0], true
	}
	return Address{}, false
}
