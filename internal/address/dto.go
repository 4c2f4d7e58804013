package address

import (
	"strings"

	"github.com/angelmondragon/storefront/pkg/types"
)

// AddressInput is the payload of POST /addresses and PUT /addresses/:id.
type AddressInput struct {
	FullName   string `json:"fullName" validate:"required"`
	Phone      string `json:"phone" validate:"required,min=7,max=20"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
	IsDefault  bool   `json:"isDefault"`
}

func (in AddressInput) normalize() AddressInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Street = strings.TrimSpace(in.Street)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.Country = strings.TrimSpace(in.Country)
	return in
}

func (in AddressInput) toAddress(id string) types.Address {
	return types.Address{
		ID:         id,
		FullName:   in.FullName,
		Phone:      in.Phone,
		Street:     in.Street,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		IsDefault:  in.IsDefault,
	}
}

// FromAddress turns a stored address back into an editable input.
func FromAddress(a types.Address) AddressInput {
	return AddressInput{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
	}
}

type setDefaultRequest struct {
	IsDefault bool `json:"isDefault"`
}
