package backend

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

// AddressInput is the body of POST /addresses.
type AddressInput struct {
	FullName   string `json:"fullName" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
	IsDefault  bool   `json:"isDefault"`
}

// AddressPatch is the body of PUT /addresses/:id. Absent fields are kept.
type AddressPatch struct {
	FullName   *string `json:"fullName"`
	Phone      *string `json:"phone"`
	Street     *string `json:"street"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postalCode"`
	Country    *string `json:"country"`
	IsDefault  *bool   `json:"isDefault"`
}

func (s *Store) Addresses(userID string) []types.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Address{}, s.addresses[userID]...)
}

// CreateAddress stores a new address. The first address is always default.
func (s *Store) CreateAddress(userID string, in AddressInput) types.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := types.Address{
		ID:         uuid.NewString(),
		FullName:   strings.TrimSpace(in.FullName),
		Phone:      strings.TrimSpace(in.Phone),
		Street:     strings.TrimSpace(in.Street),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.TrimSpace(in.Country),
		IsDefault:  in.IsDefault || len(s.addresses[userID]) == 0,
	}
	list := append(s.addresses[userID], a)
	if a.IsDefault {
		markDefault(list, a.ID)
	}
	s.addresses[userID] = list
	return a
}

func (s *Store) UpdateAddress(userID, id string, in AddressPatch) (types.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.addresses[userID]
	idx := addressIndex(list, id)
	if idx < 0 {
		return types.Address{}, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	a := &list[idx]
	setIf(&a.FullName, in.FullName)
	setIf(&a.Phone, in.Phone)
	setIf(&a.Street, in.Street)
	setIf(&a.City, in.City)
	setIf(&a.State, in.State)
	setIf(&a.PostalCode, in.PostalCode)
	setIf(&a.Country, in.Country)
	if in.IsDefault != nil && *in.IsDefault {
		markDefault(list, id)
	}
	return list[idx], nil
}

// DeleteAddress removes an address, promoting the first remaining one when
// the default goes.
func (s *Store) DeleteAddress(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.addresses[userID]
	idx := addressIndex(list, id)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	wasDefault := list[idx].IsDefault
	list = slices.Delete(list, idx, idx+1)
	if wasDefault && len(list) > 0 {
		markDefault(list, list[0].ID)
	}
	s.addresses[userID] = list
	return nil
}

func markDefault(list []types.Address, id string) {
	for i := range list {
		list[i].IsDefault = list[i].ID == id
	}
}

func addressIndex(list []types.Address, id string) int {
	return slices.IndexFunc(list, func(a types.Address) bool { return a.ID == id })
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
