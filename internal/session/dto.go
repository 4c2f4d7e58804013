package session

import (
	"strings"

	"github.com/angelmondragon/storefront/pkg/types"
)

// LoginInput is the payload of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterInput is the payload of POST /auth/register.
type RegisterInput struct {
	FullName        string `json:"fullName" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone,omitempty"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (in LoginInput) normalize() LoginInput {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return in
}

func (in RegisterInput) normalize() RegisterInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

// GuestState is what the shopper had in the cache before signing in.
type GuestState struct {
	Cart     types.Cart
	Wishlist types.Wishlist
}

// Empty reports whether there is nothing to carry over.
func (g GuestState) Empty() bool {
	return len(g.Cart.Items) == 0 && len(g.Wishlist.Products) == 0
}
