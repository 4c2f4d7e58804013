package cart

import (
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/angelmondragon/storefront/pkg/validate"
)

const msgSelectVariant = "select color and size"

// AddItemInput is the payload of POST /cart/add.
type AddItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
	Color     string `json:"color"`
	Size      string `json:"size"`

	// Product, when known, gives the local guess a name and price.
	Product *types.Product `json:"-"`
}

func (in AddItemInput) normalize() AddItemInput {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.Color = strings.TrimSpace(in.Color)
	in.Size = strings.TrimSpace(in.Size)
	return in
}

// Validate rejects the input before anything is written: a quantity below
// one is a validation error, a missing variant a business error.
func (in AddItemInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	if in.Color == "" || in.Size == "" {
		return pkgerrors.New(pkgerrors.CodeBusinessRule, msgSelectVariant)
	}
	return nil
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// mergeRequest is the payload of POST /cart/merge.
type mergeRequest struct {
	Items []AddItemInput `json:"items"`
}
