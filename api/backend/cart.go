package backend

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

// CartItemInput is the body of POST /cart/add and one entry of POST /cart/merge.
type CartItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
	Color     string `json:"color" validate:"required"`
	Size      string `json:"size" validate:"required"`
}

// CartMergeInput is the body of POST /cart/merge.
type CartMergeInput struct {
	Items []CartItemInput `json:"items" validate:"dive"`
}

// CartQuantityInput is the body of PATCH /cart/update/:id.
type CartQuantityInput struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

func (s *Store) Cart(userID string) types.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartView(s.cartLocked(userID))
}

func (s *Store) AddToCart(userID string, in CartItemInput) (types.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.addLocked(userID, in); err != nil {
		return types.Cart{}, err
	}
	return cartView(s.cartLocked(userID)), nil
}

// MergeCart adds every guest line, skipping lines the catalog rejects.
func (s *Store) MergeCart(userID string, in CartMergeInput) types.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range in.Items {
		_ = s.addLocked(userID, item)
	}
	return cartView(s.cartLocked(userID))
}

func (s *Store) UpdateCartItem(userID, itemID string, quantity int) (types.Cart, error) {
	if quantity < 1 {
		return types.Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]string{"quantity": "must be at least 1"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.cartLocked(userID)
	idx := cart.IndexOf(itemID)
	if idx < 0 {
		return types.Cart{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	product, err := s.productLocked(cart.Items[idx].Product.ID)
	if err == nil && quantity > product.Stock {
		return types.Cart{}, pkgerrors.New(pkgerrors.CodeBusinessRule, "insufficient stock")
	}
	cart.Items[idx].Quantity = quantity
	cart.Recalculate()
	return cartView(cart), nil
}

func (s *Store) RemoveCartItem(userID, itemID string) (types.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.cartLocked(userID)
	idx := cart.IndexOf(itemID)
	if idx < 0 {
		return types.Cart{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	cart.Items = slices.Delete(cart.Items, idx, idx+1)
	cart.Recalculate()
	return cartView(cart), nil
}

func (s *Store) addLocked(userID string, in CartItemInput) error {
	product, err := s.productLocked(strings.TrimSpace(in.ProductID))
	if err != nil {
		return err
	}
	if len(product.Colors) > 0 && !slices.Contains(product.Colors, in.Color) {
		return pkgerrors.New(pkgerrors.CodeValidation, "color is not available").
			WithDetails(map[string]string{"color": "is not available"})
	}
	if len(product.Sizes) > 0 && !slices.Contains(product.Sizes, in.Size) {
		return pkgerrors.New(pkgerrors.CodeValidation, "size is not available").
			WithDetails(map[string]string{"size": "is not available"})
	}

	cart := s.cartLocked(userID)
	for i, item := range cart.Items {
		if item.Matches(product.ID, in.Color, in.Size) {
			if item.Quantity+in.Quantity > product.Stock {
				return pkgerrors.New(pkgerrors.CodeBusinessRule, "insufficient stock")
			}
			cart.Items[i].Quantity += in.Quantity
			cart.Recalculate()
			return nil
		}
	}
	if in.Quantity > product.Stock {
		return pkgerrors.New(pkgerrors.CodeBusinessRule, "insufficient stock")
	}
	cart.Items = append(cart.Items, types.CartItem{
		ID:       uuid.NewString(),
		Product:  product.Summary(),
		Color:    in.Color,
		Size:     in.Size,
		Quantity: in.Quantity,
	})
	cart.Recalculate()
	return nil
}

func (s *Store) cartLocked(userID string) *types.Cart {
	cart, ok := s.carts[userID]
	if !ok {
		cart = &types.Cart{ID: uuid.NewString(), Items: []types.CartItem{}}
		s.carts[userID] = cart
	}
	return cart
}

func cartView(cart *types.Cart) types.Cart {
	out := cart.Clone()
	if out.Items == nil {
		out.Items = []types.CartItem{}
	}
	return out
}
