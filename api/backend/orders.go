package backend

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

// PlaceOrderInput is the body of POST /orders.
type PlaceOrderInput struct {
	Items             []string `json:"items" validate:"required,min=1"`
	ShippingAddressID string   `json:"shippingAddressId" validate:"required"`
	PaymentMethod     string   `json:"paymentMethod" validate:"required"`
}

// Orders lists the user's orders, newest first.
func (s *Store) Orders(userID string) []types.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Order{}, s.orders[userID]...)
}

func (s *Store) Order(userID, orderID string) (types.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.orderIndexLocked(userID, orderID)
	if idx < 0 {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.orders[userID][idx], nil
}

// PlaceOrder turns the selected cart lines into a Pending order and takes
// them out of the cart.
func (s *Store) PlaceOrder(userID string, in PlaceOrderInput) (types.Order, error) {
	method, err := enums.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method").
			WithDetails(map[string]string{"paymentMethod": "must be one of COD Card"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartLocked(userID)
	if cart.IsEmpty() {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeBusinessRule, "cart empty")
	}
	addrIdx := addressIndex(s.addresses[userID], in.ShippingAddressID)
	if addrIdx < 0 {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "shipping address not found")
	}

	order := types.Order{
		ID:              uuid.NewString(),
		ShippingAddress: s.addresses[userID][addrIdx],
		Status:          enums.OrderStatusPending,
		PaymentMethod:   method,
		TotalAmount:     decimal.Zero,
		CreatedAt:       s.clock().UTC(),
	}
	for _, itemID := range in.Items {
		idx := cart.IndexOf(itemID)
		if idx < 0 {
			return types.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "cart item "+itemID+" not found")
		}
		line := cart.Items[idx]
		order.Items = append(order.Items, types.OrderItem{
			Product:  line.Product,
			Color:    line.Color,
			Size:     line.Size,
			Quantity: line.Quantity,
			Price:    line.Product.Price,
		})
		order.TotalAmount = order.TotalAmount.Add(line.Subtotal())
	}

	cart.Items = slices.DeleteFunc(cart.Items, func(item types.CartItem) bool {
		return slices.Contains(in.Items, item.ID)
	})
	cart.Recalculate()
	s.orders[userID] = append([]types.Order{order}, s.orders[userID]...)
	return order, nil
}

// CancelOrder cancels a Pending order. Any other status is a business error.
func (s *Store) CancelOrder(userID, orderID string) (types.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.orderIndexLocked(userID, orderID)
	if idx < 0 {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	order := &s.orders[userID][idx]
	if !order.Status.CanCancel() {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeBusinessRule, "only pending orders can be cancelled")
	}
	order.Status = enums.OrderStatusCancelled
	return *order, nil
}

// SetOrderStatus moves an order along, the way fulfilment would.
func (s *Store) SetOrderStatus(userID, orderID string, status enums.OrderStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.orderIndexLocked(userID, orderID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	s.orders[userID][idx].Status = status
	return nil
}

func (s *Store) orderIndexLocked(userID, orderID string) int {
	for i, o := range s.orders[userID] {
		if o.ID == orderID {
			return i
		}
	}
	return -1
}
