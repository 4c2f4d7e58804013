package orders

import (
	"strings"

	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/types"
)

const (
	msgCartEmpty      = "cart empty"
	msgSelectAddress  = "select a shipping address"
	msgNotCancellable = "only pending orders can be cancelled"
)

// CheckoutInput selects what to order. Empty ItemIDs means the whole cart.
type CheckoutInput struct {
	ItemIDs       []string
	AddressID     string
	PaymentMethod enums.PaymentMethod
}

func (in CheckoutInput) normalize() CheckoutInput {
	ids := make([]string, 0, len(in.ItemIDs))
	for _, id := range in.ItemIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	in.ItemIDs = ids
	in.AddressID = strings.TrimSpace(in.AddressID)
	if in.PaymentMethod == "" {
		in.PaymentMethod = enums.PaymentMethodCOD
	}
	return in
}

// placeOrderRequest is the payload of POST /orders.
type placeOrderRequest struct {
	Items             []string            `json:"items"`
	ShippingAddressID string              `json:"shippingAddressId"`
	PaymentMethod     enums.PaymentMethod `json:"paymentMethod"`
}

// TrackingStep is one stage of the fulfilment progression.
type TrackingStep struct {
	Status  enums.OrderStatus `json:"status"`
	Reached bool              `json:"reached"`
	Current bool              `json:"current"`
}

// Tracking is what the order tracking view shows.
type Tracking struct {
	OrderID   string            `json:"orderId"`
	Status    enums.OrderStatus `json:"status"`
	Cancelled bool              `json:"cancelled"`
	Steps     []TrackingStep    `json:"steps"`
}

// Track lays the order's status over the fulfilment progression. A
// cancelled order has reached nothing past Pending.
func Track(order types.Order) Tracking {
	t := Tracking{
		OrderID:   order.ID,
		Status:    order.Status,
		Cancelled: order.Status == enums.OrderStatusCancelled,
	}
	current := order.Status.Step()
	for i, status := range enums.OrderProgression() {
		step := TrackingStep{Status: status}
		switch {
		case t.Cancelled:
			step.Reached = i == 0
		case current >= 0:
			step.Reached = i <= current
			step.Current = i == current
		}
		t.Steps = append(t.Steps, step)
	}
	return t
}
