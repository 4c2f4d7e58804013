package enums

import "fmt"

// OrderStatus tracks the lifecycle of a storefront order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// orderProgression is the linear fulfilment path. Cancelled is a side branch.
var orderProgression = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

var validOrderStatuses = append(append([]OrderStatus{}, orderProgression...), OrderStatusCancelled)

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanCancel reports whether a shopper may still cancel the order.
func (s OrderStatus) CanCancel() bool {
	return s == OrderStatusPending
}

// Step returns the position of s on the progression, or -1 for Cancelled and
// unknown values.
func (s OrderStatus) Step() int {
	for i, candidate := range orderProgression {
		if candidate == s {
			return i
		}
	}
	return -1
}

// OrderProgression returns the linear fulfilment steps in order.
func OrderProgression() []OrderStatus {
	return append([]OrderStatus(nil), orderProgression...)
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
