package types

import (
	"time"

	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/shopspring/decimal"
)

type OrderItem struct {
	Product  ProductSummary  `json:"product"`
	Color    string          `json:"color"`
	Size     string          `json:"size"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order is an immutable snapshot of the checked-out lines. Only the status
// changes after creation, and only the backend moves it forward.
type Order struct {
	ID              string              `json:"id"`
	Items           []OrderItem         `json:"items"`
	ShippingAddress Address             `json:"shippingAddress"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentMethod   enums.PaymentMethod `json:"paymentMethod"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	CreatedAt       time.Time           `json:"createdAt"`
}
