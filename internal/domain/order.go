package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the backend-owned order lifecycle as seen by the client.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus is the backend-owned payment lifecycle as seen by the client.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// OrderProduct is one order line as the commerce API expects it.
type OrderProduct struct {
	ProductID int64           `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type ShippingAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Order is immutable on the client side once created, except for the status
// fields the backend returns on queries.
type Order struct {
	ID            int64           `json:"id"`
	Products      []OrderProduct  `json:"products,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_price"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}
