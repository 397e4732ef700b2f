package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPaid       OrderStatus = "Paid"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPaid, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type Order struct {
	OrderID      int             `json:"order_id"`
	UserID       int             `json:"user_id"`
	CreatedAt    time.Time       `json:"created_at"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Status       OrderStatus     `json:"status"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	PostalCode   string          `json:"postal_code"`
	Phone        string          `json:"phone"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	PaymentRef   string          `json:"payment_ref,omitempty"`
}

// OrderLine keeps the name and price at purchase time; ProductID is nil once
// the product has been deleted.
type OrderLine struct {
	OrderLineID int             `json:"order_line_id"`
	OrderID     int             `json:"order_id"`
	ProductID   *int            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type OrderWithLines struct {
	Order
	Lines []OrderLine `json:"lines"`
}
