package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const LowStockThreshold = 5

type StockStatus string

const (
	StockOut StockStatus = "out_of_stock"
	StockLow StockStatus = "low"
	StockOK  StockStatus = "ok"
)

type Product struct {
	ProductID   int             `json:"product_id"`
	Name        string          `json:"name" validate:"required,max=100"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Image       string          `json:"image,omitempty" validate:"max=255"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p Product) StockStatus() StockStatus {
	switch {
	case p.Stock <= 0:
		return StockOut
	case p.Stock < LowStockThreshold:
		return StockLow
	default:
		return StockOK
	}
}

// StockChange is the effect of one fulfilled line on a product's stock.
type StockChange struct {
	ProductID int `json:"product_id"`
	Before    int `json:"before"`
	After     int `json:"after"`
	Requested int `json:"requested"`
}

func (c StockChange) Oversold() bool {
	return c.Before < c.Requested
}

type Operation struct {
	OperationID   int       `json:"operation_id"`
	ProductID     int       `json:"product_id"`
	OrderID       *int      `json:"order_id,omitempty"`
	OperationType string    `json:"operation_type"`
	ChangeQuant   int       `json:"change_quant"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	OperationOutgoing   = "outgoing"
	OperationAdjustment = "adjustment"
)
