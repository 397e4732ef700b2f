package session

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FlashLevel string

const (
	FlashInfo    FlashLevel = "info"
	FlashSuccess FlashLevel = "success"
	FlashWarning FlashLevel = "warning"
	FlashError   FlashLevel = "error"
)

type Flash struct {
	Level   FlashLevel `json:"level"`
	Message string     `json:"message"`
}

// Line is one product in the cart. Price is captured when the product is
// first added and is not re-read from the catalog afterwards.
type Line struct {
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Cart struct {
	Lines []Line `json:"lines"`
}

func (c *Cart) Find(productID int) (int, bool) {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i, true
		}
	}
	return -1, false
}

func (c *Cart) Quantity(productID int) int {
	if i, ok := c.Find(productID); ok {
		return c.Lines[i].Quantity
	}
	return 0
}

func (c *Cart) Remove(productID int) {
	if i, ok := c.Find(productID); ok {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type Address struct {
	Address    string `json:"address" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Phone      string `json:"phone" validate:"required,max=30"`
}

// Session is everything the storefront keeps for one browser.
type Session struct {
	ID       string   `json:"id"`
	UserID   int      `json:"user_id,omitempty"`
	Cart     Cart     `json:"cart"`
	Checkout *Totals  `json:"checkout,omitempty"`
	Shipping *Address `json:"shipping,omitempty"`
	CouponID *int     `json:"coupon_id,omitempty"`
	Flash    []Flash  `json:"flash,omitempty"`
}

func New() *Session {
	return &Session{ID: uuid.NewString()}
}

func (s *Session) AddFlash(level FlashLevel, message string) {
	s.Flash = append(s.Flash, Flash{Level: level, Message: message})
}

// PopFlash returns the pending messages and forgets them.
func (s *Session) PopFlash() []Flash {
	flash := s.Flash
	s.Flash = nil
	return flash
}

// CompleteCheckout takes the paid quantities out of the cart and drops the
// checkout snapshot, the shipping address and the applied coupon. Items put in
// the cart after the payment was started stay there.
func (s *Session) CompleteCheckout(paid []PendingLine) {
	for _, p := range paid {
		i, ok := s.Cart.Find(p.ProductID)
		if !ok {
			continue
		}
		if s.Cart.Lines[i].Quantity <= p.Quantity {
			s.Cart.Remove(p.ProductID)
			continue
		}
		s.Cart.Lines[i].Quantity -= p.Quantity
	}
	s.Checkout = nil
	s.Shipping = nil
	s.CouponID = nil
}

type PendingLine struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// PendingCheckout is the frozen checkout state handed to the payment
// gateway, keyed by the gateway's session id until payment is confirmed.
type PendingCheckout struct {
	PaymentRef string        `json:"payment_ref"`
	SessionID  string        `json:"session_id"`
	UserID     int           `json:"user_id"`
	Lines      []PendingLine `json:"lines"`
	Totals     Totals        `json:"totals"`
	Shipping   Address       `json:"shipping"`
	CouponID   *int          `json:"coupon_id,omitempty"`
}
