package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

var (
	ErrInvalidCoupon   = errors.New("invalid coupon")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidShipping = errors.New("invalid shipping address")
)

type Coupons interface {
	GetActiveByID(ctx context.Context, id int) (*models.Coupon, error)
	GetActiveByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type Calculator struct {
	coupons  Coupons
	shipping decimal.Decimal
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCalculator(coupons Coupons, shipping decimal.Decimal, logger *zap.Logger) *Calculator {
	return &Calculator{
		coupons:  coupons,
		shipping: shipping,
		validate: validator.New(),
		logger:   logger,
	}
}

var hundred = decimal.NewFromInt(100)

// Calculate derives the checkout totals from the cart and the applied coupon
// and stores them on the session for the payment step. A coupon that no
// longer resolves to an active one is dropped from the session.
func (c *Calculator) Calculate(ctx context.Context, s *session.Session) (*session.Totals, error) {
	subtotal := decimal.Zero
	for _, line := range s.Cart.Lines {
		subtotal = subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	discount := decimal.Zero
	if s.CouponID != nil {
		coupon, err := c.coupons.GetActiveByID(ctx, *s.CouponID)
		switch {
		case err == nil:
			discount = subtotal.Mul(decimal.NewFromInt(int64(coupon.Discount))).Div(hundred).Round(2)
		case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrInvalidInput):
			c.logger.Info("clearing stale coupon", zap.String("session", s.ID), zap.Int("coupon_id", *s.CouponID))
			s.CouponID = nil
		default:
			return nil, fmt.Errorf("failed to load coupon %d: %w", *s.CouponID, err)
		}
	}

	totals := &session.Totals{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: c.shipping,
		Total:    subtotal.Sub(discount).Add(c.shipping),
	}
	s.Checkout = totals

	return totals, nil
}

// ApplyCoupon attaches the active coupon with exactly this code. On any
// failure the session's coupon is cleared and ErrInvalidCoupon returned.
func (c *Calculator) ApplyCoupon(ctx context.Context, s *session.Session, code string) error {
	if code == "" {
		s.CouponID = nil
		return ErrInvalidCoupon
	}

	coupon, err := c.coupons.GetActiveByCode(ctx, code)
	if err != nil {
		s.CouponID = nil
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidInput) {
			return ErrInvalidCoupon
		}
		return fmt.Errorf("%w: %w", ErrInvalidCoupon, err)
	}

	id := coupon.CouponID
	s.CouponID = &id
	return nil
}

// SetShipping validates and stores the shipping address for the order.
func (c *Calculator) SetShipping(s *session.Session, addr session.Address) error {
	if s.Cart.Empty() {
		return ErrEmptyCart
	}
	if err := c.validate.Struct(addr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidShipping, err)
	}
	s.Shipping = &addr
	return nil
}
