package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

type coupons struct {
	byID map[int]models.Coupon
	err  error
}

func (c *coupons) GetActiveByID(_ context.Context, id int) (*models.Coupon, error) {
	if c.err != nil {
		return nil, c.err
	}
	coupon, ok := c.byID[id]
	if !ok || !coupon.Active {
		return nil, repository.ErrNotFound
	}
	return &coupon, nil
}

func (c *coupons) GetActiveByCode(_ context.Context, code string) (*models.Coupon, error) {
	if c.err != nil {
		return nil, c.err
	}
	for _, coupon := range c.byID {
		if coupon.Code == code && coupon.Active {
			return &coupon, nil
		}
	}
	return nil, repository.ErrNotFound
}

func newCalculator() (*Calculator, *coupons) {
	c := &coupons{byID: map[int]models.Coupon{
		1: {CouponID: 1, Code: "SAVE10", Discount: 10, Active: true},
		2: {CouponID: 2, Code: "OLD50", Discount: 50, Active: false},
	}}
	return NewCalculator(c, decimal.RequireFromString("5.00"), zap.NewNop()), c
}

func sessionWithCart() *session.Session {
	s := session.New()
	s.Cart.Lines = []session.Line{{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("10.00")}}
	return s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculator_CouponScenario(t *testing.T) {
	ctx := context.Background()
	calc, _ := newCalculator()
	s := sessionWithCart()

	require.NoError(t, calc.ApplyCoupon(ctx, s, "SAVE10"))
	totals, err := calc.Calculate(ctx, s)
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(dec("20.00")), totals.Subtotal.String())
	assert.True(t, totals.Discount.Equal(dec("2.00")), totals.Discount.String())
	assert.True(t, totals.Shipping.Equal(dec("5.00")))
	assert.True(t, totals.Total.Equal(dec("23.00")), totals.Total.String())
	assert.Same(t, totals, s.Checkout)
}

func TestCalculator_NoCoupon(t *testing.T) {
	calc, _ := newCalculator()
	s := sessionWithCart()

	totals, err := calc.Calculate(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, totals.Discount.IsZero())
	assert.True(t, totals.Total.Equal(totals.Subtotal.Sub(totals.Discount).Add(totals.Shipping)))
}

func TestCalculator_StaleCouponIsCleared(t *testing.T) {
	ctx := context.Background()
	calc, c := newCalculator()
	s := sessionWithCart()
	require.NoError(t, calc.ApplyCoupon(ctx, s, "SAVE10"))

	delete(c.byID, 1)

	totals, err := calc.Calculate(ctx, s)
	require.NoError(t, err)
	assert.True(t, totals.Discount.IsZero())
	assert.True(t, totals.Total.Equal(dec("25.00")))
	assert.Nil(t, s.CouponID)
}

func TestCalculator_CouponLookupFailure(t *testing.T) {
	calc, c := newCalculator()
	s := sessionWithCart()
	id := 1
	s.CouponID = &id
	c.err = errors.New("connection refused")

	_, err := calc.Calculate(context.Background(), s)
	assert.Error(t, err)
	assert.NotNil(t, s.CouponID)
}

func TestCalculator_ApplyCouponFailures(t *testing.T) {
	for _, code := range []string{"NOPE", "OLD50", "save10", ""} {
		t.Run(code, func(t *testing.T) {
			ctx := context.Background()
			calc, _ := newCalculator()
			s := sessionWithCart()
			require.NoError(t, calc.ApplyCoupon(ctx, s, "SAVE10"))

			err := calc.ApplyCoupon(ctx, s, code)
			assert.ErrorIs(t, err, ErrInvalidCoupon)
			assert.Nil(t, s.CouponID)

			totals, err := calc.Calculate(ctx, s)
			require.NoError(t, err)
			assert.True(t, totals.Discount.IsZero())
		})
	}
}

func TestCalculator_DiscountRounding(t *testing.T) {
	ctx := context.Background()
	calc, c := newCalculator()
	c.byID[3] = models.Coupon{CouponID: 3, Code: "THIRD", Discount: 33, Active: true}
	s := session.New()
	s.Cart.Lines = []session.Line{{ProductID: 1, Quantity: 1, Price: dec("9.99")}}
	require.NoError(t, calc.ApplyCoupon(ctx, s, "THIRD"))

	totals, err := calc.Calculate(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "3.30", totals.Discount.StringFixed(2))
	assert.Equal(t, "11.69", totals.Total.StringFixed(2))
}

func TestCalculator_SetShipping(t *testing.T) {
	calc, _ := newCalculator()

	err := calc.SetShipping(session.New(), session.Address{Address: "1 Main St", City: "Oslo", PostalCode: "0150", Phone: "123"})
	assert.ErrorIs(t, err, ErrEmptyCart)

	s := sessionWithCart()
	err = calc.SetShipping(s, session.Address{City: "Oslo"})
	assert.ErrorIs(t, err, ErrInvalidShipping)
	assert.Nil(t, s.Shipping)

	addr := session.Address{Address: "1 Main St", City: "Oslo", PostalCode: "0150", Phone: "123"}
	require.NoError(t, calc.SetShipping(s, addr))
	assert.Equal(t, addr, *s.Shipping)
}
