package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]Store{
		"redis":  NewRedisStore(rdb, time.Hour),
		"memory": NewMemoryStore(),
	}
}

func TestStore_SessionRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Load(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			s := New()
			s.UserID = 7
			s.Cart.Lines = []Line{{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("10.00")}}
			couponID := 3
			s.CouponID = &couponID
			s.AddFlash(FlashWarning, "careful")
			require.NoError(t, store.Save(ctx, s))

			got, err := store.Load(ctx, s.ID)
			require.NoError(t, err)
			assert.Equal(t, 7, got.UserID)
			require.Len(t, got.Cart.Lines, 1)
			assert.True(t, got.Cart.Lines[0].Price.Equal(decimal.NewFromInt(10)))
			require.NotNil(t, got.CouponID)
			assert.Equal(t, 3, *got.CouponID)
			assert.Equal(t, []Flash{{Level: FlashWarning, Message: "careful"}}, got.PopFlash())

			require.NoError(t, store.Delete(ctx, s.ID))
			_, err = store.Load(ctx, s.ID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_PendingCheckout(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			p := &PendingCheckout{
				PaymentRef: "cs_test_1",
				SessionID:  "abc",
				UserID:     4,
				Lines:      []PendingLine{{ProductID: 1, Name: "Mug", Quantity: 2, Price: decimal.NewFromInt(10)}},
				Totals:     Totals{Total: decimal.RequireFromString("23.00")},
			}
			require.NoError(t, store.SavePending(ctx, p))

			got, err := store.LoadPending(ctx, "cs_test_1")
			require.NoError(t, err)
			assert.Equal(t, "abc", got.SessionID)
			assert.True(t, got.Totals.Total.Equal(decimal.NewFromInt(23)))

			require.NoError(t, store.DeletePending(ctx, "cs_test_1"))
			_, err = store.LoadPending(ctx, "cs_test_1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_SaveRequiresID(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, store.Save(context.Background(), &Session{}))
			assert.Error(t, store.SavePending(context.Background(), &PendingCheckout{}))
		})
	}
}

func TestSession_CompleteCheckout(t *testing.T) {
	s := New()
	id := 1
	s.Cart.Lines = []Line{{ProductID: 1, Quantity: 2}}
	s.Checkout = &Totals{}
	s.Shipping = &Address{City: "Oslo"}
	s.CouponID = &id
	s.UserID = 9

	s.CompleteCheckout([]PendingLine{{ProductID: 1, Quantity: 2}})

	assert.True(t, s.Cart.Empty())
	assert.Nil(t, s.Checkout)
	assert.Nil(t, s.Shipping)
	assert.Nil(t, s.CouponID)
	assert.Equal(t, 9, s.UserID)
}

func TestSession_CompleteCheckoutKeepsLaterItems(t *testing.T) {
	s := New()
	s.Cart.Lines = []Line{{ProductID: 1, Quantity: 3}, {ProductID: 2, Quantity: 1}, {ProductID: 3, Quantity: 1}}
	s.Checkout = &Totals{}

	s.CompleteCheckout([]PendingLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 4},
		{ProductID: 7, Quantity: 1},
	})

	assert.Equal(t, []Line{{ProductID: 1, Quantity: 1}, {ProductID: 3, Quantity: 1}}, s.Cart.Lines)
	assert.Nil(t, s.Checkout)
}

func TestCart_Remove(t *testing.T) {
	c := Cart{Lines: []Line{{ProductID: 1}, {ProductID: 2}, {ProductID: 3}}}
	c.Remove(2)
	c.Remove(99)

	assert.Equal(t, []Line{{ProductID: 1}, {ProductID: 3}}, c.Lines)
	assert.Equal(t, 0, c.Quantity(2))
}
