package cart

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

type catalog map[int]*models.Product

func (c catalog) GetByID(_ context.Context, id int) (*models.Product, error) {
	p, ok := c[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func newManager() (*Manager, catalog) {
	c := catalog{
		1: {ProductID: 1, Name: "Product A", Price: decimal.RequireFromString("10.00"), Stock: 3},
		2: {ProductID: 2, Name: "Product B", Price: decimal.RequireFromString("4.50"), Stock: 10},
	}
	return NewManager(c, zap.NewNop()), c
}

func TestManager_AddNeverExceedsStock(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager()
	s := session.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Add(ctx, s, 1))
	}

	err := m.Add(ctx, s, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 3, s.Cart.Quantity(1))
}

func TestManager_AddCapturesPrice(t *testing.T) {
	ctx := context.Background()
	m, c := newManager()
	s := session.New()

	require.NoError(t, m.Add(ctx, s, 1))
	c[1].Price = decimal.RequireFromString("99.00")
	require.NoError(t, m.Add(ctx, s, 1))

	require.Len(t, s.Cart.Lines, 1)
	assert.Equal(t, 2, s.Cart.Lines[0].Quantity)
	assert.True(t, s.Cart.Lines[0].Price.Equal(decimal.NewFromInt(10)))
}

func TestManager_AddUnknownProduct(t *testing.T) {
	m, _ := newManager()
	s := session.New()

	err := m.Add(context.Background(), s, 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.True(t, s.Cart.Empty())
}

func TestManager_Update(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		want     int
		wantErr  error
	}{
		{name: "sets exactly", quantity: 2, want: 2},
		{name: "clamps to stock", quantity: 7, want: 3, wantErr: ErrInsufficientStock},
		{name: "zero removes", quantity: 0, want: 0},
		{name: "negative removes", quantity: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m, _ := newManager()
			s := session.New()
			require.NoError(t, m.Add(ctx, s, 1))

			err := m.Update(ctx, s, 1, tt.quantity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tt.want, s.Cart.Quantity(1))
			_, present := s.Cart.Find(1)
			assert.Equal(t, tt.want > 0, present)
		})
	}
}

func TestManager_UpdateProductNotInCart(t *testing.T) {
	m, _ := newManager()
	s := session.New()

	require.NoError(t, m.Update(context.Background(), s, 2, 4))
	assert.True(t, s.Cart.Empty())
}

func TestManager_Remove(t *testing.T) {
	ctx := context.Background()
	m, c := newManager()
	s := session.New()
	require.NoError(t, m.Add(ctx, s, 1))
	require.NoError(t, m.Add(ctx, s, 2))

	require.NoError(t, m.Remove(ctx, s, 1))
	assert.Equal(t, 0, s.Cart.Quantity(1))
	assert.Equal(t, 1, s.Cart.Quantity(2))

	delete(c, 2)
	assert.ErrorIs(t, m.Remove(ctx, s, 2), repository.ErrNotFound)
	assert.Equal(t, 1, s.Cart.Quantity(2))
}

func TestManager_ViewDropsDeletedProducts(t *testing.T) {
	ctx := context.Background()
	m, c := newManager()
	s := session.New()
	require.NoError(t, m.Add(ctx, s, 1))
	require.NoError(t, m.Add(ctx, s, 1))
	require.NoError(t, m.Add(ctx, s, 2))

	delete(c, 2)

	view, err := m.View(ctx, s)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 2, view.Count)
	assert.True(t, view.Subtotal.Equal(decimal.NewFromInt(20)))
	assert.Len(t, s.Cart.Lines, 1)
}
