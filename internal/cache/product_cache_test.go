package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
)

type fakeProducts struct {
	products map[int]models.Product
	getByID  int
	getPage  int
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	p.ProductID = len(f.products) + 1
	f.products[p.ProductID] = *p
	return nil
}

func (f *fakeProducts) GetByID(_ context.Context, id int) (*models.Product, error) {
	f.getByID++
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProducts) GetPage(_ context.Context, page, perPage int) ([]models.Product, int, error) {
	f.getPage++
	var out []models.Product
	for i := 1; i <= len(f.products); i++ {
		out = append(out, f.products[i])
	}
	return out, len(out), nil
}

func (f *fakeProducts) GetAll(_ context.Context, _ repository.StockFilter) ([]models.Product, error) {
	return nil, nil
}

func (f *fakeProducts) SearchByName(_ context.Context, _ string) ([]models.Product, error) {
	return nil, nil
}

func (f *fakeProducts) Update(_ context.Context, p *models.Product) error {
	if _, ok := f.products[p.ProductID]; !ok {
		return repository.ErrNotFound
	}
	f.products[p.ProductID] = *p
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id int) error {
	delete(f.products, id)
	return nil
}

func newCached(t *testing.T) (*CachedProductRepository, *fakeProducts, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	fake := &fakeProducts{products: map[int]models.Product{
		1: {ProductID: 1, Name: "Mug", Price: decimal.RequireFromString("10.00"), Stock: 3},
	}}

	return NewCachedProductRepository(fake, rdb, zap.NewNop()), fake, mr
}

func TestCachedProductRepository_GetByIDReadsThrough(t *testing.T) {
	ctx := context.Background()
	c, fake, mr := newCached(t)

	p, err := c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Name)
	assert.True(t, mr.Exists("product:1"))

	p, err = c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("10")))
	assert.Equal(t, 1, fake.getByID)
}

func TestCachedProductRepository_NegativeCaching(t *testing.T) {
	ctx := context.Background()
	c, fake, mr := newCached(t)

	_, err := c.GetByID(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := mr.Get("product:42")
	require.NoError(t, err)
	assert.Equal(t, notFoundMarker, got)

	_, err = c.GetByID(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 1, fake.getByID)
}

func TestCachedProductRepository_UpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	c, fake, mr := newCached(t)

	_, _, err := c.GetPage(ctx, 1, 20)
	require.NoError(t, err)
	_, err = c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, mr.Exists("products:page:1:20"))

	updated := fake.products[1]
	updated.Stock = 0
	require.NoError(t, c.Update(ctx, &updated))

	assert.False(t, mr.Exists("product:1"))
	assert.False(t, mr.Exists("products:page:1:20"))

	p, err := c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}

func TestCachedProductRepository_GetPageCached(t *testing.T) {
	ctx := context.Background()
	c, fake, _ := newCached(t)

	products, total, err := c.GetPage(ctx, 1, 20)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 1, total)

	_, _, err = c.GetPage(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.getPage)
}

func TestCachedProductRepository_InvalidateWithoutIDs(t *testing.T) {
	ctx := context.Background()
	c, _, mr := newCached(t)

	_, _, err := c.GetPage(ctx, 2, 20)
	require.NoError(t, err)

	c.Invalidate(ctx)
	assert.False(t, mr.Exists("products:page:2:20"))
}
