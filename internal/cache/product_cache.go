package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
)

const (
	notFoundMarker = "notfound"
	pageKeyPattern = "products:page:*"
)

// CachedProductRepository is a read-through cache for the storefront catalog.
// Stock checks in the cart and at payment must go to the live repository,
// never through this cache.
type CachedProductRepository struct {
	realRepo repository.ProductRepository
	redis    *redis.Client
	ttl      time.Duration
	logger   *zap.Logger
}

func NewCachedProductRepository(realRepo repository.ProductRepository, redis *redis.Client, logger *zap.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    redis,
		ttl:      5 * time.Minute,
		logger:   logger,
	}
}

type cachedPage struct {
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
}

func productKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}

func pageKey(page, perPage int) string {
	return fmt.Sprintf("products:page:%d:%d", page, perPage)
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	key := productKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, repository.ErrNotFound
		}

		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			c.logger.Warn("failed to unmarshal cached product, continuing with DB", zap.String("key", key), zap.Error(err))
			break
		}

		return &product, nil

	case errors.Is(err, redis.Nil):

	default:
		c.logger.Warn("redis error, continuing with DB", zap.String("key", key), zap.Error(err))
	}

	product, err := c.realRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, time.Minute).Err(); setErr != nil {
				c.logger.Warn("failed to cache notfound", zap.String("key", key), zap.Error(setErr))
			}
		}
		return nil, err
	}

	c.store(ctx, key, product)

	return product, nil
}

func (c *CachedProductRepository) GetPage(ctx context.Context, page, perPage int) ([]models.Product, int, error) {
	key := pageKey(page, perPage)

	data, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var cached cachedPage
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached.Products, cached.Total, nil
		}
		c.logger.Warn("failed to unmarshal cached page, continuing with DB", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("redis error, continuing with DB", zap.String("key", key), zap.Error(err))
	}

	products, total, err := c.realRepo.GetPage(ctx, page, perPage)
	if err != nil {
		return nil, 0, err
	}

	c.store(ctx, key, cachedPage{Products: products, Total: total})

	return products, total, nil
}

// GetAll and SearchByName are admin and search paths and are not cached.
func (c *CachedProductRepository) GetAll(ctx context.Context, filter repository.StockFilter) ([]models.Product, error) {
	return c.realRepo.GetAll(ctx, filter)
}

func (c *CachedProductRepository) SearchByName(ctx context.Context, query string) ([]models.Product, error) {
	return c.realRepo.SearchByName(ctx, query)
}

func (c *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := c.realRepo.Create(ctx, product); err != nil {
		return err
	}
	c.Invalidate(ctx, product.ProductID)
	return nil
}

func (c *CachedProductRepository) Update(ctx context.Context, product *models.Product) error {
	err := c.realRepo.Update(ctx, product)
	c.Invalidate(ctx, product.ProductID)
	return err
}

func (c *CachedProductRepository) Delete(ctx context.Context, id int) error {
	err := c.realRepo.Delete(ctx, id)
	c.Invalidate(ctx, id)
	return err
}

// Invalidate drops the cached products and every cached listing page.
func (c *CachedProductRepository) Invalidate(ctx context.Context, ids ...int) {
	if len(ids) > 0 {
		keys := make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, productKey(id))
		}
		if err := c.redis.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn("failed to delete product cache", zap.Strings("keys", keys), zap.Error(err))
		}
	}

	iter := c.redis.Scan(ctx, 0, pageKeyPattern, 100).Iterator()
	var pages []string
	for iter.Next(ctx) {
		pages = append(pages, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("failed to scan page cache", zap.Error(err))
		return
	}
	if len(pages) == 0 {
		return
	}
	if err := c.redis.Del(ctx, pages...).Err(); err != nil {
		c.logger.Warn("failed to delete page cache", zap.Error(err))
	}
}

func (c *CachedProductRepository) store(ctx context.Context, key string, v any) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache entry", zap.String("key", key), zap.Error(err))
	}
}
