package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

const (
	keyPrefix           = "catalog:"
	productKeyPrefix    = keyPrefix + "product:"
	categoryKeyPrefix   = keyPrefix + "category:"
	categoryProductsKey = keyPrefix + "category-products:"
)

var cacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_cache_requests_total",
		Help: "Catalog cache lookups by kind and result (hit, miss, error)",
	},
	[]string{"kind", "result"},
)

// cache is the read-through logic shared by the catalog decorators. Redis
// failures are logged and the lookup falls through to the backing store.
type cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func (c *cache) get(ctx context.Context, kind, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			cacheRequests.WithLabelValues(kind, "miss").Inc()
			return false
		}
		cacheRequests.WithLabelValues(kind, "error").Inc()
		c.logger.WarnContext(ctx, "catalog cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		cacheRequests.WithLabelValues(kind, "error").Inc()
		c.logger.WarnContext(ctx, "catalog cache entry corrupt", slog.String("key", key))
		return false
	}
	cacheRequests.WithLabelValues(kind, "hit").Inc()
	return true
}

func (c *cache) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "catalog cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func (c *cache) del(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "catalog cache invalidation failed",
			slog.Any("keys", keys),
			slog.String("error", err.Error()),
		)
	}
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// CategoryCache decorates a CategoryRepository with a read-through cache
// for slug lookups.
type CategoryCache struct {
	repository.CategoryRepository
	cache cache
}

// NewCategoryCache wraps next with a Redis cache whose entries live for ttl.
func NewCategoryCache(next repository.CategoryRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CategoryCache {
	return &CategoryCache{
		CategoryRepository: next,
		cache:              cache{client: client, ttl: ttl, logger: logger},
	}
}

// GetBySlug serves the category from Redis when cached.
func (r *CategoryCache) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	key := categoryKeyPrefix + slug

	var c domain.Category
	if r.cache.get(ctx, "category", key, &c) {
		return &c, nil
	}

	found, err := r.CategoryRepository.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	r.cache.set(ctx, key, found)
	return found, nil
}

// ProductCache decorates a ProductRepository with a read-through cache for
// slug lookups and per-category listings.
type ProductCache struct {
	repository.ProductRepository
	cache cache
}

// NewProductCache wraps next with a Redis cache whose entries live for ttl.
func NewProductCache(next repository.ProductRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *ProductCache {
	return &ProductCache{
		ProductRepository: next,
		cache:             cache{client: client, ttl: ttl, logger: logger},
	}
}

// GetBySlug serves the product from Redis when cached.
func (r *ProductCache) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	key := productKeyPrefix + slug

	var p domain.Product
	if r.cache.get(ctx, "product", key, &p) {
		return &p, nil
	}

	found, err := r.ProductRepository.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	r.cache.set(ctx, key, found)
	return found, nil
}

// ListByCategory serves a category's products from Redis when cached.
func (r *ProductCache) ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	key := categoryProductsKey + categoryID

	var products []domain.Product
	if r.cache.get(ctx, "category_products", key, &products) {
		return products, nil
	}

	found, err := r.ProductRepository.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	r.cache.set(ctx, key, found)
	return found, nil
}

// Create inserts the product and drops its category's cached listing.
func (r *ProductCache) Create(ctx context.Context, p *domain.Product) error {
	if err := r.ProductRepository.Create(ctx, p); err != nil {
		return err
	}
	r.cache.del(ctx, categoryProductsKey+p.CategoryID, productKeyPrefix+p.Slug)
	return nil
}

// UpdatePrice stores the new price and drops the product's cached entries.
func (r *ProductCache) UpdatePrice(ctx context.Context, p *domain.Product, price decimal.Decimal) error {
	if err := r.ProductRepository.UpdatePrice(ctx, p, price); err != nil {
		return err
	}
	r.cache.del(ctx, categoryProductsKey+p.CategoryID, productKeyPrefix+p.Slug)
	return nil
}
