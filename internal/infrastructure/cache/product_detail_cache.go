package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appcatalog "github.com/store/backend/internal/application/catalog"
)

const productDetailKeyPrefix = "product:detail:"

// RedisProductDetailCache caches assembled product detail views in
// Redis. Every failure is logged and swallowed so the read path
// degrades to the database instead of erroring.
type RedisProductDetailCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ appcatalog.ProductDetailCache = (*RedisProductDetailCache)(nil)
var _ appcatalog.DetailCacheInvalidator = (*RedisProductDetailCache)(nil)

// NewRedisProductDetailCache creates a product detail cache with the
// given entry TTL
func NewRedisProductDetailCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisProductDetailCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisProductDetailCache{client: client, ttl: ttl, logger: logger}
}

func productDetailKey(productID uuid.UUID) string {
	return productDetailKeyPrefix + productID.String()
}

// Get returns the cached detail view, or false on a miss or any
// cache failure
func (c *RedisProductDetailCache) Get(ctx context.Context, productID uuid.UUID) (*appcatalog.ProductDetailResponse, bool) {
	payload, err := c.client.Get(ctx, productDetailKey(productID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("product detail cache read failed",
				zap.String("product_id", productID.String()),
				zap.Error(err))
		}
		return nil, false
	}

	var detail appcatalog.ProductDetailResponse
	if err := json.Unmarshal(payload, &detail); err != nil {
		// A corrupt entry is useless; drop it so the next write heals the key.
		c.logger.Warn("product detail cache entry corrupt, evicting",
			zap.String("product_id", productID.String()),
			zap.Error(err))
		c.Invalidate(ctx, productID)
		return nil, false
	}
	return &detail, true
}

// Set stores the detail view under the configured TTL
func (c *RedisProductDetailCache) Set(ctx context.Context, productID uuid.UUID, detail *appcatalog.ProductDetailResponse) {
	payload, err := json.Marshal(detail)
	if err != nil {
		c.logger.Warn("product detail cache marshal failed",
			zap.String("product_id", productID.String()),
			zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, productDetailKey(productID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("product detail cache write failed",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
}

// Invalidate drops the cached detail view of a product
func (c *RedisProductDetailCache) Invalidate(ctx context.Context, productID uuid.UUID) {
	if err := c.client.Del(ctx, productDetailKey(productID)).Err(); err != nil {
		c.logger.Warn("product detail cache invalidation failed",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
}
