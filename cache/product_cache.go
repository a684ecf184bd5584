package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sierra-health/medequip-api/logger"
	"github.com/sierra-health/medequip-api/models"
	"github.com/sierra-health/medequip-api/repository"
	"go.uber.org/zap"
)

const (
	notFoundMarker = "notfound"
	notFoundTTL    = time.Minute

	// generationKey is bumped whenever a category changes, which retires every
	// cached product detail since those embed their category
	generationKey = "catalog:generation"
)

// CachedProductRepository serves product details from Redis and falls back to the wrapped repository.
// Redis failures never fail a request; they only cost a trip to the database.
type CachedProductRepository struct {
	repository.ProductRepository
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedProductRepository wraps repo with a read-through cache for GetByID
func NewCachedProductRepository(repo repository.ProductRepository, rdb *redis.Client, ttl time.Duration) *CachedProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProductRepository{ProductRepository: repo, redis: rdb, ttl: ttl}
}

func (c *CachedProductRepository) productKey(ctx context.Context, id string) string {
	generation, err := c.redis.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn(ctx, "Redis error reading cache generation", zap.Error(err))
	}
	return fmt.Sprintf("product:%d:%s", generation, id)
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	key := c.productKey(ctx, id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, repository.ErrNotFound
		}
		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			logger.Warn(ctx, "Failed to unmarshal cached product, continuing with database", zap.Error(err))
			break
		}
		return &product, nil
	case errors.Is(err, redis.Nil):
	default:
		logger.Warn(ctx, "Redis error, continuing with database", zap.Error(err))
	}

	product, err := c.ProductRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, notFoundTTL).Err(); setErr != nil {
				logger.Warn(ctx, "Failed to cache missing product", zap.Error(setErr))
			}
		}
		return nil, err
	}

	encoded, err := json.Marshal(product)
	if err != nil {
		logger.Warn(ctx, "Failed to marshal product for cache", zap.Error(err))
		return product, nil
	}
	if err := c.redis.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		logger.Warn(ctx, "Failed to cache product", zap.Error(err))
	}
	return product, nil
}

func (c *CachedProductRepository) invalidate(ctx context.Context, id string) {
	key := c.productKey(ctx, id)
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		logger.Warn(ctx, "Failed to delete product cache", zap.String("key", key), zap.Error(err))
	}
}

// Create also clears a cached miss for the new id
func (c *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := c.ProductRepository.Create(ctx, product); err != nil {
		return err
	}
	c.invalidate(ctx, product.ID)
	return nil
}

func (c *CachedProductRepository) Update(ctx context.Context, product *models.Product) error {
	err := c.ProductRepository.Update(ctx, product)
	c.invalidate(ctx, product.ID)
	return err
}

func (c *CachedProductRepository) Delete(ctx context.Context, id string) error {
	err := c.ProductRepository.Delete(ctx, id)
	c.invalidate(ctx, id)
	return err
}

func (c *CachedProductRepository) AppendReview(ctx context.Context, productID, reviewID string) error {
	err := c.ProductRepository.AppendReview(ctx, productID, reviewID)
	c.invalidate(ctx, productID)
	return err
}
