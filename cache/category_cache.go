package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sierra-health/medequip-api/logger"
	"github.com/sierra-health/medequip-api/models"
	"github.com/sierra-health/medequip-api/repository"
	"go.uber.org/zap"
)

const categoriesKey = "categories:all"

// CachedCategoryRepository caches the category list and retires cached
// product details whenever a category changes
type CachedCategoryRepository struct {
	repository.CategoryRepository
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedCategoryRepository wraps repo with a read-through cache for List
func NewCachedCategoryRepository(repo repository.CategoryRepository, rdb *redis.Client, ttl time.Duration) *CachedCategoryRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedCategoryRepository{CategoryRepository: repo, redis: rdb, ttl: ttl}
}

func (c *CachedCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	data, err := c.redis.Get(ctx, categoriesKey).Bytes()
	if err == nil {
		var categories []models.Category
		if err := json.Unmarshal(data, &categories); err == nil {
			return categories, nil
		}
		logger.Warn(ctx, "Failed to unmarshal cached categories, continuing with database", zap.Error(err))
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn(ctx, "Redis error, continuing with database", zap.Error(err))
	}

	categories, err := c.CategoryRepository.List(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(categories)
	if err != nil {
		logger.Warn(ctx, "Failed to marshal categories for cache", zap.Error(err))
		return categories, nil
	}
	if err := c.redis.Set(ctx, categoriesKey, encoded, c.ttl).Err(); err != nil {
		logger.Warn(ctx, "Failed to cache categories", zap.Error(err))
	}
	return categories, nil
}

func (c *CachedCategoryRepository) invalidate(ctx context.Context) {
	pipe := c.redis.TxPipeline()
	pipe.Del(ctx, categoriesKey)
	pipe.Incr(ctx, generationKey)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn(ctx, "Failed to invalidate category cache", zap.Error(err))
	}
}

func (c *CachedCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := c.CategoryRepository.Create(ctx, category); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachedCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	err := c.CategoryRepository.Update(ctx, category)
	c.invalidate(ctx)
	return err
}

func (c *CachedCategoryRepository) Delete(ctx context.Context, id string) error {
	err := c.CategoryRepository.Delete(ctx, id)
	c.invalidate(ctx)
	return err
}

// Wrap returns a copy of store whose product and category repositories are cached in Redis
func Wrap(store *repository.Store, rdb *redis.Client, ttl time.Duration) *repository.Store {
	wrapped := *store
	wrapped.Products = NewCachedProductRepository(store.Products, rdb, ttl)
	wrapped.Categories = NewCachedCategoryRepository(store.Categories, rdb, ttl)
	return &wrapped
}
