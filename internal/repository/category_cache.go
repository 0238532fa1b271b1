package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
)

const categoryCacheKey = "support-desk:categories"

type cachedCategoryRepository struct {
	inner  CategoryRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCategoryRepository puts a Redis read-through cache in front of the
// category list. A nil client returns inner unchanged. Cache failures fall
// through to the inner repository.
func NewCachedCategoryRepository(inner CategoryRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) CategoryRepository {
	if client == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &cachedCategoryRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (r *cachedCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	raw, err := r.client.Get(ctx, categoryCacheKey).Bytes()
	if err == nil {
		var cached []domain.Category
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("category cache read failed", zap.Error(err))
	}

	categories, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	// An empty list is about to be seeded; caching it would hide the seed.
	if len(categories) == 0 {
		return categories, nil
	}
	if payload, err := json.Marshal(categories); err == nil {
		if err := r.client.Set(ctx, categoryCacheKey, payload, r.ttl).Err(); err != nil {
			r.logger.Warn("category cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

func (r *cachedCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *cachedCategoryRepository) SeedDefaults(ctx context.Context, categories []domain.Category) error {
	if err := r.inner.SeedDefaults(ctx, categories); err != nil {
		return err
	}
	if err := r.client.Del(ctx, categoryCacheKey).Err(); err != nil {
		r.logger.Warn("category cache invalidation failed", zap.Error(err))
	}
	return nil
}
