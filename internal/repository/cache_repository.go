package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/getaroom/internal/models"
	appErrors "github.com/noah-isme/getaroom/pkg/errors"
)

const scanBatch = 100

// CacheRepository keeps computed availability responses in Redis. A nil
// client turns every call into a miss or a no-op.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, logger: logger}
}

// GetAvailability returns the cached response stored under key or
// appErrors.ErrCacheMiss.
func (r *CacheRepository) GetAvailability(ctx context.Context, key string) ([]models.RoomAvailability, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var rooms []models.RoomAvailability
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return nil, fmt.Errorf("unmarshal cached availability %s: %w", key, err)
	}
	return rooms, nil
}

// SetAvailability stores a response for ttl.
func (r *CacheRepository) SetAvailability(ctx context.Context, key string, rooms []models.RoomAvailability, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	if rooms == nil {
		rooms = []models.RoomAvailability{}
	}

	payload, err := json.Marshal(rooms)
	if err != nil {
		return fmt.Errorf("marshal availability %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DeleteByPattern removes every key matching pattern.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		return nil
	}

	var removed int
	iter := r.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", iter.Val(), err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", pattern, err)
	}

	r.logger.Debug("cache entries removed", zap.String("pattern", pattern), zap.Int("count", removed))
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
