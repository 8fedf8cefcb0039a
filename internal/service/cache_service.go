package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/getaroom/internal/models"
	"github.com/noah-isme/getaroom/internal/timetable"
	appErrors "github.com/noah-isme/getaroom/pkg/errors"
)

// AvailabilityKeyPattern matches every cached availability response.
const AvailabilityKeyPattern = "availability:*"

// CacheRepository abstracts persistence for cached availability responses.
type CacheRepository interface {
	GetAvailability(ctx context.Context, key string) ([]models.RoomAvailability, error)
	SetAvailability(ctx context.Context, key string, rooms []models.RoomAvailability, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService is a read-through cache for availability responses. Results
// depend only on the store, the weekday and the minute, so those form the key.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// AvailabilityKey builds the cache key for a building at an instant.
func AvailabilityKey(buildingCode string, now time.Time) string {
	return fmt.Sprintf("availability:%s:%s:%s", buildingCode, timetable.DayForWeekday(now.Weekday()), timetable.ClockOf(now).Format24())
}

// Get returns the cached response and whether it was a hit. Lookup failures
// are logged and reported as misses.
func (s *CacheService) Get(ctx context.Context, key string) ([]models.RoomAvailability, bool) {
	if !s.Enabled() {
		return nil, false
	}
	rooms, err := s.repo.GetAvailability(ctx, key)
	if err != nil {
		s.metrics.RecordCacheLookup(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	s.metrics.RecordCacheLookup(true)
	return rooms, true
}

// Set stores a response.
func (s *CacheService) Set(ctx context.Context, key string, rooms []models.RoomAvailability) {
	if !s.Enabled() {
		return
	}
	if err := s.repo.SetAvailability(ctx, key, rooms, s.ttl); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}
