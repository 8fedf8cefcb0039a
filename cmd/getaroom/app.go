package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/getaroom/internal/repository"
	"github.com/noah-isme/getaroom/internal/service"
	"github.com/noah-isme/getaroom/pkg/cache"
	"github.com/noah-isme/getaroom/pkg/config"
	"github.com/noah-isme/getaroom/pkg/database"
	"github.com/noah-isme/getaroom/pkg/logger"
)

// app holds what one invocation needs: config, logger, the store connection
// and the optional availability cache.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *sqlx.DB
	metrics *service.MetricsService

	buildings *repository.BuildingRepository
	rooms     *repository.RoomRepository
	slots     *repository.TimeSlotRepository
	cacheRepo *repository.CacheRepository
	cache     *service.CacheService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		_ = logr.Sync()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logr,
		db:        db,
		metrics:   service.NewMetricsService(),
		buildings: repository.NewBuildingRepository(db),
		rooms:     repository.NewRoomRepository(db),
		slots:     repository.NewTimeSlotRepository(db),
	}

	var client *redis.Client
	if cfg.Cache.Enabled {
		client, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, continuing without availability cache", zap.Error(err))
			client = nil
		}
	}
	a.cacheRepo = repository.NewCacheRepository(client, logr)
	a.cache = service.NewCacheService(a.cacheRepo, a.metrics, cfg.Cache.TTL, logr, client != nil)

	return a, nil
}

func (a *app) availability() *service.AvailabilityService {
	return service.NewAvailabilityService(a.buildings, a.rooms, a.slots, a.cache, a.metrics, a.logger)
}

// Close releases the store connection and the cache client.
func (a *app) Close() {
	if err := a.cacheRepo.Close(); err != nil {
		a.logger.Warn("close redis", zap.Error(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
