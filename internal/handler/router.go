package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/getaroom/internal/middleware"
	"github.com/noah-isme/getaroom/internal/service"
	"github.com/noah-isme/getaroom/pkg/logger"
	corsmiddleware "github.com/noah-isme/getaroom/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/getaroom/pkg/middleware/requestid"
)

// RouterConfig carries what the HTTP surface needs.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	Availability   availabilityFinder
	Metrics        *service.MetricsService
	Logger         *zap.Logger
}

// NewRouter builds the gin engine serving health, metrics and availability.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	metricsHandler := NewMetricsHandler(cfg.Metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	availability := NewAvailabilityHandler(cfg.Availability)
	api.GET("/buildings/:code/available", availability.Available)

	return r
}
