package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/getaroom/internal/handler"
	"github.com/noah-isme/getaroom/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serve(ctx context.Context) error {
	if a.cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      a.cfg.APIPrefix,
		AllowedOrigins: a.cfg.CORS.AllowedOrigins,
		Availability:   a.availability(),
		Metrics:        a.metrics,
		Logger:         a.logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", a.cfg.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("server stopping")
	return srv.Shutdown(shutdownCtx)
}
