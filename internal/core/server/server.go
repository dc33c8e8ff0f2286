// Package server wires the chi router and runs the HTTP listener.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uiuifree/go-jismeshcode/internal/core/config"
	"github.com/uiuifree/go-jismeshcode/internal/core/health"
	middleware "github.com/uiuifree/go-jismeshcode/internal/core/middleware"
	"github.com/uiuifree/go-jismeshcode/internal/core/router"
)

type Options struct {
	MetricsHandler http.Handler
	Ready          health.ReadinessReporter
}

// sets up http and starts serving
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, handler router.QueryHandler, opts Options) error {
	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recover())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	if opts.Ready != nil {
		r.Get("/readyz", health.Readiness(opts.Ready))
	}
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/query", router.HandleQuery(logger, cfg, handler))
	r.Get("/encode", router.HandleEncode())
	r.Get("/decode", router.HandleDecode())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
