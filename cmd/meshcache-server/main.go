package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/uiuifree/go-jismeshcode/internal/cache"
	"github.com/uiuifree/go-jismeshcode/internal/cache/memcache"
	"github.com/uiuifree/go-jismeshcode/internal/cache/redisstore"
	"github.com/uiuifree/go-jismeshcode/internal/core/config"
	"github.com/uiuifree/go-jismeshcode/internal/core/health"
	"github.com/uiuifree/go-jismeshcode/internal/core/observability"
	"github.com/uiuifree/go-jismeshcode/internal/core/server"
	"github.com/uiuifree/go-jismeshcode/internal/invalidation/kafkaconsumer"
	"github.com/uiuifree/go-jismeshcode/internal/logger"
	meshmapper "github.com/uiuifree/go-jismeshcode/internal/mapper/jismesh"
	"github.com/uiuifree/go-jismeshcode/internal/metrics"
	"github.com/uiuifree/go-jismeshcode/internal/tiles"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Component: "meshcache",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	p := metrics.Init(metrics.BuildInfo{
		Version:   Version,
		Revision:  os.Getenv("BUILD_REVISION"),
		BuildDate: os.Getenv("BUILD_DATE"),
	})
	observability.Init(p.Registerer())
	observability.ExposeBuildInfo(Version)

	appLog.Info("starting meshcache",
		"addr", cfg.Addr,
		"version", Version,
		"level", cfg.MeshLevel.String(),
		"redis", cfg.RedisAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rc, err := redisstore.New(ctx, cfg.RedisAddr)
	if err != nil {
		appLog.Error("redis setup failed", "err", err)
		return 1
	}
	defer func() { _ = rc.Close() }()

	var store cache.Interface = redisstore.NewAdapter(rc, cfg.CacheOpTimeout)
	if cfg.L1CacheSize > 0 {
		tiered, err := memcache.New(cfg.L1CacheSize, cfg.CacheTTLDefault, store)
		if err != nil {
			appLog.Error("l1 cache setup failed", "err", err)
			return 1
		}
		store = tiered
	}

	mapr := meshmapper.New()
	engine := tiles.New(cfg, appLog, mapr, store)

	var ready health.ReadinessReporter
	if cfg.Invalidation.Enabled {
		consumer := kafkaconsumer.New(
			kafkaconsumer.FromConfig(cfg.Invalidation),
			appLog, store, mapr, cfg.LevelRange(),
		)
		ready = consumer
		go func() {
			if err := consumer.Start(ctx); err != nil {
				appLog.Error("kafka consumer exited", "err", err)
			}
		}()
	}

	if err := server.Run(ctx, cfg, appLog, engine, server.Options{
		MetricsHandler: p.Handler(),
		Ready:          ready,
	}); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
