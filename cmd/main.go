package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/okian/fantaleague/internal/adapters/cache"
	"github.com/okian/fantaleague/internal/adapters/http/api"
	"github.com/okian/fantaleague/internal/adapters/http/swagger"
	"github.com/okian/fantaleague/internal/adapters/repository"
	service "github.com/okian/fantaleague/internal/app"
	"github.com/okian/fantaleague/internal/config"
	"github.com/okian/fantaleague/internal/scheduler"
	"github.com/okian/fantaleague/pkg/logger"
	"github.com/okian/fantaleague/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 35 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	requestTimeout            = 30 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		logger.Get().Error(context.Background(), "fantaleague exited", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run wires every component from configuration and serves until ctx ends.
func run(ctx context.Context) error {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if cfg.LogFormat != "text" {
		if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
			return err
		}
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn(ctx, "store close failed", logger.Error(err))
		}
	}()

	reportCache, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := reportCache.Close(); err != nil {
			log.Warn(ctx, "cache close failed", logger.Error(err))
		}
	}()

	svc := service.New(store,
		service.WithLogger(log.Named("service")),
		service.WithCache(reportCache),
		service.WithCacheTTL(time.Duration(cfg.CacheTTLSeconds)*time.Second),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeTTL(time.Duration(cfg.DedupeTTLHours)*time.Hour),
		service.WithSeasonGames(cfg.SeasonGames),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Warn(stopCtx, "service stop failed", logger.Error(err))
		}
	}()

	sched, err := scheduler.New(time.Duration(cfg.RefreshIntervalSeconds)*time.Second, svc)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	sched.Start(ctx)
	defer func() { _ = sched.Stop(context.Background()) }()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc, cfg),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store", cfg.StoreDriver),
			logger.String("cache", cfg.CacheDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
	return nil
}

// openStore selects the league store. The memory store is seeded with the
// demo league.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return repository.NewMemoryStore(repository.DemoFixture()), nil
	case config.DriverPostgres:
		return repository.NewPostgresStore(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("%w: unknown store_driver %q", config.ErrInvalidConfig, cfg.StoreDriver)
	}
}

// openCache selects the report cache.
func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	switch cfg.CacheDriver {
	case config.DriverMemory:
		return cache.NewMemoryCache(ttl), nil
	case config.DriverRedis:
		return cache.NewRedisCache(ctx, cfg.RedisURL, ttl)
	default:
		return nil, fmt.Errorf("%w: unknown cache_driver %q", config.ErrInvalidConfig, cfg.CacheDriver)
	}
}

// newHandler mounts the API and docs routes.
func newHandler(ctx context.Context, deps api.Dependencies, cfg *config.Config) http.Handler {
	r := api.NewServer(deps,
		api.WithCORSOrigins(cfg.CORSOrigins),
		api.WithRequestTimeout(requestTimeout),
	).Router()
	swagger.Register(ctx, r)
	return r
}

// startSystemMetricsUpdater updates system metrics until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
