package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/content-ratings/internal/auth"
	"github.com/Clark-Hu/content-ratings/internal/cache"
	"github.com/Clark-Hu/content-ratings/internal/config"
	"github.com/Clark-Hu/content-ratings/internal/domain"
	httpserver "github.com/Clark-Hu/content-ratings/internal/http"
	"github.com/Clark-Hu/content-ratings/internal/logging"
	"github.com/Clark-Hu/content-ratings/internal/metrics"
	"github.com/Clark-Hu/content-ratings/internal/repository"
	"github.com/Clark-Hu/content-ratings/internal/service"
	"github.com/Clark-Hu/content-ratings/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		l := logging.Logger()
		l.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger := logging.Logger().With().Str("service", "content-ratings").Logger()

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer st.Close()

	if cfg.DBAutoMigrate {
		if err := st.Migrate(dbCtx); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	if err := metrics.RegisterPoolStats(prometheus.DefaultRegisterer, st.Stats); err != nil {
		logger.Warn().Err(err).Msg("register pool metrics")
	}

	contentCache, closeCache := openCache(ctx, cfg, logger)
	defer closeCache()

	verifier, err := auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.TokenTTLHours)*time.Hour)
	if err != nil {
		return fmt.Errorf("init token verifier: %w", err)
	}

	categories := make([]domain.Category, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		categories = append(categories, domain.Category(c))
	}

	repo := repository.New(st)
	catalog := service.NewCatalogService(repo.Content, contentCache, domain.NewCategorySet(categories...), logger)
	ratings := service.NewRatingService(repo.Ratings, logger)
	server := httpserver.New(cfg, st, catalog, ratings, auth.NewGate(verifier), logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	var runErr error
	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	logger.Info().Msg("server stopped")
	return runErr
}

// openCache connects to Redis when REDIS_URL is set. An unreachable Redis
// degrades to no caching rather than failing startup.
func openCache(ctx context.Context, cfg config.Config, logger zerolog.Logger) (cache.ContentCache, func()) {
	if cfg.RedisURL == "" {
		return cache.Noop{}, func() {}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rc, err := cache.NewRedis(pingCtx, cfg.RedisURL, time.Duration(cfg.CacheTTLSecs)*time.Second)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, content cache disabled")
		return cache.Noop{}, func() {}
	}
	logger.Info().Int("ttl_secs", cfg.CacheTTLSecs).Msg("content cache enabled")
	return rc, func() { _ = rc.Close() }
}
