package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"teaops/backend/internal/cache"
	"teaops/backend/internal/config"
	"teaops/backend/internal/httpapi"
	"teaops/backend/internal/metrics"
	"teaops/backend/internal/service"
	"teaops/backend/internal/store"
	"teaops/backend/internal/store/memory"
	pgstore "teaops/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback")
		}
		repo = pg
		closers = append(closers, pg.Close)
		logger.Info().Msg("repository: postgres")
	} else {
		repo = memory.NewSeeded()
		logger.Info().Msg("repository: in-memory")
	}

	insightCache := cache.InsightCache(cache.NoopInsightCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisInsightCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, using noop cache")
		} else {
			insightCache = redisCache
			closers = append(closers, redisCache.Close)
			logger.Info().Msg("cache: redis")
		}
	} else {
		logger.Info().Msg("cache: noop")
	}

	collectors := metrics.New()
	svc := service.New(repo, insightCache, collectors, logger, time.Duration(cfg.InsightTTLSeconds)*time.Second)
	api := httpapi.New(svc, collectors, logger, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Address()).Msg("dashboard backend listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error().Err(err).Msg("close error")
		}
	}

	logger.Info().Msg("server stopped")
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(parsed).With().Timestamp().Logger()
}
