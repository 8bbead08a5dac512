// Package main is the entrypoint for the sigforge server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ironcrest/sigforge/internal/activity"
	"github.com/ironcrest/sigforge/internal/analytics"
	"github.com/ironcrest/sigforge/internal/api"
	"github.com/ironcrest/sigforge/internal/cache"
	"github.com/ironcrest/sigforge/internal/catalog"
	"github.com/ironcrest/sigforge/internal/config"
	"github.com/ironcrest/sigforge/internal/db"
	"github.com/ironcrest/sigforge/internal/maintenance"
	"github.com/ironcrest/sigforge/internal/metrics"
	"github.com/ironcrest/sigforge/internal/tracking"
	"github.com/rs/zerolog"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.LoadServerConfig()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("version", Version).Logger()
	if !cfg.IsProduction() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	logger.Info().
		Str("version", Version).
		Str("commit", Commit).
		Str("build_date", BuildDate).
		Msg("Starting sigforge server")

	if cfg.DatabaseURL == "" {
		logger.Error().Msg("DATABASE_URL environment variable is required")
		return 1
	}

	database, err := db.New(ctx, db.DefaultConfig(cfg.DatabaseURL), logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to database")
		return 1
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to run database migrations")
		return 1
	}

	// Seed the template catalog so the picker works on a fresh database.
	catalogService := catalog.NewService(database, logger)
	if _, err := catalogService.SeedTemplates(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to seed template catalog")
		return 1
	}

	// Optional redis cache for the click redirect hot path.
	var linkCache *cache.LinkCache
	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, click lookups will hit the database")
		} else {
			defer redisClient.Close()
			linkCache = cache.NewLinkCache(redisClient, cache.DefaultLinkTTL, logger)
		}
	}

	m := metrics.New()

	feed := activity.NewFeed(database, activity.DefaultConfig(), logger)
	feed.Start()
	defer feed.Stop()

	linkTTL := time.Duration(cfg.LinkTTLDays) * 24 * time.Hour
	assigner := tracking.New(database, cfg.BaseURL, linkTTL, m, logger)
	if linkCache != nil {
		assigner.WithCache(linkCache)
	}

	analyticsService := analytics.NewService(database, feed, m, cfg.IPHashSalt, logger)

	scheduler := maintenance.NewScheduler(database, feed, cfg.RetentionDays, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("Failed to start maintenance scheduler")
	}
	defer scheduler.Stop()

	routerCfg := api.Config{
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.CORSOrigins,
		RateLimit:      cfg.RateLimit,
		BaseURL:        cfg.BaseURL,
		Version:        Version,
		Commit:         Commit,
		BuildDate:      BuildDate,
	}

	router, err := api.NewRouter(routerCfg, database, assigner, analyticsService, catalogService, feed, linkCache, m, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize router")
		return 1
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info().Str("signal", sig.String()).Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown error")
		return 1
	}

	logger.Info().Msg("Server stopped gracefully")
	return 0
}
