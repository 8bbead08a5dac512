// Package api provides the HTTP API for the sigforge server.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/ironcrest/sigforge/internal/activity"
	"github.com/ironcrest/sigforge/internal/analytics"
	"github.com/ironcrest/sigforge/internal/api/handlers"
	"github.com/ironcrest/sigforge/internal/api/middleware"
	"github.com/ironcrest/sigforge/internal/cache"
	"github.com/ironcrest/sigforge/internal/catalog"
	"github.com/ironcrest/sigforge/internal/config"
	"github.com/ironcrest/sigforge/internal/db"
	"github.com/ironcrest/sigforge/internal/metrics"
	"github.com/ironcrest/sigforge/internal/tracking"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies. Signature configs are small JSON
// documents, a megabyte is generous.
const maxBodyBytes = 1 << 20

// Config holds configuration for the API router.
type Config struct {
	// Environment controls production-only safety checks.
	Environment config.Environment
	// AllowedOrigins for CORS. Empty means all origins allowed outside production.
	AllowedOrigins []string
	// RateLimit is the limiter rate notation, e.g. "100-M".
	RateLimit string
	// BaseURL is the public base URL embedded in tracking pixels.
	BaseURL string
	// Version information for the version endpoint.
	Version   string
	Commit    string
	BuildDate string
}

// DefaultConfig returns a Config with sensible defaults for development.
func DefaultConfig() Config {
	return Config{
		Environment:    config.EnvDevelopment,
		AllowedOrigins: []string{},
		RateLimit:      "100-M",
		BaseURL:        "http://localhost:8080",
		Version:        "dev",
		Commit:         "unknown",
		BuildDate:      "unknown",
	}
}

// Router wraps a Gin engine with configured middleware and routes.
type Router struct {
	Engine *gin.Engine
	logger zerolog.Logger
}

// NewRouter creates a new Router with the given dependencies. linkCache may
// be nil, which disables the click-path cache.
func NewRouter(
	cfg Config,
	database *db.DB,
	assigner *tracking.Assigner,
	analyticsService *analytics.Service,
	catalogService *catalog.Service,
	feed *activity.Feed,
	linkCache *cache.LinkCache,
	m *metrics.Metrics,
	logger zerolog.Logger,
) (*Router, error) {
	r := &Router{
		Engine: gin.New(),
		logger: logger.With().Str("component", "router").Logger(),
	}

	// Global middleware
	r.Engine.Use(gin.Recovery())
	r.Engine.Use(middleware.RequestLogger(logger))
	r.Engine.Use(middleware.CORS(cfg.AllowedOrigins, cfg.Environment))
	r.Engine.Use(middleware.BodyLimitMiddleware(maxBodyBytes))

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	r.Engine.Use(rateLimiter)

	// Public endpoints
	handlers.NewHealthHandler(database, feed, logger).RegisterPublicRoutes(r.Engine)
	handlers.NewVersionHandler(cfg.Version, cfg.Commit, cfg.BuildDate).RegisterPublicRoutes(r.Engine)
	if m != nil {
		r.Engine.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Email-facing endpoints, unversioned because the URLs are baked into
	// sent signatures and must stay stable.
	handlers.NewClickHandler(database, linkCache, analyticsService, m, logger).RegisterRoutes(r.Engine)
	handlers.NewPixelHandler(analyticsService, logger).RegisterRoutes(r.Engine)

	// API v1 routes
	apiV1 := r.Engine.Group("/api/v1")
	handlers.NewRenderHandler(assigner, m, cfg.BaseURL, logger).RegisterRoutes(apiV1)
	handlers.NewTemplatesHandler(catalogService, logger).RegisterRoutes(apiV1)
	handlers.NewSignaturesHandler(database, feed, assigner, logger).RegisterRoutes(apiV1)
	handlers.NewTrackHandler(analyticsService, analyticsService, database, logger).RegisterRoutes(apiV1)
	handlers.NewAnalyticsHandler(analyticsService, logger).RegisterRoutes(apiV1)
	handlers.NewActivityHandler(database, feed, logger).RegisterRoutes(apiV1)

	return r, nil
}
