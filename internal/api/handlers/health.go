package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DatabaseHealthChecker defines the interface for database health checking.
type DatabaseHealthChecker interface {
	Ping(ctx context.Context) error
	Health() map[string]any
}

// FeedStats reports activity feed connection counts.
type FeedStats interface {
	GetTotalClientCount() int
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db     DatabaseHealthChecker
	feed   FeedStats
	logger zerolog.Logger
}

// NewHealthHandler creates a new HealthHandler. feed may be nil.
func NewHealthHandler(db DatabaseHealthChecker, feed FeedStats, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		feed:   feed,
		logger: logger.With().Str("component", "health_handler").Logger(),
	}
}

// RegisterPublicRoutes registers health routes on the engine root.
func (h *HealthHandler) RegisterPublicRoutes(r *gin.Engine) {
	r.GET("/health", h.Overall)
}

// Overall returns the overall service health.
// GET /health
func (h *HealthHandler) Overall(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	httpStatus := http.StatusOK

	dbCheck := gin.H{"status": "healthy"}
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error().Err(err).Msg("database health check failed")
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
		dbCheck = gin.H{"status": "unhealthy", "error": err.Error()}
	} else {
		dbCheck["details"] = h.db.Health()
	}

	response := gin.H{
		"status": status,
		"checks": gin.H{"database": dbCheck},
	}
	if h.feed != nil {
		response["feed_clients"] = h.feed.GetTotalClientCount()
	}

	c.JSON(httpStatus, response)
}
