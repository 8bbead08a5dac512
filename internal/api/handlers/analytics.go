package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/rs/zerolog"
)

// AnalyticsProvider defines the interface for analytics summaries.
type AnalyticsProvider interface {
	SignatureSummary(ctx context.Context, signatureID uuid.UUID, days int) (*models.SignatureAnalytics, error)
	UserSummary(ctx context.Context, userID uuid.UUID, days int) (*models.UserAnalytics, error)
}

// AnalyticsHandler handles analytics summary endpoints.
type AnalyticsHandler struct {
	provider AnalyticsProvider
	logger   zerolog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(provider AnalyticsProvider, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		provider: provider,
		logger:   logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// RegisterRoutes registers analytics routes on the given router group.
func (h *AnalyticsHandler) RegisterRoutes(r *gin.RouterGroup) {
	analytics := r.Group("/analytics")
	{
		analytics.GET("", h.User)
		analytics.GET("/signatures/:id", h.Signature)
	}
}

// queryDays parses the optional ?days= window parameter. Zero means the
// provider default.
func queryDays(c *gin.Context) int {
	days, err := strconv.Atoi(c.Query("days"))
	if err != nil || days < 0 {
		return 0
	}
	return days
}

// clickThroughRate returns clicks per view as a ratio rounded to four
// decimal places. Zero views yields zero, not a division error.
func clickThroughRate(views, clicks int64) float64 {
	if views == 0 {
		return 0
	}
	return math.Round(float64(clicks)/float64(views)*10000) / 10000
}

// Signature returns the engagement summary for one signature.
// GET /api/v1/analytics/signatures/:id
func (h *AnalyticsHandler) Signature(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature ID"})
		return
	}

	summary, err := h.provider.SignatureSummary(c.Request.Context(), id, queryDays(c))
	if err != nil {
		h.logger.Error().Err(err).Str("signature_id", id.String()).Msg("failed to get signature analytics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analytics":          summary,
		"click_through_rate": clickThroughRate(summary.TotalViews, summary.TotalClicks),
	})
}

// User returns the engagement summary across all of a user's signatures.
// GET /api/v1/analytics
func (h *AnalyticsHandler) User(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	summary, err := h.provider.UserSummary(c.Request.Context(), userID, queryDays(c))
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get user analytics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analytics":          summary,
		"click_through_rate": clickThroughRate(summary.TotalViews, summary.TotalClicks),
	})
}
