package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/activity"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/rs/zerolog"
)

// ActivityStore defines the interface for activity event queries.
type ActivityStore interface {
	ListActivityEvents(ctx context.Context, filter models.ActivityEventFilter) ([]*models.ActivityEvent, error)
}

// ActivityHandler handles the activity feed endpoints.
type ActivityHandler struct {
	store  ActivityStore
	feed   *activity.Feed
	logger zerolog.Logger
}

// NewActivityHandler creates a new ActivityHandler. feed may be nil, which
// disables the WebSocket endpoint.
func NewActivityHandler(store ActivityStore, feed *activity.Feed, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		store:  store,
		feed:   feed,
		logger: logger.With().Str("component", "activity_handler").Logger(),
	}
}

// RegisterRoutes registers activity routes on the given router group.
func (h *ActivityHandler) RegisterRoutes(r *gin.RouterGroup) {
	act := r.Group("/activity")
	{
		act.GET("", h.List)
		act.GET("/ws", h.WebSocket)
	}
}

// List returns historical activity events, newest first.
// GET /api/v1/activity
func (h *ActivityHandler) List(c *gin.Context) {
	filter := models.ActivityEventFilter{}

	if raw := c.Query("category"); raw != "" {
		category := models.ActivityEventCategory(raw)
		filter.Category = &category
	}
	if raw := c.Query("type"); raw != "" {
		eventType := models.ActivityEventType(raw)
		filter.Type = &eventType
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		filter.UserID = &id
	}
	if raw := c.Query("signature_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature_id"})
			return
		}
		filter.SignatureID = &id
	}
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since timestamp, expected RFC3339"})
			return
		}
		filter.StartTime = &since
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}

	events, err := h.store.ListActivityEvents(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list activity events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list activity events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// WebSocket upgrades the connection and streams live activity events scoped
// to the requesting user.
// GET /api/v1/activity/ws
func (h *ActivityHandler) WebSocket(c *gin.Context) {
	if h.feed == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "activity feed is not enabled"})
		return
	}

	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	h.feed.HandleWebSocket(c.Writer, c.Request, userID)
}
