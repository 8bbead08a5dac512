package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/analytics"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/rs/zerolog"
)

// TrackEventRequest is the payload for the generic tracking endpoint.
type TrackEventRequest struct {
	Event       string `json:"event" binding:"required"`
	SignatureID string `json:"signatureId" binding:"required"`
	UserID      string `json:"userId"`
	LinkType    string `json:"linkType"`
}

// TrackLinkStore resolves the live tracking link for a signature slot.
type TrackLinkStore interface {
	GetActiveLink(ctx context.Context, signatureID uuid.UUID, linkType string) (*models.TrackingLink, error)
}

// TrackHandler handles client-reported engagement events. It covers
// environments where the pixel or redirect cannot fire, such as in-app
// signature previews.
type TrackHandler struct {
	views  ViewRecorder
	clicks ClickRecorder
	links  TrackLinkStore
	logger zerolog.Logger
}

// NewTrackHandler creates a new TrackHandler.
func NewTrackHandler(views ViewRecorder, clicks ClickRecorder, links TrackLinkStore, logger zerolog.Logger) *TrackHandler {
	return &TrackHandler{
		views:  views,
		clicks: clicks,
		links:  links,
		logger: logger.With().Str("component", "track_handler").Logger(),
	}
}

// RegisterRoutes registers track routes on the given router group.
func (h *TrackHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/track", h.Track)
}

// Track records a view or click event reported by a client.
// POST /api/v1/track
func (h *TrackHandler) Track(c *gin.Context) {
	var req TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	sigID, err := uuid.Parse(req.SignatureID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature ID"})
		return
	}

	info := analytics.RequestInfo{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
	}

	switch req.Event {
	case "view":
		var userID *uuid.UUID
		if uid, err := uuid.Parse(req.UserID); err == nil {
			userID = &uid
		}
		if err := h.views.RecordView(c.Request.Context(), sigID, userID, info); err != nil {
			h.logger.Error().Err(err).Str("signature_id", sigID.String()).Msg("failed to record view")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record event"})
			return
		}

	case "click":
		if req.LinkType == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "linkType is required for click events"})
			return
		}
		link, err := h.links.GetActiveLink(c.Request.Context(), sigID, req.LinkType)
		if err != nil {
			h.logger.Error().Err(err).Str("signature_id", sigID.String()).Msg("failed to look up link")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record event"})
			return
		}
		if link == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active link for this slot"})
			return
		}
		if err := h.clicks.RecordClick(c.Request.Context(), link, info); err != nil {
			h.logger.Error().Err(err).Str("signature_id", sigID.String()).Msg("failed to record click")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record event"})
			return
		}

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"recorded": true})
}
