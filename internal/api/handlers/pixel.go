package handlers

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/analytics"
	"github.com/rs/zerolog"
)

// transparentGIF is a 1x1 transparent GIF, served on every pixel request
// regardless of whether the view could be recorded.
var transparentGIF, _ = base64.StdEncoding.DecodeString(
	"R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7")

// ViewRecorder records signature view events for analytics.
type ViewRecorder interface {
	RecordView(ctx context.Context, signatureID uuid.UUID, userID *uuid.UUID, info analytics.RequestInfo) error
}

// PixelHandler serves the tracking pixel.
type PixelHandler struct {
	recorder ViewRecorder
	logger   zerolog.Logger
}

// NewPixelHandler creates a new PixelHandler.
func NewPixelHandler(recorder ViewRecorder, logger zerolog.Logger) *PixelHandler {
	return &PixelHandler{
		recorder: recorder,
		logger:   logger.With().Str("component", "pixel_handler").Logger(),
	}
}

// RegisterRoutes registers the pixel route on the given engine. Unversioned
// for the same reason as the click redirect: the URL is baked into emails.
func (h *PixelHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/pixel", h.Serve)
}

// Serve records a signature view and returns the transparent GIF. The image
// response never fails, a broken pixel would show up in recipients' emails.
// GET /api/pixel?s=<signature>&u=<user>
func (h *PixelHandler) Serve(c *gin.Context) {
	if sigID, err := uuid.Parse(c.Query("s")); err == nil && h.recorder != nil {
		var userID *uuid.UUID
		if uid, err := uuid.Parse(c.Query("u")); err == nil {
			userID = &uid
		}

		info := analytics.RequestInfo{
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Referer:   c.Request.Referer(),
		}
		if err := h.recorder.RecordView(c.Request.Context(), sigID, userID, info); err != nil {
			h.logger.Warn().Err(err).Str("signature_id", sigID.String()).Msg("failed to record view")
		}
	}

	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Data(http.StatusOK, "image/gif", transparentGIF)
}
