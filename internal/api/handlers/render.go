package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/metrics"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/ironcrest/sigforge/internal/render"
	"github.com/rs/zerolog"
)

// LinkAssigner provisions tracking links for a signature and returns the
// canonical-URL to redirect-URL substitution map.
type LinkAssigner interface {
	EnsureLinks(ctx context.Context, sig *models.Signature) (map[string]string, error)
}

// RenderRequest is the payload for the render endpoint. Field names match
// the signature builder payload.
type RenderRequest struct {
	TemplateKey string                  `json:"templateKey"`
	Config      *render.SignatureConfig `json:"config"`
	SignatureID string                  `json:"signatureId"`
	UserID      string                  `json:"userId"`
	Tracking    bool                    `json:"tracking"`
}

// RenderHandler handles signature rendering endpoints.
type RenderHandler struct {
	assigner LinkAssigner
	metrics  *metrics.Metrics
	baseURL  string
	logger   zerolog.Logger
}

// NewRenderHandler creates a new RenderHandler. assigner may be nil, in
// which case rendered signatures always carry canonical URLs.
func NewRenderHandler(assigner LinkAssigner, m *metrics.Metrics, baseURL string, logger zerolog.Logger) *RenderHandler {
	return &RenderHandler{
		assigner: assigner,
		metrics:  m,
		baseURL:  baseURL,
		logger:   logger.With().Str("component", "render_handler").Logger(),
	}
}

// RegisterRoutes registers render routes on the given router group.
func (h *RenderHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/render", h.Render)
}

// Render renders a signature configuration to HTML.
// POST /api/v1/render
func (h *RenderHandler) Render(c *gin.Context) {
	var req RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Config == nil && req.TemplateKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "templateKey or config is required"})
		return
	}

	cfg := req.Config
	if cfg == nil {
		cfg = &render.SignatureConfig{}
	}

	templateKey := req.TemplateKey
	if templateKey == "" || !render.IsRegistered(templateKey) {
		templateKey = render.DefaultTemplateKey
	}

	sigID, userID := h.parseIDs(req.SignatureID, req.UserID)

	var tracking map[string]string
	if req.Tracking && h.assigner != nil && sigID != uuid.Nil && userID != uuid.Nil {
		sig := &models.Signature{ID: sigID, UserID: userID, Config: *cfg}
		links, err := h.assigner.EnsureLinks(c.Request.Context(), sig)
		if err != nil {
			h.logger.Warn().Err(err).
				Str("signature_id", sigID.String()).
				Msg("tracking link assignment failed, rendering with canonical URLs")
		} else {
			tracking = links
		}
	}

	html, err := render.Render(cfg, templateKey, tracking)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to render signature")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render signature"})
		return
	}

	if req.Tracking && req.SignatureID != "" && req.UserID != "" {
		html += render.TrackingPixel(h.baseURL, req.SignatureID, req.UserID)
	}

	if h.metrics != nil {
		h.metrics.RendersTotal.WithLabelValues(templateKey).Inc()
	}

	c.JSON(http.StatusOK, gin.H{
		"html":        html,
		"templateKey": templateKey,
	})
}

func (h *RenderHandler) parseIDs(signatureID, userID string) (uuid.UUID, uuid.UUID) {
	sigID, err := uuid.Parse(signatureID)
	if err != nil {
		return uuid.Nil, uuid.Nil
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil
	}
	return sigID, uid
}
