package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/ironcrest/sigforge/internal/render"
	"github.com/rs/zerolog"
)

// SignatureStore defines the interface for signature persistence operations.
type SignatureStore interface {
	CreateSignature(ctx context.Context, sig *models.Signature) error
	GetSignature(ctx context.Context, id uuid.UUID) (*models.Signature, error)
	ListSignaturesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Signature, error)
	UpdateSignature(ctx context.Context, sig *models.Signature) error
	DeleteSignature(ctx context.Context, id uuid.UUID) error
	ListActiveLinks(ctx context.Context, signatureID uuid.UUID) ([]*models.TrackingLink, error)
}

// SignatureFeed publishes signature lifecycle events to the activity feed.
type SignatureFeed interface {
	PublishSignatureCreated(ctx context.Context, userID, signatureID uuid.UUID, name, templateKey string) error
	PublishSignatureUpdated(ctx context.Context, userID, signatureID uuid.UUID, name string) error
	PublishSignatureDeleted(ctx context.Context, userID, signatureID uuid.UUID, name string) error
}

// SignaturesHandler handles signature CRUD endpoints.
type SignaturesHandler struct {
	store    SignatureStore
	feed     SignatureFeed
	assigner LinkAssigner
	logger   zerolog.Logger
}

// NewSignaturesHandler creates a new SignaturesHandler. feed and assigner
// may be nil.
func NewSignaturesHandler(store SignatureStore, feed SignatureFeed, assigner LinkAssigner, logger zerolog.Logger) *SignaturesHandler {
	return &SignaturesHandler{
		store:    store,
		feed:     feed,
		assigner: assigner,
		logger:   logger.With().Str("component", "signatures_handler").Logger(),
	}
}

// RegisterRoutes registers signature routes on the given router group.
func (h *SignaturesHandler) RegisterRoutes(r *gin.RouterGroup) {
	signatures := r.Group("/signatures")
	{
		signatures.GET("", h.List)
		signatures.POST("", h.Create)
		signatures.GET("/:id", h.Get)
		signatures.GET("/:id/links", h.Links)
		signatures.PUT("/:id", h.Update)
		signatures.DELETE("/:id", h.Delete)
	}
}

// requestUserID resolves the caller-supplied user id from the X-User-ID
// header or the user_id query parameter. Identity enforcement is an
// upstream concern; handlers scope data by whatever id the caller presents.
func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		raw = c.Query("user_id")
	}
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// List returns all signatures belonging to the requesting user.
// GET /api/v1/signatures
func (h *SignaturesHandler) List(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	signatures, err := h.store.ListSignaturesByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list signatures")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list signatures"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"signatures": signatures})
}

// Get returns a single signature by ID.
// GET /api/v1/signatures/:id
func (h *SignaturesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature ID"})
		return
	}

	sig, err := h.store.GetSignature(c.Request.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("signature_id", id.String()).Msg("failed to get signature")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get signature"})
		return
	}
	if sig == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "signature not found"})
		return
	}

	c.JSON(http.StatusOK, sig)
}

// Links returns the live tracking links for a signature so callers can
// inspect which short codes their rendered signatures carry.
// GET /api/v1/signatures/:id/links
func (h *SignaturesHandler) Links(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature ID"})
		return
	}

	sig, err := h.store.GetSignature(c.Request.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("signature_id", id.String()).Msg("failed to get signature")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tracking links"})
		return
	}
	if sig == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "signature not found"})
		return
	}

	links, err := h.store.ListActiveLinks(c.Request.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("signature_id", id.String()).Msg("failed to list tracking links")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tracking links"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"links": links})
}

// Create creates a new signature and provisions its tracking links.
// POST /api/v1/signatures
func (h *SignaturesHandler) Create(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	var req models.CreateSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	templateKey := req.TemplateKey
	if templateKey == "" {
		templateKey = render.DefaultTemplateKey
	}
	if !render.IsRegistered(templateKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown template key"})
		return
	}

	sig := &models.Signature{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		TemplateKey: templateKey,
		Config:      req.Config,
	}

	if err := h.store.CreateSignature(c.Request.Context(), sig); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to create signature")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create signature"})
		return
	}

	h.provisionLinks(c.Request.Context(), sig)

	if h.feed != nil {
		if err := h.feed.PublishSignatureCreated(c.Request.Context(), userID, sig.ID, sig.Name, sig.TemplateKey); err != nil {
			h.logger.Warn().Err(err).Msg("failed to publish signature created event")
		}
	}

	c.JSON(http.StatusCreated, sig)
}

// Update applies a partial update to a signature.
// PUT /api/v1/signatures/:id
func (h *SignaturesHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature ID"})
		return
	}

	var req models.UpdateSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	sig, err := h.store.GetSignature(c.Request.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("signature_id", id.String()).Msg("failed to get signature")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update signature"})
		return
	}
	if sig == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "signature not found"})
		return
	}

	if req.Name != nil {
		sig.Name = *req.Name
	}
	if req.TemplateKey != nil {
		if !render.IsRegistered(*req.TemplateKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown template key"})
			return
		}
		sig.TemplateKey = *req.TemplateKey
	}
	if req.Config != nil {
		sig.Config = *req.Config
	}

	if err := h.store.UpdateSignature(c.Request.Context(), sig); err != nil {
		h.logger.Error().Err(err).Str("signature_id", id.String()).Msg("failed to update signature")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update signature"})
		return
	}

	// Contact details may have changed, refresh link destinations.
	if req.Config != nil {
		h.provisionLinks(c.Request.Context(), sig)
	}

	if h.feed != nil {
		if err := h.feed.PublishSignatureUpdated(c.Request.Context(), sig.UserID, sig.ID, sig.Name); err != nil {
			h.logger.Warn().Err(err).Msg("failed to publish signature updated event")
		}
	}

	c.JSON(http.StatusOK, sig)
}

// Delete removes a signature and its dependent rows.
// DELETE /api/v1/signatures/:id
func (h *SignaturesHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature ID"})
		return
	}

	sig, err := h.store.GetSignature(c.Request.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("signature_id", id.String()).Msg("failed to get signature")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete signature"})
		return
	}
	if sig == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "signature not found"})
		return
	}

	if err := h.store.DeleteSignature(c.Request.Context(), id); err != nil {
		h.logger.Error().Err(err).Str("signature_id", id.String()).Msg("failed to delete signature")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete signature"})
		return
	}

	if h.feed != nil {
		if err := h.feed.PublishSignatureDeleted(c.Request.Context(), sig.UserID, sig.ID, sig.Name); err != nil {
			h.logger.Warn().Err(err).Msg("failed to publish signature deleted event")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "signature deleted"})
}

// provisionLinks lazily creates tracking links for the signature's current
// contact details. Failures degrade to canonical URLs at render time.
func (h *SignaturesHandler) provisionLinks(ctx context.Context, sig *models.Signature) {
	if h.assigner == nil {
		return
	}
	if _, err := h.assigner.EnsureLinks(ctx, sig); err != nil {
		h.logger.Warn().Err(err).
			Str("signature_id", sig.ID.String()).
			Msg("failed to provision tracking links")
	}
}
