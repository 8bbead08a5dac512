package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/rs/zerolog"
)

// TemplateCatalog defines the interface for template catalog lookups.
type TemplateCatalog interface {
	List(ctx context.Context) ([]*models.Template, error)
	Get(ctx context.Context, key string) (*models.Template, error)
}

// TemplatesHandler handles template catalog HTTP endpoints.
type TemplatesHandler struct {
	catalog TemplateCatalog
	logger  zerolog.Logger
}

// NewTemplatesHandler creates a new TemplatesHandler.
func NewTemplatesHandler(catalog TemplateCatalog, logger zerolog.Logger) *TemplatesHandler {
	return &TemplatesHandler{
		catalog: catalog,
		logger:  logger.With().Str("component", "templates_handler").Logger(),
	}
}

// RegisterRoutes registers template routes on the given router group.
func (h *TemplatesHandler) RegisterRoutes(r *gin.RouterGroup) {
	templates := r.Group("/templates")
	{
		templates.GET("", h.List)
		templates.GET("/:key", h.Get)
	}
}

// List returns all active catalog templates in display order.
// GET /api/v1/templates
func (h *TemplatesHandler) List(c *gin.Context) {
	templates, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list templates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list templates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// Get returns a single catalog template by key.
// GET /api/v1/templates/:key
func (h *TemplatesHandler) Get(c *gin.Context) {
	key := c.Param("key")

	template, err := h.catalog.Get(c.Request.Context(), key)
	if err != nil {
		h.logger.Error().Err(err).Str("template_key", key).Msg("failed to get template")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get template"})
		return
	}
	if template == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}

	c.JSON(http.StatusOK, template)
}
