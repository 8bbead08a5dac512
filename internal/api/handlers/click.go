package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ironcrest/sigforge/internal/analytics"
	"github.com/ironcrest/sigforge/internal/cache"
	"github.com/ironcrest/sigforge/internal/metrics"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/rs/zerolog"
)

// LinkStore defines the interface for tracking link lookups.
type LinkStore interface {
	GetTrackingLinkByCode(ctx context.Context, code string) (*models.TrackingLink, error)
}

// ClickRecorder records click events for analytics.
type ClickRecorder interface {
	RecordClick(ctx context.Context, link *models.TrackingLink, info analytics.RequestInfo) error
}

// ClickHandler handles tracking link redirects.
type ClickHandler struct {
	store    LinkStore
	cache    *cache.LinkCache
	recorder ClickRecorder
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewClickHandler creates a new ClickHandler. cache and recorder may be nil.
func NewClickHandler(store LinkStore, linkCache *cache.LinkCache, recorder ClickRecorder, m *metrics.Metrics, logger zerolog.Logger) *ClickHandler {
	return &ClickHandler{
		store:    store,
		cache:    linkCache,
		recorder: recorder,
		metrics:  m,
		logger:   logger.With().Str("component", "click_handler").Logger(),
	}
}

// RegisterRoutes registers the click redirect route on the given engine.
// The path is short and unversioned because it ships inside sent emails.
func (h *ClickHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/click", h.Redirect)
}

// Redirect resolves a short code, records the click, and redirects to the
// destination URL.
// GET /api/click?c=<code>
func (h *ClickHandler) Redirect(c *gin.Context) {
	code := c.Query("c")
	if code == "" {
		h.notFound(c)
		return
	}

	link := h.lookup(c.Request.Context(), code)
	if link == nil {
		if h.metrics != nil {
			h.metrics.UnknownCodeHits.Inc()
		}
		h.notFound(c)
		return
	}

	if !link.Resolvable(time.Now()) {
		// The destination is still known, so forward the visitor without
		// recording a click against a retired link.
		if h.metrics != nil {
			h.metrics.ExpiredLinkHits.Inc()
		}
		c.Redirect(http.StatusFound, link.Destination)
		return
	}

	if h.recorder != nil {
		info := analytics.RequestInfo{
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Referer:   c.Request.Referer(),
		}
		if err := h.recorder.RecordClick(c.Request.Context(), link, info); err != nil {
			h.logger.Warn().Err(err).Str("short_code", code).Msg("failed to record click")
		}
	}

	c.Redirect(http.StatusFound, link.Destination)
}

// lookup checks the cache before the database and repopulates the cache on
// a database hit.
func (h *ClickHandler) lookup(ctx context.Context, code string) *models.TrackingLink {
	if h.cache != nil {
		if link := h.cache.Get(ctx, code); link != nil {
			return link
		}
	}

	link, err := h.store.GetTrackingLinkByCode(ctx, code)
	if err != nil {
		h.logger.Error().Err(err).Str("short_code", code).Msg("failed to look up tracking link")
		return nil
	}
	if link == nil {
		return nil
	}

	if h.cache != nil {
		h.cache.Set(ctx, link)
	}
	return link
}

func (h *ClickHandler) notFound(c *gin.Context) {
	c.Data(http.StatusNotFound, "text/html; charset=utf-8",
		[]byte("<html><body><p>This link is no longer available.</p></body></html>"))
}
