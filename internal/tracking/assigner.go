package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/db"
	"github.com/ironcrest/sigforge/internal/metrics"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/ironcrest/sigforge/internal/render"
	"github.com/rs/zerolog"
)

// maxCodeAttempts bounds short code regeneration on collision.
const maxCodeAttempts = 5

// Store is the persistence interface the assigner needs.
type Store interface {
	GetActiveLink(ctx context.Context, signatureID uuid.UUID, linkType string) (*models.TrackingLink, error)
	CreateTrackingLink(ctx context.Context, link *models.TrackingLink) error
	DeactivateLink(ctx context.Context, id uuid.UUID) error
}

// Invalidator evicts a cached short-code lookup. The click endpoint caches
// resolved links, so retiring a link without eviction leaves the stale
// entry serving until its cache TTL lapses.
type Invalidator interface {
	Invalidate(ctx context.Context, code string)
}

// Assigner finds or creates tracking links for a signature's link slots and
// produces the category-to-redirect map the renderer consumes.
type Assigner struct {
	store   Store
	baseURL string
	linkTTL time.Duration
	metrics *metrics.Metrics
	cache   Invalidator
	logger  zerolog.Logger
}

// New creates an Assigner. baseURL is the public origin the redirect
// endpoint is served from. linkTTL of zero means links never expire.
// m may be nil when assignment outcomes are not being counted.
func New(store Store, baseURL string, linkTTL time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Assigner {
	return &Assigner{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		linkTTL: linkTTL,
		metrics: m,
		logger:  logger.With().Str("component", "tracking").Logger(),
	}
}

// WithCache attaches the short-code cache so retired links are evicted
// immediately instead of lingering until the cache TTL expires.
func (a *Assigner) WithCache(c Invalidator) *Assigner {
	a.cache = c
	return a
}

func (a *Assigner) countOutcome(outcome string) {
	if a.metrics != nil {
		a.metrics.LinksTotal.WithLabelValues(outcome).Inc()
	}
}

// RedirectURL builds the public click-through URL for a short code.
func (a *Assigner) RedirectURL(code string) string {
	return a.baseURL + "/api/click?c=" + code
}

// telDestination strips a phone number down to digits and '+' for a tel:
// destination.
func telDestination(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return "tel:" + b.String()
}

// DestinationMap extracts the trackable link slots from a signature config:
// one entry per populated category, keyed by link type, valued with the
// canonical destination URL. Email and phone carry their mailto:/tel:
// schemes so the redirect endpoint can send clicks straight through.
func DestinationMap(cfg *render.SignatureConfig) map[string]string {
	dests := make(map[string]string)
	set := func(linkType, dest string) {
		if v := strings.TrimSpace(dest); v != "" {
			dests[linkType] = v
		}
	}

	if v := strings.TrimSpace(cfg.Contact.Email); v != "" {
		dests[models.LinkTypeEmail] = "mailto:" + v
	}
	if v := strings.TrimSpace(cfg.Contact.Phone); v != "" {
		dests[models.LinkTypePhone] = telDestination(v)
	}
	set(models.LinkTypeWebsite, cfg.Contact.Website)
	set(models.LinkTypeCalendly, cfg.Contact.Calendly)
	set(models.LinkTypeLinkedIn, cfg.Links.LinkedIn)
	set(models.LinkTypeX, cfg.Links.X)
	set(models.LinkTypeGitHub, cfg.Links.GitHub)
	set(models.LinkTypeFacebook, cfg.Links.Facebook)
	set(models.LinkTypeInstagram, cfg.Links.Instagram)
	set(models.LinkTypeYouTube, cfg.Links.YouTube)

	// The renderer substitutes the custom redirect into the first entry it
	// keeps, so the slot's destination must come from that same entry.
	if dest, ok := render.FirstCTADestination(cfg.Addons.CTA); ok {
		dests[models.LinkTypeCustom] = dest
	}
	return dests
}

// EnsureLinks brings the signature's tracking links in line with its
// current config and returns the category-to-redirect map. Existing links
// whose destination still matches are reused; stale ones are retired and
// replaced. A slot that cannot be assigned is left out of the map, so the
// rendered signature falls back to the canonical URL for that slot. Only a
// total failure returns an error.
func (a *Assigner) EnsureLinks(ctx context.Context, sig *models.Signature) (map[string]string, error) {
	dests := DestinationMap(&sig.Config)
	if len(dests) == 0 {
		return nil, nil
	}

	tracking := make(map[string]string, len(dests))
	var failures int
	for linkType, dest := range dests {
		code, err := a.ensureSlot(ctx, sig, linkType, dest)
		if err != nil {
			failures++
			a.countOutcome(metrics.OutcomeFallback)
			a.logger.Warn().Err(err).
				Str("signature_id", sig.ID.String()).
				Str("link_type", linkType).
				Msg("tracking link assignment failed, slot falls back to canonical URL")
			continue
		}
		tracking[linkType] = a.RedirectURL(code)
	}

	if failures == len(dests) {
		a.countOutcome(metrics.OutcomeFailed)
		return nil, fmt.Errorf("assign tracking links: all %d slots failed", failures)
	}
	return tracking, nil
}

// ensureSlot returns the short code for one slot, reusing the live link
// when its destination is unchanged.
func (a *Assigner) ensureSlot(ctx context.Context, sig *models.Signature, linkType, dest string) (string, error) {
	existing, err := a.store.GetActiveLink(ctx, sig.ID, linkType)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if existing.Destination == dest && !existing.Expired(time.Now()) {
			a.countOutcome(metrics.OutcomeReused)
			return existing.ShortCode, nil
		}
		if err := a.store.DeactivateLink(ctx, existing.ID); err != nil {
			return "", err
		}
		if a.cache != nil {
			a.cache.Invalidate(ctx, existing.ShortCode)
		}
	}

	link := &models.TrackingLink{
		ID:          uuid.New(),
		SignatureID: sig.ID,
		UserID:      sig.UserID,
		LinkType:    linkType,
		Destination: dest,
		Active:      true,
		CreatedAt:   time.Now(),
	}
	if a.linkTTL > 0 {
		expires := link.CreatedAt.Add(a.linkTTL)
		link.ExpiresAt = &expires
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := NewShortCode()
		if err != nil {
			return "", err
		}
		link.ShortCode = code

		err = a.store.CreateTrackingLink(ctx, link)
		if err == nil {
			a.countOutcome(metrics.OutcomeCreated)
			return code, nil
		}
		if !errors.Is(err, db.ErrDuplicateShortCode) {
			return "", err
		}
	}
	return "", fmt.Errorf("short code collision persisted after %d attempts", maxCodeAttempts)
}
