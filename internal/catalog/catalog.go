// Package catalog owns the selectable template catalog: the seed entries,
// the free tier allowlist, and the sync between the database catalog and
// the layouts the renderer actually registers.
package catalog

import (
	"context"
	"fmt"

	"github.com/ironcrest/sigforge/internal/models"
	"github.com/ironcrest/sigforge/internal/render"
	"github.com/rs/zerolog"
)

// freeTemplates is the free tier allowlist. Everything else is premium.
var freeTemplates = map[string]bool{
	"minimal-line":    true,
	"corporate-block": true,
	"badge":           true,
}

// IsPremium reports whether a template key requires a paid plan.
func IsPremium(key string) bool {
	return !freeTemplates[key]
}

// seed is the canonical catalog content. UpsertTemplate keys on Key, so
// reseeding refreshes names and descriptions without duplicating rows.
var seed = []models.Template{
	{Key: "minimal-line", Name: "Minimal Line", Description: "Clean left accent bar with stacked contact details. The default.", SortOrder: 1, Active: true},
	{Key: "corporate-block", Name: "Corporate Block", Description: "Branded card with an accent border and multi-button call to action.", SortOrder: 2, Active: true},
	{Key: "badge", Name: "Badge", Description: "Rounded card with a soft accent wash.", SortOrder: 3, Active: true},
	{Key: "simple-text", Name: "Simple Text", Description: "Plain labeled lines for maximum client compatibility.", SortOrder: 4, Active: true},
	{Key: "professional-headshot", Name: "Professional Headshot", Description: "Two-column layout with a round photo.", SortOrder: 5, Active: true},
	{Key: "executive", Name: "Executive", Description: "Serif styling with an italic title and quoted slogan.", SortOrder: 6, Active: true},
	{Key: "professional-left-logo", Name: "Professional Left Logo", Description: "Logo or initials beside a vertical rule.", SortOrder: 7, Active: true},
}

// Seed returns the canonical catalog entries with the premium flag applied.
func Seed() []models.Template {
	out := make([]models.Template, len(seed))
	for i, t := range seed {
		t.Premium = IsPremium(t.Key)
		out[i] = t
	}
	return out
}

// Validate checks that the seed and the renderer's layout registry agree:
// every seeded key must render, and every registered layout must be
// selectable from the catalog.
func Validate() error {
	seeded := make(map[string]bool, len(seed))
	for _, t := range seed {
		if !render.IsRegistered(t.Key) {
			return fmt.Errorf("catalog entry %q has no registered layout", t.Key)
		}
		seeded[t.Key] = true
	}
	for _, key := range render.RegisteredTemplates() {
		if !seeded[key] {
			return fmt.Errorf("registered layout %q missing from catalog seed", key)
		}
	}
	return nil
}

// Store is the persistence interface the catalog service needs.
type Store interface {
	ListTemplates(ctx context.Context, activeOnly bool) ([]*models.Template, error)
	GetTemplate(ctx context.Context, key string) (*models.Template, error)
	UpsertTemplate(ctx context.Context, t *models.Template) error
}

// Service serves the template catalog.
type Service struct {
	store  Store
	logger zerolog.Logger
}

// NewService creates a catalog Service.
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// List returns the active catalog. An unseeded database falls back to the
// static seed so the template picker never comes up empty.
func (s *Service) List(ctx context.Context) ([]*models.Template, error) {
	tmpls, err := s.store.ListTemplates(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(tmpls) > 0 {
		return tmpls, nil
	}

	s.logger.Warn().Msg("template catalog is empty, serving static seed")
	fallback := Seed()
	out := make([]*models.Template, len(fallback))
	for i := range fallback {
		out[i] = &fallback[i]
	}
	return out, nil
}

// Get returns one catalog entry, or nil when the key is unknown.
func (s *Service) Get(ctx context.Context, key string) (*models.Template, error) {
	return s.store.GetTemplate(ctx, key)
}

// SeedTemplates upserts the canonical entries into the database and returns
// how many were written.
func (s *Service) SeedTemplates(ctx context.Context) (int, error) {
	if err := Validate(); err != nil {
		return 0, err
	}

	entries := Seed()
	for i := range entries {
		if err := s.store.UpsertTemplate(ctx, &entries[i]); err != nil {
			return i, fmt.Errorf("seed template %q: %w", entries[i].Key, err)
		}
	}
	s.logger.Info().Int("count", len(entries)).Msg("template catalog seeded")
	return len(entries), nil
}
