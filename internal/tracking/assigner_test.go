package tracking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/db"
	"github.com/ironcrest/sigforge/internal/metrics"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/ironcrest/sigforge/internal/render"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockInvalidator struct {
	evicted []string
}

func (m *mockInvalidator) Invalidate(_ context.Context, code string) {
	m.evicted = append(m.evicted, code)
}

type mockStore struct {
	links       map[string]*models.TrackingLink // keyed by linkType
	created     []*models.TrackingLink
	deactivated []uuid.UUID
	collisions  int
	getErr      error
	createErr   error
}

func newMockStore() *mockStore {
	return &mockStore{links: make(map[string]*models.TrackingLink)}
}

func (m *mockStore) GetActiveLink(_ context.Context, _ uuid.UUID, linkType string) (*models.TrackingLink, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.links[linkType], nil
}

func (m *mockStore) CreateTrackingLink(_ context.Context, link *models.TrackingLink) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.collisions > 0 {
		m.collisions--
		return db.ErrDuplicateShortCode
	}
	cp := *link
	m.links[link.LinkType] = &cp
	m.created = append(m.created, &cp)
	return nil
}

func (m *mockStore) DeactivateLink(_ context.Context, id uuid.UUID) error {
	m.deactivated = append(m.deactivated, id)
	return nil
}

func testSignature() *models.Signature {
	return &models.Signature{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Config: render.SignatureConfig{
			Contact: render.Contact{
				Email: "jordan@brightpath.example",
				Phone: "+1 (555) 010-7788",
			},
			Links: render.Links{LinkedIn: "https://linkedin.com/in/jordan"},
			Addons: render.Addons{CTA: render.CTAField{Entries: []render.CTAButton{
				{Label: "Book", URL: "https://cal.example/jordan"},
			}}},
		},
	}
}

func TestNewShortCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewShortCode()
		require.NoError(t, err)
		assert.Len(t, code, models.ShortCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(shortCodeAlphabet, r), "unexpected rune %q", r)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 95, "codes should not repeat")
}

func TestDestinationMapSchemes(t *testing.T) {
	sig := testSignature()
	dests := DestinationMap(&sig.Config)

	assert.Equal(t, "mailto:jordan@brightpath.example", dests[models.LinkTypeEmail])
	assert.Equal(t, "tel:+15550107788", dests[models.LinkTypePhone])
	assert.Equal(t, "https://linkedin.com/in/jordan", dests[models.LinkTypeLinkedIn])
	assert.Equal(t, "https://cal.example/jordan", dests[models.LinkTypeCustom])
	assert.NotContains(t, dests, models.LinkTypeWebsite)
	assert.NotContains(t, dests, models.LinkTypeGitHub)
}

func TestDestinationMapCustomFollowsFirstRenderedEntry(t *testing.T) {
	sig := testSignature()
	sig.Config.Addons.CTA = render.CTAField{Entries: []render.CTAButton{
		{Label: "   ", URL: "https://skipped.example"},
		{Label: "Book a demo", URL: "https://real.example/demo"},
	}}

	// The renderer drops the half-filled first entry, so the custom slot
	// must carry the second entry's URL.
	dests := DestinationMap(&sig.Config)
	assert.Equal(t, "https://real.example/demo", dests[models.LinkTypeCustom])
}

func TestDestinationMapCustomAbsentWhenNoEntryRenders(t *testing.T) {
	sig := testSignature()
	sig.Config.Addons.CTA = render.CTAField{Entries: []render.CTAButton{
		{Label: "Label only"},
		{URL: "https://url-only.example"},
	}}

	dests := DestinationMap(&sig.Config)
	assert.NotContains(t, dests, models.LinkTypeCustom)
}

func TestEnsureLinksCreatesAllSlots(t *testing.T) {
	store := newMockStore()
	a := New(store, "https://sig.example/", 0, nil, zerolog.Nop())

	tracking, err := a.EnsureLinks(context.Background(), testSignature())
	require.NoError(t, err)
	require.Len(t, tracking, 4)
	for _, redirect := range tracking {
		assert.True(t, strings.HasPrefix(redirect, "https://sig.example/api/click?c="), redirect)
		code := strings.TrimPrefix(redirect, "https://sig.example/api/click?c=")
		assert.Len(t, code, models.ShortCodeLength)
	}
	assert.Len(t, store.created, 4)
}

func TestEnsureLinksReusesMatchingLink(t *testing.T) {
	store := newMockStore()
	sig := testSignature()
	store.links[models.LinkTypeEmail] = &models.TrackingLink{
		ID:          uuid.New(),
		SignatureID: sig.ID,
		ShortCode:   "aB3dE9fG",
		LinkType:    models.LinkTypeEmail,
		Destination: "mailto:jordan@brightpath.example",
		Active:      true,
	}

	a := New(store, "https://sig.example", 0, nil, zerolog.Nop())
	tracking, err := a.EnsureLinks(context.Background(), sig)
	require.NoError(t, err)

	assert.Equal(t, "https://sig.example/api/click?c=aB3dE9fG", tracking[models.LinkTypeEmail])
	assert.Empty(t, store.deactivated)
	// Only the three slots without a live link were created.
	assert.Len(t, store.created, 3)
}

func TestEnsureLinksReplacesStaleDestination(t *testing.T) {
	store := newMockStore()
	sig := testSignature()
	stale := &models.TrackingLink{
		ID:          uuid.New(),
		SignatureID: sig.ID,
		ShortCode:   "oLdCoDe1",
		LinkType:    models.LinkTypeEmail,
		Destination: "mailto:old@brightpath.example",
		Active:      true,
	}
	store.links[models.LinkTypeEmail] = stale

	a := New(store, "https://sig.example", 0, nil, zerolog.Nop())
	tracking, err := a.EnsureLinks(context.Background(), sig)
	require.NoError(t, err)

	require.Contains(t, store.deactivated, stale.ID)
	assert.NotEqual(t, "https://sig.example/api/click?c=oLdCoDe1", tracking[models.LinkTypeEmail])
}

func TestEnsureLinksRetriesOnCollision(t *testing.T) {
	store := newMockStore()
	store.collisions = 2
	sig := testSignature()
	sig.Config = render.SignatureConfig{Contact: render.Contact{Email: "a@b.example"}}

	a := New(store, "https://sig.example", 0, nil, zerolog.Nop())
	tracking, err := a.EnsureLinks(context.Background(), sig)
	require.NoError(t, err)
	assert.Len(t, tracking, 1)
}

func TestEnsureLinksAllSlotsFailing(t *testing.T) {
	store := newMockStore()
	store.createErr = errors.New("database down")

	a := New(store, "https://sig.example", 0, nil, zerolog.Nop())
	_, err := a.EnsureLinks(context.Background(), testSignature())
	assert.Error(t, err)
}

func TestEnsureLinksCountsOutcomes(t *testing.T) {
	store := newMockStore()
	sig := testSignature()
	store.links[models.LinkTypeEmail] = &models.TrackingLink{
		ID:          uuid.New(),
		SignatureID: sig.ID,
		ShortCode:   "aB3dE9fG",
		LinkType:    models.LinkTypeEmail,
		Destination: "mailto:jordan@brightpath.example",
		Active:      true,
	}

	m := metrics.New()
	a := New(store, "https://sig.example", 0, m, zerolog.Nop())
	_, err := a.EnsureLinks(context.Background(), sig)
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.LinksTotal.WithLabelValues(metrics.OutcomeReused)))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.LinksTotal.WithLabelValues(metrics.OutcomeCreated)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.LinksTotal.WithLabelValues(metrics.OutcomeFallback)))
}

func TestEnsureLinksCountsFallbackAndFailure(t *testing.T) {
	store := newMockStore()
	store.createErr = errors.New("database down")

	m := metrics.New()
	a := New(store, "https://sig.example", 0, m, zerolog.Nop())
	_, err := a.EnsureLinks(context.Background(), testSignature())
	assert.Error(t, err)

	assert.Equal(t, float64(4), testutil.ToFloat64(m.LinksTotal.WithLabelValues(metrics.OutcomeFallback)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LinksTotal.WithLabelValues(metrics.OutcomeFailed)))
}

func TestEnsureLinksEvictsRetiredCode(t *testing.T) {
	store := newMockStore()
	sig := testSignature()
	stale := &models.TrackingLink{
		ID:          uuid.New(),
		SignatureID: sig.ID,
		ShortCode:   "oLdCoDe1",
		LinkType:    models.LinkTypeEmail,
		Destination: "mailto:old@brightpath.example",
		Active:      true,
	}
	store.links[models.LinkTypeEmail] = stale

	inv := &mockInvalidator{}
	a := New(store, "https://sig.example", 0, nil, zerolog.Nop()).WithCache(inv)
	_, err := a.EnsureLinks(context.Background(), sig)
	require.NoError(t, err)

	require.Contains(t, store.deactivated, stale.ID)
	assert.Equal(t, []string{"oLdCoDe1"}, inv.evicted)
}

func TestEnsureLinksNoTrackableSlots(t *testing.T) {
	store := newMockStore()
	a := New(store, "https://sig.example", 0, nil, zerolog.Nop())

	sig := &models.Signature{ID: uuid.New(), UserID: uuid.New()}
	tracking, err := a.EnsureLinks(context.Background(), sig)
	require.NoError(t, err)
	assert.Empty(t, tracking)
}

func TestEnsureLinksAppliesTTL(t *testing.T) {
	store := newMockStore()
	a := New(store, "https://sig.example", 30*24*time.Hour, nil, zerolog.Nop())

	sig := testSignature()
	_, err := a.EnsureLinks(context.Background(), sig)
	require.NoError(t, err)
	for _, link := range store.created {
		require.NotNil(t, link.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *link.ExpiresAt, time.Minute)
	}
}
