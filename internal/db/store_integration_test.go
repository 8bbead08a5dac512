//go:build integration

package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/ironcrest/sigforge/internal/render"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *DB

func TestMain(m *testing.M) {
	if !dockerAvailable() {
		fmt.Println("Docker is not available, skipping integration tests")
		os.Exit(0)
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("sigforge_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		pgContainer.Terminate(ctx)
		log.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.New(zerolog.NewConsoleWriter())
	cfg := DefaultConfig(connStr)
	cfg.MaxConns = 5
	cfg.MinConns = 1

	testDB, err = New(ctx, cfg, logger)
	if err != nil {
		pgContainer.Terminate(ctx)
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := testDB.Migrate(ctx); err != nil {
		testDB.Close()
		pgContainer.Terminate(ctx)
		log.Fatalf("failed to run migrations: %v", err)
	}

	code := m.Run()

	testDB.Close()
	pgContainer.Terminate(ctx)

	os.Exit(code)
}

// dockerAvailable returns true if a Docker daemon is reachable.
func dockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

// setupTestDB returns the shared test database after cleaning all tables.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	_, err := testDB.Pool.Exec(ctx, `
		DO $$ DECLARE r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename != 'schema_migrations') LOOP
				EXECUTE 'TRUNCATE TABLE ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`)
	require.NoError(t, err)
	return testDB
}

func createTestSignature(t *testing.T, db *DB, userID uuid.UUID, name string) *models.Signature {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	sig := &models.Signature{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		TemplateKey: render.DefaultTemplateKey,
		Config: render.SignatureConfig{
			Identity: render.Identity{Name: "Jordan Alvarez", Title: "Head of Partnerships"},
			Contact:  render.Contact{Email: "jordan@brightpath.example"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.CreateSignature(context.Background(), sig))
	return sig
}

func createTestLink(t *testing.T, db *DB, sig *models.Signature, linkType, code string) *models.TrackingLink {
	t.Helper()
	link := &models.TrackingLink{
		ID:          uuid.New(),
		SignatureID: sig.ID,
		UserID:      sig.UserID,
		ShortCode:   code,
		LinkType:    linkType,
		Destination: "https://brightpath.example",
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.CreateTrackingLink(context.Background(), link))
	return link
}

func TestSignatureCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	userID := uuid.New()

	sig := createTestSignature(t, db, userID, "Work")

	got, err := db.GetSignature(ctx, sig.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Work", got.Name)
	assert.Equal(t, "Jordan Alvarez", got.Config.Identity.Name)

	got.Name = "Work (updated)"
	got.TemplateKey = "badge"
	got.UpdatedAt = time.Now().UTC()
	require.NoError(t, db.UpdateSignature(ctx, got))

	got, err = db.GetSignature(ctx, sig.ID)
	require.NoError(t, err)
	assert.Equal(t, "Work (updated)", got.Name)
	assert.Equal(t, "badge", got.TemplateKey)

	list, err := db.ListSignaturesByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, db.DeleteSignature(ctx, sig.ID))
	got, err = db.GetSignature(ctx, sig.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTrackingLinkShortCodeCollision(t *testing.T) {
	db := setupTestDB(t)
	sig := createTestSignature(t, db, uuid.New(), "Work")

	createTestLink(t, db, sig, models.LinkTypeWebsite, "aB3dE9fG")

	dup := &models.TrackingLink{
		ID:          uuid.New(),
		SignatureID: sig.ID,
		UserID:      sig.UserID,
		ShortCode:   "aB3dE9fG",
		LinkType:    models.LinkTypeEmail,
		Destination: "mailto:jordan@brightpath.example",
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	err := db.CreateTrackingLink(context.Background(), dup)
	assert.ErrorIs(t, err, ErrDuplicateShortCode)
}

func TestTrackingLinkLookups(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	sig := createTestSignature(t, db, uuid.New(), "Work")

	link := createTestLink(t, db, sig, models.LinkTypeEmail, "Qw2rT7yU")

	got, err := db.GetTrackingLinkByCode(ctx, "Qw2rT7yU")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, link.ID, got.ID)

	got, err = db.GetTrackingLinkByCode(ctx, "missing1")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = db.GetActiveLink(ctx, sig.ID, models.LinkTypeEmail)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Qw2rT7yU", got.ShortCode)

	require.NoError(t, db.DeactivateLink(ctx, link.ID))
	got, err = db.GetActiveLink(ctx, sig.ID, models.LinkTypeEmail)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeactivateExpiredLinks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	sig := createTestSignature(t, db, uuid.New(), "Work")

	past := time.Now().UTC().Add(-time.Hour)
	expired := &models.TrackingLink{
		ID:          uuid.New(),
		SignatureID: sig.ID,
		UserID:      sig.UserID,
		ShortCode:   "Ex1pIr2d",
		LinkType:    models.LinkTypeWebsite,
		Destination: "https://brightpath.example",
		Active:      true,
		ExpiresAt:   &past,
		CreatedAt:   past.Add(-time.Hour),
	}
	require.NoError(t, db.CreateTrackingLink(ctx, expired))
	createTestLink(t, db, sig, models.LinkTypeEmail, "St1lLiv3")

	n, err := db.DeactivateExpiredLinks(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	links, err := db.ListActiveLinks(ctx, sig.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "St1lLiv3", links[0].ShortCode)
}

func TestSignatureAnalyticsRollup(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	sig := createTestSignature(t, db, uuid.New(), "Work")
	link := createTestLink(t, db, sig, models.LinkTypeWebsite, "Zx8cV1bN")

	now := time.Now().UTC()
	for i, hash := range []string{"hash-a", "hash-a", "hash-b"} {
		view := &models.SignatureView{
			ID:          uuid.New(),
			SignatureID: sig.ID,
			IPHash:      hash,
			DeviceType:  models.DeviceMobile,
			EmailClient: "gmail",
			ViewedAt:    now.Add(-time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.InsertView(ctx, view))
	}
	click := &models.LinkClick{
		ID:             uuid.New(),
		TrackingLinkID: link.ID,
		SignatureID:    sig.ID,
		IPHash:         "hash-a",
		DeviceType:     models.DeviceDesktop,
		ClickedAt:      now,
	}
	require.NoError(t, db.InsertClick(ctx, click))

	a, err := db.GetSignatureAnalytics(ctx, sig.ID, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), a.TotalViews)
	assert.Equal(t, int64(1), a.TotalClicks)
	assert.Equal(t, int64(2), a.UniqueViewers)
	require.Len(t, a.TopLinks, 1)
	assert.Equal(t, models.LinkTypeWebsite, a.TopLinks[0].LinkType)
	require.Len(t, a.Devices, 1)
	assert.Equal(t, models.DeviceMobile, a.Devices[0].DeviceType)
	require.Len(t, a.EmailClients, 1)
	assert.Equal(t, "gmail", a.EmailClients[0].EmailClient)
}

func TestUserAnalyticsSpansSignatures(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	userID := uuid.New()
	sigA := createTestSignature(t, db, userID, "Work")
	sigB := createTestSignature(t, db, userID, "Personal")

	now := time.Now().UTC()
	for _, sig := range []*models.Signature{sigA, sigB} {
		view := &models.SignatureView{
			ID:          uuid.New(),
			SignatureID: sig.ID,
			IPHash:      "hash-" + sig.Name,
			DeviceType:  models.DeviceDesktop,
			ViewedAt:    now,
		}
		require.NoError(t, db.InsertView(ctx, view))
	}

	a, err := db.GetUserAnalytics(ctx, userID, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), a.TotalViews)
	assert.Equal(t, int64(2), a.UniqueViewers)
	require.Len(t, a.Signatures, 2)
}

func TestPruneAnalytics(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	sig := createTestSignature(t, db, uuid.New(), "Work")

	old := &models.SignatureView{
		ID:          uuid.New(),
		SignatureID: sig.ID,
		DeviceType:  models.DeviceUnknown,
		ViewedAt:    time.Now().UTC().Add(-100 * 24 * time.Hour),
	}
	recent := &models.SignatureView{
		ID:          uuid.New(),
		SignatureID: sig.ID,
		DeviceType:  models.DeviceUnknown,
		ViewedAt:    time.Now().UTC(),
	}
	require.NoError(t, db.InsertView(ctx, old))
	require.NoError(t, db.InsertView(ctx, recent))

	n, err := db.PruneAnalytics(ctx, time.Now().UTC().Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTemplateUpsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tmpl := &models.Template{
		Key:         "minimal-line",
		Name:        "Minimal Line",
		Description: "Clean left-accent layout",
		Premium:     false,
		SortOrder:   1,
		Active:      true,
	}
	require.NoError(t, db.UpsertTemplate(ctx, tmpl))

	tmpl.Description = "Clean left-accent layout, the default"
	require.NoError(t, db.UpsertTemplate(ctx, tmpl))

	got, err := db.GetTemplate(ctx, "minimal-line")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Clean left-accent layout, the default", got.Description)

	list, err := db.ListTemplates(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestActivityEvents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	e := models.NewActivityEvent(models.ActivityEventSignatureCreated, "Signature created", "Work signature")
	e.SetMetadata(map[string]any{"template_key": "badge"})
	require.NoError(t, db.InsertActivityEvent(ctx, e))

	cat := models.ActivityCategorySignature
	events, err := db.ListActivityEvents(ctx, models.ActivityEventFilter{Category: &cat})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "badge", events[0].Metadata["template_key"])

	n, err := db.PruneActivityEvents(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
