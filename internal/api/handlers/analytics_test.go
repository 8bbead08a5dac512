package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/rs/zerolog"
)

type mockAnalyticsProvider struct {
	signature *models.SignatureAnalytics
	user      *models.UserAnalytics
	lastDays  int
	err       error
}

func (m *mockAnalyticsProvider) SignatureSummary(_ context.Context, _ uuid.UUID, days int) (*models.SignatureAnalytics, error) {
	m.lastDays = days
	return m.signature, m.err
}

func (m *mockAnalyticsProvider) UserSummary(_ context.Context, _ uuid.UUID, days int) (*models.UserAnalytics, error) {
	m.lastDays = days
	return m.user, m.err
}

func setupAnalyticsTestRouter(provider AnalyticsProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewAnalyticsHandler(provider, zerolog.Nop())
	api := r.Group("/api/v1")
	handler.RegisterRoutes(api)
	return r
}

func TestSignatureAnalytics(t *testing.T) {
	provider := &mockAnalyticsProvider{
		signature: &models.SignatureAnalytics{TotalViews: 200, TotalClicks: 30, UniqueViewers: 150},
	}
	r := setupAnalyticsTestRouter(provider)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/analytics/signatures/"+uuid.New().String()+"?days=7", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if provider.lastDays != 7 {
		t.Errorf("expected days=7 passed through, got %d", provider.lastDays)
	}

	var resp struct {
		Analytics        models.SignatureAnalytics `json:"analytics"`
		ClickThroughRate float64                   `json:"click_through_rate"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Analytics.TotalViews != 200 {
		t.Errorf("expected 200 views, got %d", resp.Analytics.TotalViews)
	}
	if resp.ClickThroughRate != 0.15 {
		t.Errorf("expected CTR 0.15, got %v", resp.ClickThroughRate)
	}
}

func TestSignatureAnalyticsInvalidID(t *testing.T) {
	r := setupAnalyticsTestRouter(&mockAnalyticsProvider{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/analytics/signatures/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestUserAnalytics(t *testing.T) {
	provider := &mockAnalyticsProvider{
		user: &models.UserAnalytics{TotalViews: 10, TotalClicks: 0},
	}
	r := setupAnalyticsTestRouter(provider)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/analytics", nil)
	req.Header.Set("X-User-ID", uuid.New().String())
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ClickThroughRate float64 `json:"click_through_rate"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ClickThroughRate != 0 {
		t.Errorf("expected zero CTR with zero clicks, got %v", resp.ClickThroughRate)
	}
}

func TestUserAnalyticsRequiresUser(t *testing.T) {
	r := setupAnalyticsTestRouter(&mockAnalyticsProvider{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/analytics", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without user id, got %d", w.Code)
	}
}

func TestAnalyticsProviderError(t *testing.T) {
	r := setupAnalyticsTestRouter(&mockAnalyticsProvider{err: errors.New("query timeout")})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/analytics/signatures/"+uuid.New().String(), nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
}

func TestQueryDaysIgnoresGarbage(t *testing.T) {
	provider := &mockAnalyticsProvider{
		signature: &models.SignatureAnalytics{},
	}
	r := setupAnalyticsTestRouter(provider)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/analytics/signatures/"+uuid.New().String()+"?days=soon", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if provider.lastDays != 0 {
		t.Errorf("expected provider default window for invalid days, got %d", provider.lastDays)
	}
}
