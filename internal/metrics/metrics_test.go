package metrics

import (
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findFamily(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	families, err := m.registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestCountersRegister(t *testing.T) {
	m := New()

	m.RendersTotal.WithLabelValues("badge").Inc()
	m.RendersTotal.WithLabelValues("badge").Inc()
	m.ViewsTotal.Inc()
	m.ClicksTotal.WithLabelValues("email").Inc()
	m.LinksTotal.WithLabelValues(OutcomeCreated).Inc()
	m.UnknownCodeHits.Inc()

	renders := findFamily(t, m, "sigforge_renders_total")
	require.NotNil(t, renders)
	require.Len(t, renders.Metric, 1)
	assert.Equal(t, float64(2), renders.Metric[0].GetCounter().GetValue())
	require.Len(t, renders.Metric[0].Label, 1)
	assert.Equal(t, "template_key", renders.Metric[0].Label[0].GetName())
	assert.Equal(t, "badge", renders.Metric[0].Label[0].GetValue())

	views := findFamily(t, m, "sigforge_views_total")
	require.NotNil(t, views)
	assert.Equal(t, float64(1), views.Metric[0].GetCounter().GetValue())

	clicks := findFamily(t, m, "sigforge_clicks_total")
	require.NotNil(t, clicks)
	assert.Equal(t, "email", clicks.Metric[0].Label[0].GetValue())
}

func TestHandlerServesExposition(t *testing.T) {
	m := New()
	m.ViewsTotal.Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "sigforge_views_total 1")
}
