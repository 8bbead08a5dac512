// Package metrics exposes Prometheus counters for renders, engagement
// events, and tracking link assignment.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Assignment outcomes for the tracking link counter.
const (
	OutcomeCreated  = "created"
	OutcomeReused   = "reused"
	OutcomeFailed   = "failed"
	OutcomeFallback = "fallback"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RendersTotal     *prometheus.CounterVec
	ViewsTotal       prometheus.Counter
	ClicksTotal      *prometheus.CounterVec
	LinksTotal       *prometheus.CounterVec
	ExpiredLinkHits  prometheus.Counter
	UnknownCodeHits  prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigforge_renders_total",
			Help: "Signatures rendered, by template key.",
		}, []string{"template_key"}),
		ViewsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigforge_views_total",
			Help: "Tracking pixel hits recorded.",
		}),
		ClicksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigforge_clicks_total",
			Help: "Tracking link click-throughs, by link type.",
		}, []string{"link_type"}),
		LinksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigforge_tracking_links_total",
			Help: "Tracking link assignment outcomes.",
		}, []string{"outcome"}),
		ExpiredLinkHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigforge_expired_link_hits_total",
			Help: "Clicks on expired or deactivated tracking links.",
		}),
		UnknownCodeHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigforge_unknown_code_hits_total",
			Help: "Clicks with a short code that does not exist.",
		}),
	}

	registry.MustRegister(
		m.RendersTotal,
		m.ViewsTotal,
		m.ClicksTotal,
		m.LinksTotal,
		m.ExpiredLinkHits,
		m.UnknownCodeHits,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns the scrape endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
