// Package metrics exposes Prometheus collectors for drafting and review activity.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "contract_desk"

// Analysis outcomes
const (
	AnalysisApplied   = "applied"
	AnalysisStale     = "stale"
	AnalysisCancelled = "cancelled"
)

// Metrics holds the collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	DraftsGenerated prometheus.Counter
	ClausesInserted *prometheus.CounterVec
	Readiness       prometheus.Histogram
	Analyses        *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	LibraryReloads  prometheus.Counter
	ActiveMatters   prometheus.Gauge
}

// New registers every collector, plus the Go and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DraftsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drafts_generated_total",
			Help:      "Drafts generated from templates or loaded from prebuilt drafts.",
		}),
		ClausesInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clauses_inserted_total",
			Help:      "Clause insert attempts by outcome.",
		}, []string{"outcome"}),
		Readiness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "readiness_percentage",
			Help:      "Guardrail readiness percentage observed per evaluation.",
			Buckets:   []float64{0, 25, 50, 75, 100},
		}),
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Risk analyses by result.",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		LibraryReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "library_reloads_total",
			Help:      "Successful library reloads from the override directory.",
		}),
		ActiveMatters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_matters",
			Help:      "Matters currently held in memory.",
		}),
	}

	m.registry.MustRegister(
		m.DraftsGenerated,
		m.ClausesInserted,
		m.Readiness,
		m.Analyses,
		m.HTTPRequests,
		m.LibraryReloads,
		m.ActiveMatters,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the private registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP counts one request
func (m *Metrics) ObserveHTTP(route string, status int) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
