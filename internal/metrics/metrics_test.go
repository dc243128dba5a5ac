package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	m := New()

	m.DraftsGenerated.Inc()
	m.ClausesInserted.WithLabelValues("applied").Inc()
	m.ClausesInserted.WithLabelValues("duplicate").Add(2)
	m.Analyses.WithLabelValues(AnalysisStale).Inc()
	m.ObserveHTTP("/api/v1/matters/{id}", 201)
	m.ObserveHTTP("", 404)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DraftsGenerated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClausesInserted.WithLabelValues("duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("unmatched", "404")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveHTTP("/health", 200) })
}

func TestHandlerExposesNamespace(t *testing.T) {
	m := New()
	m.Readiness.Observe(75)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "contract_desk_readiness_percentage_bucket")
	assert.Contains(t, string(body), "contract_desk_drafts_generated_total 0")
}
