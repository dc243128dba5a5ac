package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dpshade/contract-desk/internal/clipboard"
	"github.com/dpshade/contract-desk/internal/metrics"
	"github.com/dpshade/contract-desk/internal/service"
)

type nopClipboard struct{}

func (nopClipboard) Available() bool            { return false }
func (nopClipboard) WriteAll(text string) error { return nil }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Notice  string          `json:"notice"`
	Error   *struct {
		Code     string `json:"code"`
		Message  string `json:"message"`
		Category string `json:"category"`
	} `json:"error"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	m := metrics.New()
	svc, err := service.NewService(service.Options{
		Logger:        zaptest.NewLogger(t),
		Clock:         func() time.Time { return time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC) },
		DraftDelay:    -1,
		AnalysisDelay: -1,
		Metrics:       m,
		Clipboard:     clipboard.New(nopClipboard{}),
	})
	require.NoError(t, err)
	srv := NewAPIServer(svc, Options{Metrics: m, Logger: zaptest.NewLogger(t)})
	return &testServer{t: t, handler: srv.Router(), metrics: m}
}

func (ts *testServer) do(method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) json(method, path string, body any) (int, envelope) {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}
	rec := ts.do(method, path, "application/json", reader)
	var env envelope
	require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (ts *testServer) createMatter() string {
	ts.t.Helper()
	code, env := ts.json(http.MethodPost, "/api/v1/matters", map[string]any{
		"fields": map[string]string{
			"clientName":   "Acme Corp",
			"firstParty":   "Acme Corporation",
			"secondParty":  "Globex LLC",
			"governingLaw": "Delaware",
		},
	})
	require.Equal(ts.t, http.StatusCreated, code)
	var snap struct {
		ID string `json:"id"`
	}
	require.NoError(ts.t, json.Unmarshal(env.Data, &snap))
	return snap.ID
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		code, env := ts.json(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, code, path)
		assert.True(t, env.Success)
		assert.Equal(t, "System is healthy", env.Message)
	}
}

func TestDraftingEndpoints(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createMatter()
	base := "/api/v1/matters/" + id

	code, env := ts.json(http.MethodPost, base+"/clauses/liability-cap", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "guidance", env.Error.Category)
	assert.Equal(t, "Generate the base draft before inserting clauses.", env.Error.Message)

	code, env = ts.json(http.MethodPost, base+"/generate", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "success", env.Notice)

	code, _ = ts.json(http.MethodPost, base+"/clauses/liability-cap", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = ts.json(http.MethodPost, base+"/clauses/liability-cap", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "info", env.Notice)

	code, env = ts.json(http.MethodGet, base+"/readiness", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"recommendations"`)

	rec := ts.do(http.MethodGet, base+"/export?format=html", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "Contract downloaded.", rec.Header().Get("X-Notice"))
	assert.Contains(t, rec.Body.String(), "<html")

	rec = ts.do(http.MethodPut, base+"/document", "text/html; charset=utf-8",
		strings.NewReader("<h1>EDITED AGREEMENT</h1><p>Short and sweet.</p>"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "EDITED AGREEMENT")
}

func TestGenerateWithoutParties(t *testing.T) {
	ts := newTestServer(t)
	code, env := ts.json(http.MethodPost, "/api/v1/matters", nil)
	require.Equal(t, http.StatusCreated, code)
	var snap struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))

	code, env = ts.json(http.MethodPost, "/api/v1/matters/"+snap.ID+"/generate", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "MISSING_FIELD", env.Error.Code)
}

func TestReviewEndpoints(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createMatter()
	base := "/api/v1/matters/" + id

	code, env := ts.json(http.MethodPost, base+"/analysis", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "NO_UPLOAD", env.Error.Code)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "vendor-msa.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.7 not really"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := ts.do(http.MethodPost, base+"/upload", mw.FormDataContentType(), &body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	code, env = ts.json(http.MethodPost, base+"/analysis", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "Contract analysis complete.", env.Message)

	rec = ts.do(http.MethodGet, base+"/report", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "contract_risk_analysis.txt")
	assert.NotEmpty(t, rec.Body.String())
}

func TestValidationAndRouting(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.json(http.MethodGet, "/api/v1/matters/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = ts.json(http.MethodGet, "/api/v1/matters/1b4e28ba-2fa1-11d2-883f-0016d3cca427", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rec := ts.do(http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodOptions, "/api/v1/clauses", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLibraryEndpoints(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.json(http.MethodGet, "/api/v1/clauses/search?q=liability", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "liability-cap")

	code, _ = ts.json(http.MethodGet, "/api/v1/playbook", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = ts.json(http.MethodPost, "/api/v1/positions/liability/copy", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, clipboard.MsgShared, env.Message)
}

func TestMetricsAndDocs(t *testing.T) {
	ts := newTestServer(t)
	ts.json(http.MethodGet, "/api/v1/drafts", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.HTTPRequests.WithLabelValues("/api/v1/drafts", "200")))

	rec := ts.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "contract_desk_http_requests_total")

	rec = ts.do(http.MethodGet, "/api/openapi.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var spec map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	paths := spec["paths"].(map[string]any)
	assert.Contains(t, paths, "/matters/{matter_id}/generate")
}
