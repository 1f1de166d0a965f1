package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"circuitflow/config"
	"circuitflow/store"
	"circuitflow/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedSQL = `
INSERT INTO documents (id, title, type, description, content, created_at, updated_at) VALUES
	('prd', 'PRD.md', 'cpu', 'Product Requirements Document', '# PRD' || char(10) || 'body', '2024-01-01 10:00:01', '2024-01-01 10:00:01'),
	('api-spec', 'API Spec  v2', 'io', 'API Specification', '# API', '2024-01-01 10:00:02', '2024-01-01 10:00:02');
`

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:            3001,
		CORSOrigin:      "http://localhost:5173",
		Version:         "1.0.0",
		APIBaseURL:      "http://localhost:3001",
		ShutdownTimeout: time.Second,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyBatch(ctx, seedSQL))
	return NewServer(testConfig(), s)
}

func do(t *testing.T, srv *Server, method, target string, body io.Reader) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeError(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, data := do(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body types.HealthResponse
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "1.0.0", body.Version)
	_, err := time.Parse(time.RFC3339Nano, body.Timestamp)
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestListDocumentsOmitsContent(t *testing.T) {
	srv := newTestServer(t)

	resp, data := do(t, srv, http.MethodGet, "/api/documents", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Documents []map[string]any `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	require.Len(t, body.Documents, 2)
	assert.Equal(t, "prd", body.Documents[0]["id"])
	assert.Equal(t, "api-spec", body.Documents[1]["id"])
	for _, d := range body.Documents {
		assert.NotContains(t, d, "content")
		assert.Contains(t, d, "createdAt")
		assert.Contains(t, d, "updatedAt")
	}
}

func TestGetDocumentIncludesContent(t *testing.T) {
	srv := newTestServer(t)

	resp, data := do(t, srv, http.MethodGet, "/api/documents/prd", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc types.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "# PRD\nbody", doc.Content)
	assert.Equal(t, "Product Requirements Document", doc.Description)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 1, 0, time.UTC), doc.CreatedAt.UTC())
}

func TestMissingDocumentIsNotFound(t *testing.T) {
	srv := newTestServer(t)

	for _, target := range []string{"/api/documents/nope", "/api/documents/nope/download", "/api/documents/PRD"} {
		resp, data := do(t, srv, http.MethodGet, target, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, target)
		body := decodeError(t, data)
		assert.Equal(t, "NOT_FOUND", body["code"], target)
	}

	_, data := do(t, srv, http.MethodGet, "/api/documents/nope", nil)
	assert.Equal(t, "Document with id 'nope' not found", decodeError(t, data)["error"])
}

func TestDownloadDocument(t *testing.T) {
	srv := newTestServer(t)

	resp, data := do(t, srv, http.MethodGet, "/api/documents/api-spec/download", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/markdown", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="API_Spec_v2.md"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "# API", string(data))
}

func TestUnknownRouteAnyMethod(t *testing.T) {
	srv := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		resp, data := do(t, srv, method, "/api/unknown/route", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, method)
		assert.Equal(t, map[string]any{"error": "Not found", "code": "NOT_FOUND"}, decodeError(t, data), method)
	}

	resp, _ := do(t, srv, http.MethodDelete, "/api/documents/prd", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenerate(t *testing.T) {
	srv := newTestServer(t)

	resp, data := do(t, srv, http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":"I want to build a recipe sharing platform"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body types.DocumentsResponse[types.Document]
	require.NoError(t, json.Unmarshal(data, &body))
	require.Len(t, body.Documents, 5)
	assert.Equal(t, "prd", body.Documents[0].ID)
	assert.Contains(t, body.Documents[0].Content, "## recipe sharing platform")
	assert.NotContains(t, string(data), "createdAt")
}

func TestGenerateRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)

	resp, data := do(t, srv, http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":`))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, data)["code"])

	resp, data = do(t, srv, http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":"  "}`))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeError(t, data)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Contains(t, body["fields"], "prompt")
}

type brokenStore struct {
	store.DocumentStorer
	panics bool
}

var errDriver = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")

func (b brokenStore) ListDocuments(context.Context) ([]types.DocumentSummary, error) {
	if b.panics {
		panic("unexpected nil row")
	}
	return nil, errDriver
}

func (b brokenStore) GetDocumentByID(context.Context, string) (*types.Document, error) {
	return nil, errDriver
}

func (b brokenStore) GetDocumentForDownload(context.Context, string) (*types.DownloadFile, error) {
	return nil, errDriver
}

func (b brokenStore) Ping(context.Context) error {
	return errDriver
}

func TestStorageFailuresAreRedacted(t *testing.T) {
	srv := NewServer(testConfig(), brokenStore{})

	cases := map[string]string{
		"/api/documents":              "Failed to fetch documents",
		"/api/documents/prd":          "Failed to fetch document",
		"/api/documents/prd/download": "Failed to download document",
	}
	for target, msg := range cases {
		resp, data := do(t, srv, http.MethodGet, target, nil)
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode, target)
		body := decodeError(t, data)
		assert.Equal(t, "DATABASE_ERROR", body["code"], target)
		assert.Equal(t, msg, body["error"], target)
		assert.NotContains(t, string(data), "10.0.0.5")
	}

	resp, data := do(t, srv, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "STORAGE_UNAVAILABLE", decodeError(t, data)["code"])

	resp, _ = do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPanicBecomesInternalServerError(t *testing.T) {
	srv := NewServer(testConfig(), brokenStore{panics: true})

	resp, data := do(t, srv, http.MethodGet, "/api/documents", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "Internal server error", "code": "INTERNAL_SERVER_ERROR"}, decodeError(t, data))
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestMetricsExposed(t *testing.T) {
	srv := newTestServer(t)

	do(t, srv, http.MethodGet, "/api/documents/prd", nil)
	resp, data := do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `circuitflow_http_requests_total{method="GET",route="/api/documents/:id",status="200"}`)
}

func TestMetricsSurviveMixedTraffic(t *testing.T) {
	srv := newTestServer(t)

	requests := []struct{ method, target string }{
		{http.MethodGet, "/api/documents"},
		{http.MethodGet, "/api/documents/prd"},
		{http.MethodPost, "/api/generate"},
		{http.MethodDelete, "/api/documents/prd"},
		{http.MethodDelete, "/nowhere"},
		{http.MethodGet, "/nowhere"},
		{http.MethodPost, "/nowhere"},
		{http.MethodDelete, "/nowhere"},
	}
	for i := 0; i < 3; i++ {
		for _, r := range requests {
			var body io.Reader
			if r.method == http.MethodPost {
				body = strings.NewReader(`{"prompt":"Create realtime chat service"}`)
			}
			do(t, srv, r.method, r.target, body)
		}
	}

	resp, data := do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	out := string(data)
	assert.Contains(t, out, `circuitflow_http_requests_total{method="DELETE",route="unmatched",status="404"} 6`)
	assert.Contains(t, out, `circuitflow_http_requests_total{method="POST",route="/api/generate",status="200"} 3`)
	assert.Contains(t, out, `circuitflow_http_requests_total{method="GET",route="/api/documents",status="200"} 3`)
	assert.NotContains(t, out, `method="DEL"`)
}

func TestMetricsArePerServer(t *testing.T) {
	first := newTestServer(t)
	second := newTestServer(t)

	do(t, first, http.MethodGet, "/api/documents", nil)

	_, data := do(t, second, http.MethodGet, "/metrics", nil)
	assert.NotContains(t, string(data), `route="/api/documents",status="200"`)

	_, data = do(t, first, http.MethodGet, "/metrics", nil)
	assert.Contains(t, string(data), `circuitflow_http_requests_total{method="GET",route="/api/documents",status="200"} 1`)
}
