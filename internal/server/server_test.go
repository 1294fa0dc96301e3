package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fibradoc/fibradoc/internal/audit"
	"github.com/fibradoc/fibradoc/internal/config"
	"github.com/fibradoc/fibradoc/internal/model"
	"github.com/fibradoc/fibradoc/internal/telemetry"
	"github.com/fibradoc/fibradoc/pkg/types"
)

func TestServer_PublicEndpoints(t *testing.T) {
	srv := New(&mockStore{}, config.Config{DevMode: true}, "v1", "abc", "now",
		WithOpenAPISpec([]byte("openapi: 3.1.0\n")))
	router := srv.Router()

	for _, path := range []string{"/health", "/readiness", "/version", "/api/openapi.yaml"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		require.Equal(t, http.StatusOK, resp.Code, path)
		assert.Equal(t, types.APIVersion, resp.Header().Get("X-API-Version"))
	}
}

func TestServer_ReadinessFailure(t *testing.T) {
	srv := New(&mockStore{pingFn: func(context.Context) error {
		return errors.New("db down")
	}}, config.Config{DevMode: true}, "v1", "abc", "now")

	req := httptest.NewRequest(http.MethodGet, "/readiness", nil)
	resp := httptest.NewRecorder()
	srv.Router().ServeHTTP(resp, req)
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	metrics, err := telemetry.NewMetrics(serviceName)
	require.NoError(t, err)

	srv := New(&mockStore{}, config.Config{MetricsEnabled: true}, "v1", "abc", "now", WithMetrics(metrics))
	router := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/api/cidades", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `route="/api/cidades`)
}

func TestServer_MetricsDisabled(t *testing.T) {
	metrics, err := telemetry.NewMetrics(serviceName)
	require.NoError(t, err)

	srv := New(&mockStore{}, config.Config{MetricsEnabled: false}, "v1", "abc", "now", WithMetrics(metrics))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	srv.Router().ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestServer_TracingEnabledPassesRequests(t *testing.T) {
	srv := New(&mockStore{}, config.Config{TracesEnabled: true}, "v1", "abc", "now")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	srv.Router().ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestServer_AuditsWrites(t *testing.T) {
	var buf bytes.Buffer
	st := &mockStore{}
	st.clients.createFn = withID("cli-1", func(m *model.Client, id string) { m.ID = id })
	srv := New(st, config.Config{}, "v1", "abc", "now", WithAuditLogger(audit.NewLogger(zerolog.New(&buf))))

	req := httptest.NewRequest(http.MethodPost, "/api/clientes",
		bytes.NewBufferString(`{"nome":"Maria","wifiSsid":"casa","wifiSenha":"hunter22"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-42")
	resp := httptest.NewRecorder()
	srv.Router().ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "clientes", entry["collection"])
	assert.Equal(t, "created", entry["action"])
	assert.Equal(t, "cli-1", entry["record_id"])
	assert.Equal(t, "success", entry["result"])
	assert.NotContains(t, buf.String(), "hunter22")
}

func TestServer_AuditsRejectedWrites(t *testing.T) {
	var buf bytes.Buffer
	srv := New(&mockStore{}, config.Config{}, "v1", "abc", "now", WithAuditLogger(audit.NewLogger(zerolog.New(&buf))))

	req := httptest.NewRequest(http.MethodDelete, "/api/tubos/t1", nil)
	resp := httptest.NewRecorder()
	srv.Router().ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/cidades", bytes.NewBufferString(`{"nome":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	srv.Router().ServeHTTP(resp, req)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var rejected map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &rejected))
	assert.Equal(t, "error", rejected["result"])
	assert.EqualValues(t, http.StatusUnprocessableEntity, rejected["response_code"])
}

func TestNew_SanitizesPageSizes(t *testing.T) {
	srv := New(&mockStore{}, config.Config{DefaultPageSize: 0, MaxPageSize: 0}, "v1", "abc", "now")
	assert.Equal(t, 10, srv.cfg.DefaultPageSize)
	assert.Equal(t, 100, srv.cfg.MaxPageSize)
}
