package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/VaazzDan/projeto-bi/internal/config"
	"github.com/VaazzDan/projeto-bi/internal/logging"
)

func newTestServer(t *testing.T, backend string) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Data.DataDir = t.TempDir()
	cfg.Mapping.Backend = backend

	srv, err := NewServer(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func TestServer_IndexAndStatus(t *testing.T) {
	srv := newTestServer(t, config.BackendSQLite)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/api/import") {
		t.Fatalf("index=%d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"initialized":false`) {
		t.Fatalf("status=%d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/mappings", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight=%d", w.Code)
	}
}

func TestServer_UnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Data.DataDir = t.TempDir()
	cfg.Mapping.Backend = "csv"

	if _, err := NewServer(cfg, logging.Discard()); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
