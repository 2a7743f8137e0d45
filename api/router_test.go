package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/use-agent/dealscope/alerts"
	"github.com/use-agent/dealscope/config"
	"github.com/use-agent/dealscope/models"
)

type stubAggregator struct{}

func (stubAggregator) Aggregate(ctx context.Context, keyword string, maxProducts int) (*models.AggregateResult, error) {
	return &models.AggregateResult{Items: []models.RawItem{}, SiteErrors: map[string]string{}}, nil
}

func (stubAggregator) Sites() []string { return []string{"amazon"} }

func newTestRouter(t *testing.T, origins ...string) http.Handler {
	t.Helper()
	cfg := config.Load()
	cfg.Server.Mode = "test"
	if len(origins) > 0 {
		cfg.CORS.AllowedOrigins = origins
	}
	deps := Deps{
		Aggregator: stubAggregator{},
		Alerts:     alerts.NewFileStore(filepath.Join(t.TempDir(), "alerts.json")),
	}
	return NewRouter(deps, cfg, time.Now())
}

func TestRouter_Routes(t *testing.T) {
	r := newTestRouter(t)
	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodPost, "/api/scrape", http.StatusOK},
		{http.MethodGet, "/api/alerts", http.StatusOK},
		{http.MethodPost, "/api/alerts/delete", http.StatusBadRequest},
		{http.MethodPost, "/api/subscribe", http.StatusBadRequest},
		{http.MethodGet, "/api/v1/scrape", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		if w.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, w.Code, tt.want)
		}
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/scrape", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent && w.Code != http.StatusOK {
		t.Errorf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestRouter_CORSRestricted(t *testing.T) {
	r := newTestRouter(t, "https://deals.example")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://deals.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://deals.example" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("disallowed origin status = %d, want 403", w.Code)
	}
}
