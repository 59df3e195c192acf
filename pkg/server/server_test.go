package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"portico-gw/portico/pkg/admin"
	"portico-gw/portico/pkg/breaker"
	"portico-gw/portico/pkg/config"
	"portico-gw/portico/pkg/route"
	"portico-gw/portico/pkg/stream"
	"portico-gw/portico/pkg/telemetry/metrics"
)

// emptyStore is a route.Store with no routes, enough for mux wiring tests.
type emptyStore struct{}

func (emptyStore) Insert(ctx context.Context, r *route.Route) (*route.Route, error) {
	return nil, route.ErrDuplicatePath
}
func (emptyStore) FindAll(ctx context.Context) ([]*route.Route, error) {
	return []*route.Route{}, nil
}

func (emptyStore) FindByID(ctx context.Context, id int64) (*route.Route, error) {
	return nil, route.ErrNotFound
}
func (emptyStore) FindByPath(ctx context.Context, path string) (*route.Route, error) {
	return nil, route.ErrNotFound
}
func (emptyStore) Update(ctx context.Context, id int64, r *route.Route) (*route.Route, error) {
	return nil, route.ErrNotFound
}

func (emptyStore) Delete(ctx context.Context, id int64) (bool, error) { return false, nil }

func (emptyStore) Close() error { return nil }

type nopRefresher struct{}

func (nopRefresher) Refresh(ctx context.Context) error { return nil }

func newTestServer() *Server {
	cfg := config.DefaultConfig()
	engine := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "engine:"+r.URL.Path)
	})
	return NewServer(
		cfg,
		engine,
		admin.NewHandler(emptyStore{}, nopRefresher{}),
		stream.NewHandler(stream.NewRegistry()),
		metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
		breaker.NewRegistry(breaker.Config{}),
	)
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHandlerRoutesToEngineByDefault(t *testing.T) {
	handler := newTestServer().Handler()

	w := get(t, handler, "/api/users/42")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != "engine:/api/users/42" {
		t.Errorf("body = %q, catch-all should reach the engine", w.Body.String())
	}
}

func TestHandlerOwnsManagementEndpoints(t *testing.T) {
	handler := newTestServer().Handler()

	// /routes belongs to the admin API, never the engine.
	w := get(t, handler, "/routes")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var routes []route.Route
	if err := json.NewDecoder(w.Body).Decode(&routes); err != nil {
		t.Fatalf("admin response should be a JSON list: %v", err)
	}
	if len(routes) != 0 {
		t.Errorf("routes = %v, want empty", routes)
	}
}

func TestHandlerHealthz(t *testing.T) {
	handler := newTestServer().Handler()

	w := get(t, handler, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Status       string   `json:"status"`
		OpenBreakers []string `json:"openBreakers"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
	if body.OpenBreakers == nil || len(body.OpenBreakers) != 0 {
		t.Errorf("openBreakers = %v, want empty list", body.OpenBreakers)
	}
}

func TestHandlerMetricsEndpoint(t *testing.T) {
	handler := newTestServer().Handler()

	w := get(t, handler, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHandlerSetsRequestID(t *testing.T) {
	handler := newTestServer().Handler()

	w := get(t, handler, "/healthz")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("every response should carry a request ID")
	}
}

func TestHandlerAdminPreflight(t *testing.T) {
	handler := newTestServer().Handler()

	req := httptest.NewRequest(http.MethodOptions, "/routes", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("preflight should list allowed methods")
	}
}
