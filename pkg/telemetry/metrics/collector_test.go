package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"portico-gw/portico/pkg/config"
)

func newTestCollector() *Collector {
	return NewCollector(&config.MetricsConfig{
		Namespace: "portico",
		Subsystem: "gateway",
		Path:      "/metrics",
	}, prometheus.NewRegistry())
}

func TestCollectorRecordRequest(t *testing.T) {
	c := newTestCollector()

	c.RecordRequest("GET", 200, OutcomeProxied, 15*time.Millisecond)
	c.RecordRequest("GET", 200, OutcomeProxied, 20*time.Millisecond)
	c.RecordRequest("POST", 429, OutcomeRateLimited, time.Millisecond)

	proxied := testutil.ToFloat64(c.requestsTotal.WithLabelValues("GET", "200", OutcomeProxied))
	if proxied != 2 {
		t.Errorf("proxied count = %v, want 2", proxied)
	}
	limited := testutil.ToFloat64(c.requestsTotal.WithLabelValues("POST", "429", OutcomeRateLimited))
	if limited != 1 {
		t.Errorf("rate_limited count = %v, want 1", limited)
	}
}

func TestCollectorCounters(t *testing.T) {
	c := newTestCollector()

	c.RecordRateLimitFailOpen()
	c.RecordRateLimitFailOpen()
	c.RecordPublishFailure()

	if got := testutil.ToFloat64(c.rateLimitFailOpen); got != 2 {
		t.Errorf("fail-open count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.publishFailures); got != 1 {
		t.Errorf("publish failures = %v, want 1", got)
	}
}

func TestCollectorGauges(t *testing.T) {
	c := newTestCollector()

	c.SetCacheRoutes(7)
	c.SetStreamSubscribers(3)

	if got := testutil.ToFloat64(c.cacheRoutes); got != 7 {
		t.Errorf("cache routes = %v, want 7", got)
	}
	if got := testutil.ToFloat64(c.streamSubscribers); got != 3 {
		t.Errorf("stream subscribers = %v, want 3", got)
	}
}

func TestCollectorHandlerExposesMetrics(t *testing.T) {
	c := newTestCollector()
	c.RecordRequest("GET", 200, OutcomeProxied, 15*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "portico_gateway_requests_total") {
		t.Errorf("exposition should carry the requests counter, got:\n%s", body)
	}
	if !strings.Contains(body, "portico_gateway_request_duration_seconds") {
		t.Error("exposition should carry the duration histogram")
	}
}
