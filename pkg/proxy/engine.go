package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"portico-gw/portico/pkg/accesslog"
	"portico-gw/portico/pkg/breaker"
	"portico-gw/portico/pkg/config"
	"portico-gw/portico/pkg/ratelimit"
	"portico-gw/portico/pkg/route"
	"portico-gw/portico/pkg/telemetry/metrics"
)

// RouteMatcher resolves an inbound request path to a route. Satisfied by
// *route.Cache.
type RouteMatcher interface {
	FindMatch(requestPath string) *route.Route
}

// Engine processes one inbound request end-to-end: match, limit, forward,
// relay, log. It never retries.
type Engine struct {
	matcher   RouteMatcher
	limiter   ratelimit.Limiter
	publisher accesslog.Publisher
	breakers  *breaker.Registry
	collector *metrics.Collector
	client    *http.Client
	timeout   time.Duration
	logger    *slog.Logger
}

// NewEngine creates the proxy engine. The HTTP client and its connection
// pool are shared by every request; construct the engine once at startup.
// breakers and collector may be nil.
func NewEngine(cfg *config.ProxyConfig, matcher RouteMatcher, limiter ratelimit.Limiter,
	publisher accesslog.Publisher, breakers *breaker.Registry, collector *metrics.Collector) *Engine {

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}

	return &Engine{
		matcher:   matcher,
		limiter:   limiter,
		publisher: publisher,
		breakers:  breakers,
		collector: collector,
		client:    &http.Client{Transport: transport},
		timeout:   cfg.DispatchTimeout,
		logger:    slog.Default().With("component", "proxy.engine"),
	}
}

// ServeHTTP implements http.Handler for the catch-all route.
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	method := strings.ToUpper(r.Method)
	path := r.URL.Path
	clientIP := ClientIP(r)

	// Route lookup.
	rt := e.matcher.FindMatch(path)
	if rt == nil {
		writeJSONError(w, http.StatusNotFound, "No route found for path: "+path)
		e.emit(start, clientIP, method, path, nil, http.StatusNotFound, false, metrics.OutcomeNoRoute)
		return
	}

	// Rate limit check. Client identity = IP address; each (IP, route)
	// pair has its own token bucket.
	res := e.limiter.Check(r.Context(), clientIP, rt)
	if !res.Allowed {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(*rt.Capacity))
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("Retry-After", "1")
		writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")
		e.emit(start, clientIP, method, path, &rt.TargetURL, http.StatusTooManyRequests, true, metrics.OutcomeRateLimited)
		return
	}

	// Informational headers on allowed requests; skipped when no limit is
	// configured or the store failed open (remaining == -1).
	if rt.RateLimited() && !res.Bypassed() {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(*rt.Capacity))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	}
	if rt.RateLimited() && res.Bypassed() && e.collector != nil {
		e.collector.RecordRateLimitFailOpen()
	}

	// Target URL: downstream base + original path + untouched query string.
	targetURL := rt.TargetURL + path
	if r.URL.RawQuery != "" {
		targetURL += "?" + r.URL.RawQuery
	}

	e.logger.Debug("proxying request", "method", method, "path", path, "target", targetURL)

	ctx, cancel := context.WithTimeout(r.Context(), e.timeout)
	defer cancel()

	// The inbound body is handed to the outbound request as a stream; it is
	// never buffered in full.
	outbound, err := http.NewRequestWithContext(ctx, method, targetURL, r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, "Bad gateway: "+err.Error())
		e.emit(start, clientIP, method, path, &rt.TargetURL, http.StatusBadGateway, false, metrics.OutcomeError)
		return
	}
	outbound.ContentLength = r.ContentLength
	copyForwardHeaders(outbound.Header, r.Header)

	resp, err := e.client.Do(outbound)
	if err != nil {
		e.recordOutcome(rt.Path, false)
		status := e.dispatchFailure(w, r, method, path, err)
		outcome := metrics.OutcomeError
		e.emit(start, clientIP, method, path, &rt.TargetURL, status, false, outcome)
		return
	}
	defer resp.Body.Close()

	e.recordOutcome(rt.Path, resp.StatusCode < http.StatusInternalServerError)

	copyRelayHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		// Headers and status are already on the wire; nothing to map.
		e.logger.Debug("response relay aborted", "method", method, "path", path, "error", err)
	}

	e.emit(start, clientIP, method, path, &rt.TargetURL, resp.StatusCode, false, metrics.OutcomeProxied)
}

// dispatchFailure maps a transport error to the response the caller sees
// and returns the status code used.
//
// A cancelled inbound request maps to 500 and the cancellation has already
// propagated: the outbound request context derives from the inbound one, so
// the downstream connection is aborted and released. Everything else
// (refused connections, dispatch timeouts, protocol errors) is a 502.
func (e *Engine) dispatchFailure(w http.ResponseWriter, r *http.Request, method, path string, err error) int {
	if errors.Is(err, context.Canceled) || r.Context().Err() != nil {
		writeJSONError(w, http.StatusInternalServerError, "Proxy request interrupted")
		return http.StatusInternalServerError
	}

	e.logger.Error("proxy dispatch failed", "method", method, "path", path, "error", err)
	writeJSONError(w, http.StatusBadGateway, fmt.Sprintf("Bad gateway: %s", err.Error()))
	return http.StatusBadGateway
}

// recordOutcome feeds the dispatch result into the route's circuit breaker.
func (e *Engine) recordOutcome(routePath string, success bool) {
	if e.breakers != nil {
		e.breakers.ForRoute(routePath).Record(success)
	}
}

// emit publishes exactly one access-log event for the request and records
// request metrics. Publishing is fire-and-forget.
func (e *Engine) emit(start time.Time, clientIP, method, path string, targetURL *string,
	status int, rateLimited bool, outcome string) {

	latency := time.Since(start)

	e.publisher.Publish(accesslog.Event{
		Timestamp:   time.Now(),
		ClientIP:    clientIP,
		Method:      method,
		Path:        path,
		TargetURL:   targetURL,
		StatusCode:  status,
		LatencyMs:   latency.Milliseconds(),
		RateLimited: rateLimited,
	})

	if e.collector != nil {
		e.collector.RecordRequest(method, status, outcome, latency)
	}
}
