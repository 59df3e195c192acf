// Package metrics provides Prometheus metrics for the gateway.
//
// The Collector owns a private registry and pre-registers every metric the
// request path records, so the hot path only touches pre-allocated metric
// vectors:
//
//   - portico_gateway_requests_total{method,status,outcome}
//   - portico_gateway_request_duration_seconds{outcome}
//   - portico_gateway_rate_limit_fail_open_total
//   - portico_gateway_access_log_publish_failures_total
//   - portico_gateway_cache_routes
//   - portico_gateway_stream_subscribers
//
// Outcome is one of "proxied", "no_route", "rate_limited", or "error".
package metrics
