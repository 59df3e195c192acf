package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"portico-gw/portico/pkg/config"
)

// Request outcomes recorded on the requests_total counter.
const (
	OutcomeProxied     = "proxied"
	OutcomeNoRoute     = "no_route"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Collector owns the Prometheus registry and every gateway metric.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	rateLimitFailOpen prometheus.Counter
	publishFailures   prometheus.Counter
	cacheRoutes       prometheus.Gauge
	streamSubscribers prometheus.Gauge
}

// NewCollector creates a metrics collector with the specified configuration.
// If registry is nil, a fresh private registry is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "portico"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "gateway"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = prometheus.DefBuckets
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of inbound requests processed",
			},
			[]string{"method", "status", "outcome"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "End-to-end duration of inbound requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"outcome"},
		),

		rateLimitFailOpen: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rate_limit_fail_open_total",
				Help:      "Number of rate-limit checks that failed open because the store was unavailable",
			},
		),

		publishFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "access_log_publish_failures_total",
				Help:      "Number of access-log events that could not be published",
			},
		),

		cacheRoutes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_routes",
				Help:      "Number of routes in the current cache snapshot",
			},
		),

		streamSubscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_subscribers",
				Help:      "Number of open live-stream subscriptions",
			},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.rateLimitFailOpen,
		c.publishFailures,
		c.cacheRoutes,
		c.streamSubscribers,
	)

	return c
}

// RecordRequest records one completed inbound request.
func (c *Collector) RecordRequest(method string, status int, outcome string, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, strconv.Itoa(status), outcome).Inc()
	c.requestDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordRateLimitFailOpen records one fail-open rate-limit decision.
func (c *Collector) RecordRateLimitFailOpen() {
	c.rateLimitFailOpen.Inc()
}

// RecordPublishFailure records one failed access-log publish.
func (c *Collector) RecordPublishFailure() {
	c.publishFailures.Inc()
}

// SetCacheRoutes records the size of the current route snapshot.
func (c *Collector) SetCacheRoutes(n int) {
	c.cacheRoutes.Set(float64(n))
}

// SetStreamSubscribers records the number of open live-stream subscriptions.
func (c *Collector) SetStreamSubscribers(n int) {
	c.streamSubscribers.Set(float64(n))
}
