package config

import "time"

// Config is the root configuration structure for Portico.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS settings for the admin and dashboard surface.
	Server ServerConfig `yaml:"server"`

	// Proxy contains configuration for the outbound HTTP client shared by
	// all proxied requests.
	Proxy ProxyConfig `yaml:"proxy"`

	// Database contains configuration for the SQLite route store.
	Database DatabaseConfig `yaml:"database"`

	// Cache contains configuration for the in-memory route cache.
	Cache CacheConfig `yaml:"cache"`

	// Redis contains configuration for the rate-limit store. When disabled,
	// rate limiting falls back to process-local buckets.
	Redis RedisConfig `yaml:"redis"`

	// Kafka contains configuration for the access-log topic. When disabled,
	// events are dropped and the live stream stays silent.
	Kafka KafkaConfig `yaml:"kafka"`

	// Breaker contains configuration for the per-route circuit breakers
	// surfaced on the health endpoint.
	Breaker BreakerConfig `yaml:"breaker"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// BreakerConfig contains circuit-breaker configuration. Breakers are
// informational; the gateway keeps forwarding regardless of state.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive dispatch failures that
	// opens a route's breaker.
	// Default: 5
	FailureThreshold int `yaml:"failure_threshold"`

	// OpenDuration is how long an open breaker waits before a single
	// outcome decides whether it closes again.
	// Default: 30s
	OpenDuration time.Duration `yaml:"open_duration"`
}

// ServerConfig contains configuration for the inbound HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadHeaderTimeout is the maximum duration for reading request headers.
	// The request body is deliberately not covered: proxied uploads stream
	// for as long as the downstream accepts them.
	// Default: 10s
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`

	// IdleTimeout is the maximum time to wait for the next request on a
	// kept-alive connection.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration for the
	// admin API and dashboard stream.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins. ["*"] allows all.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "PUT", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed request headers.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the preflight cache duration in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// ProxyConfig contains configuration for the shared outbound HTTP client.
type ProxyConfig struct {
	// DispatchTimeout bounds a single downstream request, connection
	// establishment through response completion. A timeout maps to 502.
	// Default: 60s
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`

	// MaxIdleConns is the connection pool size across all downstreams.
	// Default: 200
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the pool size per downstream host.
	// Default: 32
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long an idle pooled connection is kept.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// DatabaseConfig contains configuration for the SQLite route store.
type DatabaseConfig struct {
	// Path is the database file path.
	// Default: "data/portico.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// CacheConfig contains configuration for the route cache.
type CacheConfig struct {
	// RefreshInterval is the fixed delay between scheduled refreshes of the
	// route snapshot. The next refresh starts this long after the previous
	// one completes.
	// Default: 30s
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// RedisConfig contains configuration for the rate-limit store.
type RedisConfig struct {
	// Enabled selects the Redis-backed limiter. When false, buckets are
	// process-local.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Addr is the Redis server address ("host:port").
	// Default: "127.0.0.1:6379"
	Addr string `yaml:"addr"`

	// Password is the optional AUTH password.
	Password string `yaml:"password"`

	// DB is the logical database number.
	// Default: 0
	DB int `yaml:"db"`

	// Timeout bounds each rate-limit call; expiry fails open.
	// Default: 250ms
	Timeout time.Duration `yaml:"timeout"`
}

// KafkaConfig contains configuration for the access-log topic.
type KafkaConfig struct {
	// Enabled controls whether access-log events are published and consumed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Brokers is the list of bootstrap broker addresses.
	// Default: ["127.0.0.1:9092"]
	Brokers []string `yaml:"brokers"`

	// Topic is the access-log topic name.
	// Default: "gateway.access-logs"
	Topic string `yaml:"topic"`

	// GroupID is the dashboard consumer group.
	// Default: "dashboard"
	GroupID string `yaml:"group_id"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the /metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "portico"
	Namespace string `yaml:"namespace"`

	// Subsystem is the second metric name segment.
	// Default: "gateway"
	Subsystem string `yaml:"subsystem"`

	// Path is where the metrics endpoint is mounted.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// RequestDurationBuckets are the histogram buckets for request latency.
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}
