package config

import "time"

// DefaultConfig returns a fully-populated configuration with default values.
// LoadConfig unmarshals the file on top of this struct, so a field absent
// from the file keeps its default and a field present in the file always
// wins, including explicit `enabled: false`.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:     "127.0.0.1:8080",
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   30 * time.Second,
			MaxHeaderBytes:    1 << 20,
			CORS: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
				MaxAge:         3600,
			},
		},
		Proxy: ProxyConfig{
			DispatchTimeout:     60 * time.Second,
			MaxIdleConns:        200,
			MaxIdleConnsPerHost: 32,
			IdleConnTimeout:     90 * time.Second,
		},
		Database: DatabaseConfig{
			Path:         "data/portico.db",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			WALMode:      true,
			BusyTimeout:  5 * time.Second,
		},
		Cache: CacheConfig{
			RefreshInterval: 30 * time.Second,
		},
		Redis: RedisConfig{
			Enabled: true,
			Addr:    "127.0.0.1:6379",
			Timeout: 250 * time.Millisecond,
		},
		Kafka: KafkaConfig{
			Enabled: true,
			Brokers: []string{"127.0.0.1:9092"},
			Topic:   "gateway.access-logs",
			GroupID: "dashboard",
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			OpenDuration:     30 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "json",
			},
			Metrics: MetricsConfig{
				Enabled:   true,
				Namespace: "portico",
				Subsystem: "gateway",
				Path:      "/metrics",
				RequestDurationBuckets: []float64{
					0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0,
				},
			},
		},
	}
}
