package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for values that cannot work at runtime.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Server.ListenAddress == "" {
		errs = append(errs, "server.listen_address must not be empty")
	}
	if cfg.Server.ShutdownTimeout < 0 {
		errs = append(errs, "server.shutdown_timeout must not be negative")
	}

	if cfg.Proxy.DispatchTimeout <= 0 {
		errs = append(errs, "proxy.dispatch_timeout must be positive")
	}

	if cfg.Database.Path == "" {
		errs = append(errs, "database.path must not be empty")
	}
	if cfg.Database.MaxOpenConns < 1 {
		errs = append(errs, "database.max_open_conns must be at least 1")
	}

	if cfg.Cache.RefreshInterval <= 0 {
		errs = append(errs, "cache.refresh_interval must be positive")
	}

	if cfg.Redis.Enabled {
		if cfg.Redis.Addr == "" {
			errs = append(errs, "redis.addr must not be empty when redis is enabled")
		}
		if cfg.Redis.Timeout <= 0 {
			errs = append(errs, "redis.timeout must be positive")
		}
	}

	if cfg.Kafka.Enabled {
		if len(cfg.Kafka.Brokers) == 0 {
			errs = append(errs, "kafka.brokers must not be empty when kafka is enabled")
		}
		if cfg.Kafka.Topic == "" {
			errs = append(errs, "kafka.topic must not be empty when kafka is enabled")
		}
	}

	if cfg.Breaker.FailureThreshold < 1 {
		errs = append(errs, "breaker.failure_threshold must be at least 1")
	}
	if cfg.Breaker.OpenDuration <= 0 {
		errs = append(errs, "breaker.open_duration must be positive")
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("telemetry.logging.level %q is not one of debug, info, warn, error",
			cfg.Telemetry.Logging.Level))
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("telemetry.logging.format %q is not one of json, text",
			cfg.Telemetry.Logging.Format))
	}

	if cfg.Telemetry.Metrics.Enabled && !strings.HasPrefix(cfg.Telemetry.Metrics.Path, "/") {
		errs = append(errs, "telemetry.metrics.path must start with /")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
