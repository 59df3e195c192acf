package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path and
// validates the result. The file is unmarshalled over DefaultConfig, so
// unspecified fields keep their defaults and every value the file does
// specify wins. Environment variables are not consulted; use Load for the
// full override chain.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Load loads configuration from a YAML file and applies environment variable
// overrides. Variables follow the naming convention PORTICO_SECTION_FIELD
// (e.g. PORTICO_SERVER_LISTEN_ADDRESS) and always win over file values.
//
// The loading sequence is:
//  1. Start from DefaultConfig
//  2. Unmarshal YAML from file over it (missing file keeps the defaults)
//  3. Apply environment variable overrides
//  4. Validate final configuration
func Load(path string) (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	setString("PORTICO_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	setDuration("PORTICO_SERVER_READ_HEADER_TIMEOUT", &cfg.Server.ReadHeaderTimeout)
	setDuration("PORTICO_SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	setDuration("PORTICO_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	setDuration("PORTICO_PROXY_DISPATCH_TIMEOUT", &cfg.Proxy.DispatchTimeout)

	setString("PORTICO_DATABASE_PATH", &cfg.Database.Path)
	setBool("PORTICO_DATABASE_WAL_MODE", &cfg.Database.WALMode)

	setDuration("PORTICO_CACHE_REFRESH_INTERVAL", &cfg.Cache.RefreshInterval)

	setBool("PORTICO_REDIS_ENABLED", &cfg.Redis.Enabled)
	setString("PORTICO_REDIS_ADDR", &cfg.Redis.Addr)
	setString("PORTICO_REDIS_PASSWORD", &cfg.Redis.Password)
	setInt("PORTICO_REDIS_DB", &cfg.Redis.DB)
	setDuration("PORTICO_REDIS_TIMEOUT", &cfg.Redis.Timeout)

	setBool("PORTICO_KAFKA_ENABLED", &cfg.Kafka.Enabled)
	if val := os.Getenv("PORTICO_KAFKA_BROKERS"); val != "" {
		brokers := strings.Split(val, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		cfg.Kafka.Brokers = brokers
	}
	setString("PORTICO_KAFKA_TOPIC", &cfg.Kafka.Topic)
	setString("PORTICO_KAFKA_GROUP_ID", &cfg.Kafka.GroupID)

	setString("PORTICO_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	setString("PORTICO_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	setBool("PORTICO_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
}

func setString(name string, dst *string) {
	if val := os.Getenv(name); val != "" {
		*dst = val
	}
}

func setInt(name string, dst *int) {
	if val := os.Getenv(name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func setBool(name string, dst *bool) {
	if val := os.Getenv(name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setDuration(name string, dst *time.Duration) {
	if val := os.Getenv(name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
