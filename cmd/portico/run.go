package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"portico-gw/portico/pkg/accesslog"
	"portico-gw/portico/pkg/admin"
	"portico-gw/portico/pkg/breaker"
	"portico-gw/portico/pkg/config"
	"portico-gw/portico/pkg/proxy"
	"portico-gw/portico/pkg/ratelimit"
	"portico-gw/portico/pkg/route"
	"portico-gw/portico/pkg/route/store"
	"portico-gw/portico/pkg/server"
	"portico-gw/portico/pkg/stream"
	"portico-gw/portico/pkg/telemetry/logging"
	"portico-gw/portico/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway",
	Long: `Start the gateway with the specified configuration.

The server listens on the configured address and forwards traffic to
backend services according to the route table, applying per-client rate
limits and publishing access-log events.

Examples:
  # Start with default config
  portico run

  # Start with custom config
  portico run --config /etc/portico/config.yaml

  # Override listen address
  portico run --listen 0.0.0.0:8080

  # Validate config without starting the server
  portico run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	if _, err := logging.Setup(cfg.Telemetry.Logging); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	slog.Info("starting portico",
		"version", Version,
		"config", cfgFile,
		"listen", cfg.Server.ListenAddress,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Route store and cache. The initial cache load is fatal: a gateway
	// with no routes would answer every request with 404.
	routeStore, err := store.NewSQLiteStore(&store.SQLiteConfig{
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		WALMode:      cfg.Database.WALMode,
		BusyTimeout:  cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to open route store: %w", err)
	}
	defer routeStore.Close()

	cache := route.NewCache(routeStore, cfg.Cache.RefreshInterval)
	if err := cache.Start(ctx); err != nil {
		return fmt.Errorf("failed to load route table: %w", err)
	}
	slog.Info("route table loaded", "routes", cache.Size())

	// Rate limiter. Redis buckets are shared across replicas; the in-memory
	// fallback is process-local.
	var limiter ratelimit.Limiter
	if cfg.Redis.Enabled {
		limiter = ratelimit.NewRedisLimiter(&ratelimit.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		slog.Info("rate limiting backed by redis", "addr", cfg.Redis.Addr)
	} else {
		mem := ratelimit.NewMemoryLimiter()
		mem.StartJanitor(ctx)
		limiter = mem
		slog.Warn("redis disabled, rate-limit buckets are process-local")
	}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	breakers := breaker.NewRegistry(breaker.Config{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		OpenDuration:     cfg.Breaker.OpenDuration,
	})
	registry := stream.NewRegistry()

	// Access-log pipeline: publisher on the request path, consumer feeding
	// the dashboard registry.
	var publisher accesslog.Publisher = accesslog.NopPublisher{}
	if cfg.Kafka.Enabled {
		kafkaCfg := &accesslog.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
			OnDeliveryFailure: func(count int) {
				for i := 0; i < count; i++ {
					collector.RecordPublishFailure()
				}
			},
		}

		kafkaPublisher := accesslog.NewKafkaPublisher(kafkaCfg)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher

		consumer := accesslog.NewConsumer(kafkaCfg, registry.Broadcast)
		consumer.Start(ctx)
		slog.Info("access log pipeline started", "brokers", cfg.Kafka.Brokers, "topic", kafkaCfg.Topic)
	} else {
		slog.Warn("kafka disabled, access log events are dropped and the dashboard stream stays silent")
	}

	go updateGauges(ctx, collector, cache, registry)

	engine := proxy.NewEngine(&cfg.Proxy, cache, limiter, publisher, breakers, collector)
	adminHandler := admin.NewHandler(routeStore, cache)
	streamHandler := stream.NewHandler(registry)

	srv := server.NewServer(cfg, engine, adminHandler, streamHandler, collector, breakers)
	return srv.Start(ctx)
}

// updateGauges refreshes the slow-moving gauges. Both values are cheap
// reads, so a coarse interval is plenty.
func updateGauges(ctx context.Context, collector *metrics.Collector, cache *route.Cache, registry *stream.Registry) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			collector.SetCacheRoutes(cache.Size())
			collector.SetStreamSubscribers(registry.Count())
		}
	}
}
