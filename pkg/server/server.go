package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"portico-gw/portico/pkg/admin"
	"portico-gw/portico/pkg/breaker"
	"portico-gw/portico/pkg/config"
	"portico-gw/portico/pkg/proxy/middleware"
	"portico-gw/portico/pkg/stream"
	"portico-gw/portico/pkg/telemetry/metrics"
)

// Server is the gateway's HTTP server.
type Server struct {
	cfg       *config.Config
	engine    http.Handler
	admin     *admin.Handler
	stream    *stream.Handler
	collector *metrics.Collector
	breakers  *breaker.Registry

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates the gateway server. The engine serves every request no
// other handler claims.
func NewServer(cfg *config.Config, engine http.Handler, adminHandler *admin.Handler, streamHandler *stream.Handler, collector *metrics.Collector, breakers *breaker.Registry) *Server {
	return &Server{
		cfg:          cfg,
		engine:       engine,
		admin:        adminHandler,
		stream:       streamHandler,
		collector:    collector,
		breakers:     breakers,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown. It returns when
// the context is cancelled, a SIGINT/SIGTERM arrives, or the listener
// fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:    s.cfg.Server.ListenAddress,
		Handler: s.Handler(),
		// ReadTimeout and WriteTimeout stay unset: proxied bodies and the
		// dashboard stream are open-ended by design of the data path.
		ReadHeaderTimeout: s.cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
		MaxHeaderBytes:    s.cfg.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server", "address", s.cfg.Server.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.cfg.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

// Stop requests a shutdown from outside the Start goroutine.
func (s *Server) Stop() {
	close(s.shutdownChan)
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler builds the full HTTP handler: routes plus middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// CORS covers only the gateway's own surface. Proxied responses pass
	// through untouched; cross-origin policy for those belongs to the
	// target services.
	cors := middleware.CORS(s.cfg.Server.CORS)

	adminMux := http.NewServeMux()
	s.admin.Register(adminMux)
	adminHandler := cors(adminMux)
	mux.Handle("/routes", adminHandler)
	mux.Handle("/routes/", adminHandler)

	mux.Handle("/dashboard/stream", cors(s.stream))
	mux.HandleFunc("GET /healthz", s.healthz)

	if s.cfg.Telemetry.Metrics.Enabled {
		mux.Handle("GET "+s.cfg.Telemetry.Metrics.Path, s.collector.Handler())
	}

	// Everything else is gateway traffic.
	mux.Handle("/", s.engine)

	var handler http.Handler = mux
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)

	return handler
}

// healthz reports liveness plus the routes whose circuit breaker is open.
// Open breakers are informational: the gateway keeps forwarding to those
// routes, the health payload just makes repeated failures visible.
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	open := s.breakers.OpenRoutes()
	if open == nil {
		open = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       "ok",
		"openBreakers": open,
	})
}
