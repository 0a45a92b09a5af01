// Package microservice provides the bridge's host-facing HTTP surface:
// aggregated health probes and Prometheus metrics.
package microservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server serves /healthz, /readyz and /metrics for the bridge.
type Server struct {
	logger     zerolog.Logger
	httpPort   string
	health     *HealthRegistry
	httpServer *http.Server
	mux        *http.ServeMux
	actualAddr string
	mu         sync.RWMutex
}

// NewServer creates a Server exposing the given health registry.
func NewServer(logger zerolog.Logger, httpPort string, health *HealthRegistry) *Server {
	s := &Server{
		logger:   logger.With().Str("component", "Server").Logger(),
		httpPort: httpPort,
		health:   health,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.healthzHandler)
	mux.HandleFunc("GET /readyz", s.healthzHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	s.mux = mux
	s.httpServer = &http.Server{
		Addr:              httpPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// healthzHandler reports 200 when every registered probe is healthy and
// 503 otherwise, including the individual probe results either way.
func (s *Server) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	statuses := s.health.Statuses()
	healthy := true
	for _, ok := range statuses {
		if !ok {
			healthy = false
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"healthy": healthy,
		"checks":  statuses,
	})
}

// Start initiates the HTTP server in a background goroutine.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", s.httpPort, err)
	}

	s.mu.Lock()
	s.actualAddr = listener.Addr().String()
	s.mu.Unlock()

	s.logger.Info().Str("address", s.actualAddr).Msg("HTTP server starting to listen")

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	return nil
}

// Shutdown gracefully stops the HTTP server, respecting the provided
// context's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Error during HTTP server shutdown.")
		return err
	}
	s.logger.Info().Msg("HTTP server stopped.")
	return nil
}

// GetHTTPPort returns the actual port the server is listening on, which
// differs from the configured one when ":0" was requested.
func (s *Server) GetHTTPPort() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, port, err := net.SplitHostPort(s.actualAddr)
	if err != nil {
		return s.httpPort
	}
	return ":" + port
}

// Mux returns the underlying ServeMux so hosts can attach extra routes.
func (s *Server) Mux() *http.ServeMux {
	return s.mux
}
