// Package api provides HTTP and WebSocket API endpoints for the fee server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/logging"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/metrics"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/aggregator"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/collector"
)

// Server represents the HTTP API server.
type Server struct {
	addr       string
	collector  *collector.Collector
	aggregator *aggregator.Aggregator
	server     *http.Server
	logger     *logging.Logger
	cacheTTL   time.Duration
	cacheMu    sync.Mutex
	lastReport *Report
	cacheTime  time.Time
	wsServer   *WebSocketServer // Optional WebSocket server for streaming
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, coll *collector.Collector, agg *aggregator.Aggregator, cacheTTL time.Duration, logger *logging.Logger) *Server {
	return &Server{
		addr:       addr,
		collector:  coll,
		aggregator: agg,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// SetWebSocketServer sets the WebSocket server for streaming updates.
func (s *Server) SetWebSocketServer(ws *WebSocketServer) {
	s.wsServer = ws
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/fee", s.handleFee)
	mux.HandleFunc("/latest", s.handleFee) // Compatibility with the TypeScript client
	mux.HandleFunc("/v1/providers", s.handleProviders)

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.logger.Info("Stopping HTTP server")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleHealth handles /health endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RecordHTTPRequest("/health", "200", time.Since(start))
	}()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// ProviderStatus describes one configured provider for /v1/providers.
type ProviderStatus struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Healthy    bool   `json:"healthy"`
	LastUpdate string `json:"last_update,omitempty"`
}

// handleProviders handles the /v1/providers endpoint.
func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RecordHTTPRequest("/v1/providers", "200", time.Since(start))
	}()

	provs := s.collector.Providers()
	statuses := make([]ProviderStatus, 0, len(provs))
	for _, p := range provs {
		status := ProviderStatus{
			Name:    p.Name(),
			Type:    string(p.Type()),
			Healthy: p.IsHealthy(),
		}
		if last := p.LastUpdate(); !last.IsZero() {
			status.LastUpdate = last.UTC().Format(time.RFC3339)
		}
		statuses = append(statuses, status)
	}

	s.sendJSON(w, statuses)
}

// handleFee handles /v1/fee and /latest endpoints.
func (s *Server) handleFee(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest(r.URL.Path, status, time.Since(start))
	}()

	// Check cache
	s.cacheMu.Lock()
	if s.lastReport != nil && time.Since(s.cacheTime) < s.cacheTTL {
		report := *s.lastReport
		s.cacheMu.Unlock()
		s.sendJSON(w, report)
		return
	}
	s.cacheMu.Unlock()

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	report, err := s.Refresh(ctx)
	if err != nil {
		status = "503"
		s.logger.Error("Failed to produce fee recommendation", "error", err.Error())
		http.Error(w, "No fee samples available", http.StatusServiceUnavailable)
		return
	}

	s.sendJSON(w, report)
}

// Refresh performs one collection and aggregation run, updates the cache and
// streams the fresh report to WebSocket clients. An empty sample set is
// returned as an error, never as a default recommendation.
func (s *Server) Refresh(ctx context.Context) (Report, error) {
	samples := s.collector.Collect(ctx)

	rec, err := s.aggregator.Aggregate(samples)
	if err != nil {
		return Report{}, err
	}

	report := BuildReport(rec)

	s.cacheMu.Lock()
	s.lastReport = &report
	s.cacheTime = time.Now()
	s.cacheMu.Unlock()

	if s.wsServer != nil {
		s.wsServer.SendUpdate(report)
	}

	return report, nil
}

// sendJSON writes a JSON response.
func (s *Server) sendJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err.Error())
	}
}
