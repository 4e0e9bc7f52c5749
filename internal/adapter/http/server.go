// Package http exposes the threat assessment API plus the operational
// endpoints (health, readiness, metrics).
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/coastal-threat-service/internal/config"
	"github.com/couchcryptid/coastal-threat-service/internal/domain"
	"github.com/couchcryptid/coastal-threat-service/internal/engine"
)

var clock clockwork.Clock = clockwork.NewRealClock()

// SetClock swaps the package clock. Test use only.
func SetClock(c clockwork.Clock) {
	clock = c
}

// ThreatEngine is the API's view of the assessment engine.
type ThreatEngine interface {
	AssessThreat(req engine.AssessRequest) engine.AssessResponse
	AnalyzeReport(req engine.ReportRequest) engine.ReportResponse
	GenerateAlert(req engine.AlertRequest) domain.AlertPayload
	EvacuationRoutes(req engine.RouteRequest) engine.RouteResponse
	RealtimeAnalysis(req engine.RealtimeRequest) engine.RealtimeResponse
	ModelAvailable() bool
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the assessment API and health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	engine     ThreatEngine
	ready      ReadinessChecker
	logger     *slog.Logger
}

// NewServer creates the HTTP server. A nil ready checker reports ready
// unconditionally (the monitor loop is optional).
func NewServer(cfg *config.Config, eng ThreatEngine, ready ReadinessChecker, logger *slog.Logger) *Server {
	s := &Server{
		engine: eng,
		ready:  ready,
		logger: logger,
	}

	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)))

	api.HandleFunc("/health", s.handleCapabilities).Methods(http.MethodGet)
	api.HandleFunc("/threat/assess", s.handleAssess).Methods(http.MethodPost)
	api.HandleFunc("/reports/analyze", s.handleAnalyzeReport).Methods(http.MethodPost)
	api.HandleFunc("/alerts/generate", s.handleGenerateAlert).Methods(http.MethodPost)
	api.HandleFunc("/evacuation-routes", s.handleEvacuationRoutes).Methods(http.MethodPost)
	api.HandleFunc("/analysis/realtime", s.handleRealtimeAnalysis).Methods(http.MethodPost)

	var h http.Handler = r
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	h = handlers.RecoveryHandler()(h)

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ready.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"model_loaded": s.engine.ModelAvailable(),
		"version":      domain.ModelVersionPrimary,
		"timestamp":    clock.Now().UTC(),
	})
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req engine.AssessRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.engine.AssessThreat(req))
}

func (s *Server) handleAnalyzeReport(w http.ResponseWriter, r *http.Request) {
	var req engine.ReportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.engine.AnalyzeReport(req))
}

func (s *Server) handleGenerateAlert(w http.ResponseWriter, r *http.Request) {
	var req engine.AlertRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.engine.GenerateAlert(req))
}

func (s *Server) handleEvacuationRoutes(w http.ResponseWriter, r *http.Request) {
	var req engine.RouteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.engine.EvacuationRoutes(req))
}

func (s *Server) handleRealtimeAnalysis(w http.ResponseWriter, r *http.Request) {
	var req engine.RealtimeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.engine.RealtimeAnalysis(req))
}

// rateLimitMiddleware rejects requests over the configured rate with 429.
// One shared limiter across clients; this is a backstop, not a quota.
func rateLimitMiddleware(limiter *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// decodeBody decodes a JSON request body. An empty body decodes to the zero
// request; invalid JSON is a 400.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
