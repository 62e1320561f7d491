package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Driver is the part of runner.Driver the HTTP surface needs.
type Driver interface {
	AgentID() string
	Tick(ctx context.Context) (domain.Status, error)
	Snapshot() *ports.Snapshot
	Registry() *registry.Registry
}

// Server serves inspection and control endpoints for one driver.
type Server struct {
	Driver  Driver
	Streams *StreamManager
	Logger  *slog.Logger

	gatherer prometheus.Gatherer
	version  string
}

// Option configures the Server.
type Option func(*Server)

// WithStreams serves GET /events from sm. The same StreamManager must be
// given to the driver as its reporter.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics serves GET /metrics from g.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewHandler creates a new HTTP handler for the driver.
func NewHandler(driver Driver, opts ...Option) http.Handler {
	s := &Server{Driver: driver, Logger: slog.Default(), version: "dev"}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/tree", s.GetTree)
	r.Post("/tick", s.PostTick)
	if s.Streams != nil {
		r.Get("/events", s.SubscribeEvents)
	}
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// InfoResponse is the body of GET /info.
type InfoResponse struct {
	App     string   `json:"app"`
	Version string   `json:"version"`
	AgentID string   `json:"agent_id"`
	Active  bool     `json:"active"`
	Tick    uint64   `json:"tick"`
	Actions []string `json:"actions"`
	Senses  []string `json:"senses"`
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	resp := InfoResponse{
		App:     "arbor-http",
		Version: s.version,
		AgentID: s.Driver.AgentID(),
		Actions: []string{},
		Senses:  []string{},
	}
	if snap := s.Driver.Snapshot(); snap != nil {
		resp.Active = true
		resp.Tick = snap.Tick
	}
	if reg := s.Driver.Registry(); reg != nil {
		resp.Actions = reg.ActionNames()
		resp.Senses = reg.SenseNames()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetTree handles the GET /tree request. With ?format=mermaid the tree is
// rendered as a Mermaid flowchart colored by status.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	snap := s.Driver.Snapshot()
	if snap == nil {
		s.writeError(w, http.StatusNotFound, domain.ErrNotActive)
		return
	}

	if r.URL.Query().Get("format") == "mermaid" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(graph.GenerateMermaid(snap.Tree, graph.StatusOverlay(snap.Tree))))
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// TickResponse is the body of POST /tick.
type TickResponse struct {
	Tick   uint64        `json:"tick"`
	Status domain.Status `json:"status"`
	// Error reports a publishing failure; the tick itself happened.
	Error string `json:"error,omitempty"`
}

// PostTick handles the POST /tick request: exactly one tick per call.
func (s *Server) PostTick(w http.ResponseWriter, r *http.Request) {
	status, err := s.Driver.Tick(r.Context())
	if errors.Is(err, domain.ErrNotActive) {
		s.writeError(w, http.StatusConflict, err)
		return
	}

	resp := TickResponse{Status: status}
	if snap := s.Driver.Snapshot(); snap != nil {
		resp.Tick = snap.Tick
	}
	if err != nil {
		s.Logger.Warn("tick published with errors", "error", err)
		resp.Error = err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}
