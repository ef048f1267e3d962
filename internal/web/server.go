// Package web exposes the tracking engine over HTTP: a JSON API for the
// presentation layer, a websocket event push, and an xlsx progress download.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ayonpaul8906/skillbite-engine/internal/recommend"
	"github.com/ayonpaul8906/skillbite-engine/internal/syncstore"
	"github.com/ayonpaul8906/skillbite-engine/internal/tracker"
)

// Config wires the server's collaborators.
type Config struct {
	Engine   *tracker.Engine
	Importer syncstore.CourseImporter // nil disables /recommend and seeding
	Catalog  *recommend.Catalog       // nil disables seed import
	// AuthTokenHash is a bcrypt hash of the expected bearer token.
	// Empty disables authentication.
	AuthTokenHash string
	// Ready reports backing-store readiness for /readyz; nil means always ready.
	Ready func(context.Context) error
}

// Server serves the progress-tracking API.
type Server struct {
	engine   *tracker.Engine
	importer syncstore.CourseImporter
	catalog  *recommend.Catalog
	authHash []byte
	ready    func(context.Context) error
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("web: engine is required")
	}
	return &Server{
		engine:   cfg.Engine,
		importer: cfg.Importer,
		catalog:  cfg.Catalog,
		authHash: []byte(cfg.AuthTokenHash),
		ready:    cfg.Ready,
	}, nil
}

// Handler builds the route table. Health endpoints bypass authentication.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	api := http.NewServeMux()
	api.HandleFunc("POST /recommend", s.handleRecommend)
	api.HandleFunc("GET /progress", s.handleProgress)
	api.HandleFunc("POST /progress/update", s.handleProgressUpdate)
	api.HandleFunc("POST /select/course", s.handleSelectCourse)
	api.HandleFunc("POST /select/resource", s.handleSelectResource)
	api.HandleFunc("POST /advance", s.handleAdvance)
	api.HandleFunc("GET /ws", s.handleWS)
	api.HandleFunc("GET /report.xlsx", s.handleReport)
	mux.Handle("/", s.requireAuth(api))

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			slog.Warn("readiness check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "backing store not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}

// writeError emits the dismissible-banner shape: a recoverable message the
// client shows without tearing down the session.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}
