package status

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nexport/nexport/pkg/errors"
)

// Server exposes a tracker over HTTP for the duration of an export run.
type Server struct {
	tracker *Tracker
	logger  *log.Logger
	http    *http.Server
	addr    string
}

// NewServer creates a status server bound to addr (e.g. "127.0.0.1:8099").
func NewServer(addr string, tracker *Tracker, logger *log.Logger) *Server {
	s := &Server{tracker: tracker, logger: logger}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start begins listening and serves requests in the background.
// Bind failures are reported immediately; use [Server.Shutdown] to stop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "status server listen on %s", s.http.Addr)
	}
	s.addr = ln.Addr().String()

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("status server stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound listen address. Useful when starting on port 0.
func (s *Server) Addr() string { return s.addr }

// Shutdown stops the server, waiting for in-flight requests up to the
// context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/status/repositories/{name}", s.handleRepository)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

func (s *Server) handleRepository(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	repo, ok := s.tracker.Repository(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown repository: " + name})
		return
	}
	writeJSON(w, http.StatusOK, repo)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
