// Package admin exposes a small HTTP surface over a single environment's
// Operation Dispatcher, for deployments that run a depot behind a
// long-lived process instead of a one-shot CLI invocation.
package admin

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ravelin-dev/depotctl/pkg/ops"
)

// Server wraps a chi router bound to a single Dispatcher/environment.
type Server struct {
	dispatcher *ops.Dispatcher
	logger     *log.Logger
	router     chi.Router
}

// New builds a Server that logs through logger (nil defaults to
// log.Default()) and dispatches GC/precompile/status against d.
func New(d *ops.Dispatcher, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{dispatcher: d, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/status", s.handleStatus)
	r.Post("/gc", s.handleGC)
	r.Post("/precompile", s.handlePrecompile)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Infof("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	entries, err := s.dispatcher.Status(r.Context(), ops.Options{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGC(w http.ResponseWriter, r *http.Request) {
	report, err := s.dispatcher.GC(r.Context(), ops.Options{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handlePrecompile(w http.ResponseWriter, r *http.Request) {
	result, err := s.dispatcher.Precompile(r.Context(), ops.Options{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
