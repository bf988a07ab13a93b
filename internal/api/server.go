// Package api exposes profiling runs over HTTP for callers that prefer a
// service to a CLI.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"timeprof/app"
	"timeprof/internal"
	"timeprof/internal/config"
	apperrors "timeprof/internal/errors"
)

// Server hosts the profiling API
type Server struct {
	service *app.ProfileService
	log     *internal.Logger
	router  chi.Router
}

// NewServer creates the server and its routes
func NewServer(service *app.ProfileService, log *internal.Logger) *Server {
	if log == nil {
		log = internal.DefaultLogger
	}
	s := &Server{service: service, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/runs", s.handleRun)

	s.router = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving the API on the given address
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("profiling API listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRun executes a profiling run from a config document in the body
// and returns the aggregated table, metadata, and evaluated sections
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.writeError(w, apperrors.InvalidInput("failed to read request body"))
		return
	}

	cfg, err := config.Parse(body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.service.Run(r.Context(), cfg)
	if err != nil {
		s.writeError(w, apperrors.PipelineError("profiling run failed", err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case apperrors.CodeConfigInvalid, apperrors.CodeInvalidInput:
		status = http.StatusBadRequest
	case apperrors.CodePipelineError:
		status = http.StatusUnprocessableEntity
	}
	s.log.Error("request failed (%s): %v", code, err)
	writeJSON(w, status, map[string]string{"code": code, "error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
