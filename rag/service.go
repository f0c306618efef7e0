package rag

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reai-platform/core/core"
)

// Service exposes the Pipeline over HTTP so it can also run as its own
// process when not embedded directly in the Orchestrator (spec §9's
// per-component independent-service layout).
type Service struct {
	pipeline *Pipeline
	logger   core.Logger
	srv      *http.Server
}

func NewService(pipeline *Pipeline, logger core.Logger) *Service {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Service{pipeline: pipeline, logger: logger}
}

func (s *Service) Start(ctx context.Context, port int) error {
	r := chi.NewRouter()
	r.Post("/run", s.handleRun)
	r.Get("/health", s.handleHealth)

	s.srv = &http.Server{
		Addr:    ":" + strconv.Itoa(port),
		Handler: core.RequestIDMiddleware()(core.LoggingMiddleware(s.logger, false)(r)),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-time.After(100 * time.Millisecond):
		s.logger.Info("rag pipeline listening", map[string]interface{}{"port": port})
		return nil
	}
}

func (s *Service) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Service) handleRun(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := s.pipeline.Run(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
