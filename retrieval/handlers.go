package retrieval

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

// Service is the Retrieval Gateway's explicit-lifecycle HTTP service.
type Service struct {
	gateway *Gateway
	logger  core.Logger
	srv     *http.Server
}

// Config controls the retrieval circuit breaker (spec §6 env vars, shared
// names with the LLM Gateway's breaker).
type Config struct {
	FailThreshold uint32
	ResetTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		FailThreshold: uint32(core.EnvInt("CIRCUIT_BREAKER_FAIL_THRESHOLD", 5)),
		ResetTimeout:  time.Duration(core.EnvInt("CIRCUIT_BREAKER_RESET_SECONDS", 60)) * time.Second,
	}
}

// NewService wires a Service over corpus's documents. No network I/O
// happens until Start.
func NewService(cfg Config, corpus *Corpus, logger core.Logger) *Service {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Service{
		gateway: NewGateway(corpus, cfg.FailThreshold, cfg.ResetTimeout, logger),
		logger:  logger,
	}
}

func (s *Service) Start(ctx context.Context, port int) error {
	r := chi.NewRouter()
	r.Post("/search", s.handleSearch)
	r.Get("/properties/{id}", s.handleGetProperty)
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
		s.logger.Info("retrieval gateway listening", map[string]interface{}{"port": port})
		return nil
	}
}

func (s *Service) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.gateway.Search(r.Context(), req)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.gateway.GetProperty(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeGatewayError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrProviderUnavailable) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
