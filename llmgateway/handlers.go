package llmgateway

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

// Service is the gateway's explicit-lifecycle HTTP service (spec §9).
type Service struct {
	router *Router
	logger core.Logger
	srv    *http.Server
}

// NewService wires providers and routes into a Router; no network I/O
// happens until Start.
func NewService(cfg Config, logger core.Logger) *Service {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	httpClient := NewHTTPClient()
	providers := cfg.BuildProviders(httpClient)
	routes := cfg.BuildRoutes()
	return &Service{
		router: NewRouter(providers, routes, logger),
		logger: logger,
	}
}

func (s *Service) Start(ctx context.Context, port int) error {
	r := chi.NewRouter()
	r.Post("/chat/completions", s.handleChatCompletions)
	r.Post("/embeddings", s.handleEmbeddings)
	r.Get("/models", s.handleModels)
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
		s.logger.Info("llmgateway listening", map[string]interface{}{"port": port})
		return nil
	}
}

func (s *Service) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Service) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req LLMRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RequestID == "" {
		req.RequestID = r.Header.Get("X-Request-ID")
	}

	ctx, cancel := context.WithTimeout(r.Context(), core.DefaultGatewayDeadline)
	defer cancel()

	resp, err := s.router.Complete(ctx, req)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req EmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), core.DefaultGatewayDeadline)
	defer cancel()

	resp, err := s.router.Embed(ctx, req)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": s.router.Models()})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeGatewayError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, core.ErrProviderUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
