package orchestrator

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

// Service exposes the Engine over HTTP as the Orchestrator process (spec
// §6: POST /orchestrate, POST /orchestrate/v2, GET /health, GET /info).
type Service struct {
	engine *Engine
	logger core.Logger
	srv    *http.Server
}

func NewService(engine *Engine, logger core.Logger) *Service {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Service{engine: engine, logger: logger}
}

func (s *Service) Start(ctx context.Context, port int) error {
	r := chi.NewRouter()
	r.Post("/orchestrate", s.handleOrchestrate(false))
	r.Post("/orchestrate/v2", s.handleOrchestrate(true))
	r.Get("/health", s.handleHealth)
	r.Get("/info", s.handleInfo)

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
		s.logger.Info("orchestrator listening", map[string]interface{}{"port": port})
		return nil
	}
}

func (s *Service) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// handleOrchestrate builds the POST /orchestrate (or /orchestrate/v2)
// handler; v2 always attaches the full ReasoningChain (spec §6).
func (s *Service) handleOrchestrate(includeChain bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, "user_id is required")
			return
		}
		resp, chain := s.engine.Orchestrate(r.Context(), req)
		if includeChain {
			resp.ReasoningChain = chain
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Service) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "orchestrator",
		"intents": []Intent{
			IntentSearch, IntentPropertyDetail, IntentCompare, IntentPriceAnalysis,
			IntentInvestmentAdvice, IntentLocationInsights, IntentLegalGuidance,
			IntentChat, IntentUnknown,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
