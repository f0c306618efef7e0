package registry

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

// Service is the Registry's explicit-lifecycle HTTP service (spec §9
// "no implicit side effects on construction"). Construction only wires
// dependencies; Start installs routes, launches the prober and begins
// serving.
type Service struct {
	catalog *Catalog
	prober  *Prober
	logger  core.Logger

	srv    *http.Server
	cancel context.CancelFunc
}

// Config controls the probe cadence and eviction policy (spec §6 env vars).
type Config struct {
	ProbeInterval     time.Duration
	ProbeTimeout      time.Duration
	EvictionFailures  int
	DevMode           bool
}

// DefaultConfig applies spec §4.1 defaults, then env overrides.
func DefaultConfig() Config {
	return Config{
		ProbeInterval:    time.Duration(core.EnvInt("HEALTH_PROBE_INTERVAL_SECONDS", 30)) * time.Second,
		ProbeTimeout:     time.Duration(core.EnvInt("HEALTH_PROBE_TIMEOUT_SECONDS", 5)) * time.Second,
		EvictionFailures: core.EnvInt("HEALTH_EVICTION_FAILURES", 3),
		DevMode:          core.EnvBool(core.EnvDevMode, false),
	}
}

// NewService builds a registry Service. No goroutines are started here.
func NewService(cfg Config, logger core.Logger) *Service {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	catalog := NewCatalog(cfg.EvictionFailures, logger)
	return &Service{
		catalog: catalog,
		prober:  NewProber(catalog, cfg.ProbeInterval, cfg.ProbeTimeout, logger),
		logger:  logger,
	}
}

// Start installs the HTTP routes, launches the probe loop and begins
// serving on port. It returns once the listener is bound; Stop tears both
// down (spec §9 explicit lifecycle).
func (s *Service) Start(ctx context.Context, port int) error {
	probeCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.prober.Run(probeCtx)

	r := chi.NewRouter()
	r.Post("/register", s.handleRegister)
	r.Post("/deregister", s.handleDeregister)
	r.Get("/services", s.handleList)
	r.Get("/services/{name}", s.handleGet)
	r.Get("/stats", s.handleStats)
	r.Get("/health", s.handleHealth)

	s.srv = &http.Server{
		Addr:    portAddr(port),
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
		s.logger.Info("registry listening", map[string]interface{}{"port": port})
		return nil
	}
}

// Stop gracefully shuts down the HTTP server and the probe loop.
func (s *Service) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	s.prober.Stop()
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func portAddr(port int) string {
	if port <= 0 {
		port = 8080
	}
	return ":" + strconv.Itoa(port)
}

type registerRequest struct {
	Name         string   `json:"name"`
	Host         string   `json:"host"`
	Port         int      `json:"port"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.catalog.Register(req.Name, req.Host, req.Port, req.Version, req.Capabilities)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "registered", "service": rec})
}

type deregisterRequest struct {
	Name string `json:"name"`
}

func (s *Service) handleDeregister(w http.ResponseWriter, r *http.Request) {
	var req deregisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.catalog.Deregister(req.Name)
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "deregistered"})
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	capability := r.URL.Query().Get("capability")
	status := Status(r.URL.Query().Get("status"))
	services := s.catalog.List(capability, status)
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": len(services), "services": services})
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rec, err := s.catalog.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "service not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Stats())
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
