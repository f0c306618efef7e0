package llmgateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/reai-platform/core/core"
	"github.com/reai-platform/core/resilience"
)

// RouteStep is one candidate in a logical tag's ordered fallback chain
// (spec §4.2 "resolves it to a primary provider route and an ordered
// fallback list").
type RouteStep struct {
	ProviderName string
	Model        string
}

// Route is the resolved chain for a single logical model tag.
type Route struct {
	LogicalTag string
	Steps      []RouteStep
}

// Router resolves logical model tags to provider routes, applying a
// circuit breaker and retry policy per candidate route in order, per
// spec §4.2 steps 1-3.
type Router struct {
	routes    map[string]Route
	providers map[string]Provider
	breakers  map[string]*resilience.CircuitBreaker
	logger    core.Logger
}

// NewRouter builds a Router. providers maps provider name ("openai",
// "anthropic", "ollama") to its adapter; routes maps logical tag
// ("primary-chat", "primary-embed") to its resolved fallback chain (spec
// §6's routing table).
func NewRouter(providerMap map[string]Provider, routes map[string]Route, logger core.Logger) *Router {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	r := &Router{
		routes:    routes,
		providers: providerMap,
		breakers:  make(map[string]*resilience.CircuitBreaker),
		logger:    logger,
	}
	for tag, route := range routes {
		for _, step := range route.Steps {
			key := breakerKey(tag, step)
			cb, err := resilience.NewCircuitBreaker(routeBreakerConfig(key, logger))
			if err != nil {
				logger.Error("failed to build circuit breaker for route", map[string]interface{}{
					"route": key, "error": err.Error(),
				})
				continue
			}
			r.breakers[key] = cb
		}
	}
	return r
}

func breakerKey(tag string, step RouteStep) string {
	return fmt.Sprintf("%s:%s:%s", tag, step.ProviderName, step.Model)
}

// routeBreakerConfig approximates spec §4.2's pure consecutive-failure
// breaker (closed->open at 5 failures, 60s sleep, one success to close) on
// top of the sliding-window breaker the rest of the platform shares:
// VolumeThreshold=5 and ErrorThreshold=1 open the circuit once the window
// holds at least 5 calls and all of them failed, so 5 consecutive failures
// within the window open it the same way a bare counter would.
func routeBreakerConfig(name string, logger core.Logger) *resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultConfig()
	cfg.Name = name
	cfg.VolumeThreshold = 5
	cfg.ErrorThreshold = 1.0
	cfg.SleepWindow = 60 * time.Second
	cfg.HalfOpenRequests = 1
	cfg.SuccessThreshold = 1.0
	cfg.WindowSize = 60 * time.Second
	cfg.BucketCount = 6
	cfg.Logger = logger
	return cfg
}

// Complete resolves req.Model to a route and walks its candidates in
// order, skipping open circuits, retrying each candidate per spec §4.2.2b,
// and returning the first success.
func (r *Router) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	route, ok := r.routes[req.Model]
	if !ok {
		return LLMResponse{}, fmt.Errorf("%w: unknown logical model %q", core.ErrBadRequest, req.Model)
	}

	var lastErr error
	for _, step := range route.Steps {
		key := breakerKey(req.Model, step)
		cb := r.breakers[key]
		provider, ok := r.providers[step.ProviderName]
		if !ok {
			continue
		}

		if cb != nil && !cb.CanExecute() {
			r.logger.Warn("skipping open circuit route", map[string]interface{}{"route": key})
			continue
		}

		resp, err := r.callWithRetry(ctx, cb, provider, step.Model, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		r.logger.Warn("route exhausted, falling back", map[string]interface{}{
			"route": key, "error": err.Error(),
		})
	}

	if lastErr == nil {
		lastErr = core.ErrProviderUnavailable
	}
	return LLMResponse{}, fmt.Errorf("%w: all routes exhausted for %q: %v", core.ErrProviderUnavailable, req.Model, lastErr)
}

// callWithRetry applies the circuit breaker and the exponential backoff
// retry policy (2s initial, x2, cap 16s, max 4 attempts) to a single
// candidate route, aborting immediately on non-retryable errors.
func (r *Router) callWithRetry(ctx context.Context, cb *resilience.CircuitBreaker, provider Provider, model string, req LLMRequest) (LLMResponse, error) {
	bo := &backoff.ExponentialBackOff{
		InitialInterval:     2 * time.Second,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         16 * time.Second,
	}
	bo.Reset()

	operation := func() (LLMResponse, error) {
		resp, err := provider.Complete(ctx, model, req)
		if err == nil {
			if cb != nil {
				cb.RecordSuccess()
			}
			return resp, nil
		}
		if !isRetryable(err) {
			if cb != nil {
				cb.RecordFailure()
			}
			return LLMResponse{}, backoff.Permanent(err)
		}
		if cb != nil {
			cb.RecordFailure()
		}
		return LLMResponse{}, err
	}

	resp, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(4))
	return resp, err
}

// isRetryable implements spec §4.2.2b: network timeout, connection
// refused, HTTP 5xx and 429 retry; other 4xx abort immediately.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, core.ErrBadRequest) {
		return false
	}
	if errors.Is(err, core.ErrRateLimited) || errors.Is(err, core.ErrProviderUnavailable) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") || strings.Contains(msg, "EOF")
}

// NewHTTPClient builds the single pooled client every gateway instance
// shares across providers (spec §4.2 "single shared HTTP client ... pool
// max 100 connections, 20 keepalive, 30s keepalive expiry").
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: core.DefaultGatewayDeadline,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     30 * time.Second,
		},
	}
}

// Models returns the configured logical tags and the providers backing
// each, for GET /models (spec §6).
func (r *Router) Models() []ModelDescriptor {
	out := make([]ModelDescriptor, 0, len(r.routes))
	for tag, route := range r.routes {
		providerNames := make([]string, len(route.Steps))
		for i, s := range route.Steps {
			providerNames[i] = s.ProviderName
		}
		out = append(out, ModelDescriptor{LogicalTag: tag, Providers: providerNames})
	}
	return out
}

// Embed resolves a logical embedding tag like Complete does, without
// the retry/backoff machinery duplicated: embeddings are idempotent reads
// so a single retryable attempt per candidate suffices for this gateway.
func (r *Router) Embed(ctx context.Context, req EmbedRequest) (EmbedResponse, error) {
	route, ok := r.routes[req.Model]
	if !ok {
		return EmbedResponse{}, fmt.Errorf("%w: unknown logical model %q", core.ErrBadRequest, req.Model)
	}

	var lastErr error
	for _, step := range route.Steps {
		key := breakerKey(req.Model, step)
		cb := r.breakers[key]
		provider, ok := r.providers[step.ProviderName]
		if !ok {
			continue
		}
		if cb != nil && !cb.CanExecute() {
			continue
		}
		resp, err := provider.Embed(ctx, step.Model, req)
		if err == nil {
			if cb != nil {
				cb.RecordSuccess()
			}
			return resp, nil
		}
		if cb != nil {
			cb.RecordFailure()
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = core.ErrProviderUnavailable
	}
	return EmbedResponse{}, fmt.Errorf("%w: all routes exhausted for %q: %v", core.ErrProviderUnavailable, req.Model, lastErr)
}
