package telemetry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// globalRegistry holds the singleton Registry instance. atomic.Value
	// gives lock-free reads on the hot path (metric emission); it is
	// set once, by initialization, and cleared (to a nil *Registry) by
	// Shutdown.
	globalRegistry atomic.Value // *Registry

	initOnce sync.Once

	// declaredMetrics stores metric declarations made via DeclareMetrics
	// before Initialize runs, so resilience's init() functions (which run
	// before any cmd/* main has a chance to call EnableTelemetry) don't
	// need to block on registry startup.
	declaredMetrics sync.Map // map[string]ModuleConfig

	telemetryErrors  atomic.Int64
	telemetryDropped atomic.Int64
)

// ModuleConfig groups the metrics a module wants pre-registered.
type ModuleConfig struct {
	Metrics []MetricDefinition
}

// MetricDefinition describes one metric's shape, for pre-creation and
// documentation purposes (resilience/instrumentation.go uses this to
// declare its circuit-breaker and retry metrics up front).
type MetricDefinition struct {
	Name    string
	Type    string // counter, histogram, gauge, updowncounter
	Help    string
	Labels  []string
	Unit    string
	Buckets []float64
}

// Registry wires together the OTel provider, the cardinality limiter and
// the self-protection circuit breaker behind the simple Counter/Gauge/
// Histogram API.
type Registry struct {
	config   Config
	provider *OTelProvider
	limiter  *CardinalityLimiter
	circuit  *TelemetryCircuitBreaker
	metrics  *MetricInstruments
	logger   *TelemetryLogger

	emitted   atomic.Int64
	startTime time.Time
	lastError atomic.Value // string

	errorLimiter *RateLimiter
}

// DeclareMetrics registers a module's metric definitions. Safe to call
// from init(), before Initialize runs.
func DeclareMetrics(module string, config ModuleConfig) {
	declaredMetrics.Store(module, config)
}

// Initialize activates the telemetry registry using a freshly-built OTel
// provider. Only the first call (across Initialize and
// initializeWithProvider) takes effect.
func Initialize(config Config) error {
	return initializeWithProvider(config, nil)
}

// initializeWithProvider activates the registry, reusing provider instead
// of building a second OTel pipeline when EnableTelemetry already created
// one for this process.
func initializeWithProvider(config Config, provider *OTelProvider) error {
	var initErr error
	initOnce.Do(func() {
		logger := NewTelemetryLogger(config.ServiceName)
		logger.Info("telemetry registry initializing", map[string]interface{}{
			"service_name": config.ServiceName,
			"endpoint":     config.Endpoint,
		})

		registry, err := newRegistry(config, provider)
		if err != nil {
			initErr = err
			logger.Error("telemetry registry initialization failed", map[string]interface{}{"error": err.Error()})
			return
		}
		registry.logger = logger

		declaredCount := 0
		declaredMetrics.Range(func(key, value interface{}) bool {
			module := key.(string)
			moduleConfig := value.(ModuleConfig)
			registry.registerModule(module, moduleConfig)
			declaredCount++
			return true
		})

		globalRegistry.Store(registry)
		logger.EnableMetrics()

		logger.Info("telemetry registry initialized", map[string]interface{}{
			"declared_modules": declaredCount,
		})
	})
	return initErr
}

func newRegistry(config Config, provider *OTelProvider) (*Registry, error) {
	startTime := time.Now()

	if config.Endpoint == "" {
		config.Endpoint = "localhost:4318"
	}
	if config.ServiceName == "" {
		config.ServiceName = "reai-platform"
	}
	if config.CardinalityLimit == 0 {
		config.CardinalityLimit = 10000
	}

	if provider == nil {
		var err error
		provider, err = NewOTelProvider(config.ServiceName, config.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("create otel provider: %w", err)
		}
	}

	limits := config.CardinalityLimits
	if limits == nil {
		limits = map[string]int{
			"service_name": 20,
			"provider":     20,
			"district":     100,
			"error_type":   50,
		}
	}

	r := &Registry{
		config:       config,
		provider:     provider,
		limiter:      NewCardinalityLimiter(limits),
		circuit:      NewTelemetryCircuitBreaker(config.CircuitBreaker),
		metrics:      provider.metrics,
		startTime:    startTime,
		errorLimiter: NewRateLimiter(1 * time.Second),
	}
	r.lastError.Store("")
	return r, nil
}

func (r *Registry) registerModule(_ string, config ModuleConfig) {
	ctx := context.Background()
	for _, metric := range config.Metrics {
		switch metric.Type {
		case "counter":
			_ = r.metrics.RecordCounter(ctx, metric.Name, 0)
		case "histogram":
			_ = r.metrics.RecordHistogram(ctx, metric.Name, 0)
		}
	}
}

func (r *Registry) emit(name string, value float64, labels map[string]string) error {
	if r.circuit != nil && !r.circuit.Allow() {
		telemetryDropped.Add(1)
		return fmt.Errorf("telemetry circuit breaker open")
	}

	if r.limiter != nil {
		for key, val := range labels {
			if limited := r.limiter.CheckAndLimit(name, key, val); limited != val {
				labels[key] = limited
			}
		}
	}

	if r.provider != nil {
		r.provider.RecordMetric(name, value, labels)
		r.emitted.Add(1)
		if r.circuit != nil {
			r.circuit.RecordSuccess()
		}
	}
	return nil
}

// Emit records a metric against the global registry. A silent no-op
// before Initialize has run.
func Emit(name string, value float64, labels ...string) {
	registry := globalRegistry.Load()
	if registry == nil {
		return
	}

	r, _ := registry.(*Registry)
	if r == nil {
		return
	}
	if err := r.emit(name, value, parseLabels(labels...)); err != nil {
		telemetryErrors.Add(1)
		r.lastError.Store(err.Error())

		if r.logger != nil && r.errorLimiter != nil && r.errorLimiter.Allow() {
			r.logger.Error("failed to emit metric", map[string]interface{}{"metric": name, "error": err.Error()})
		}
		if r.circuit != nil {
			r.circuit.RecordFailure()
		}
	}
}

func parseLabels(labels ...string) map[string]string {
	m := make(map[string]string)
	for i := 0; i < len(labels)-1; i += 2 {
		m[labels[i]] = labels[i+1]
	}
	return m
}

// Shutdown drains and shuts down the registry's OTel provider, then clears
// the global registry so Emit becomes a no-op afterward.
func Shutdown(ctx context.Context) error {
	registry := globalRegistry.Load()
	if registry == nil {
		return nil
	}
	r := registry.(*Registry)

	if r.logger != nil {
		r.logger.Info("telemetry registry shutting down", map[string]interface{}{
			"total_emitted": r.emitted.Load(),
			"uptime_ms":     time.Since(r.startTime).Milliseconds(),
		})
	}

	if r.limiter != nil {
		r.limiter.Stop()
	}

	var err error
	if r.provider != nil {
		err = r.provider.Shutdown(ctx)
	}
	globalRegistry.Store((*Registry)(nil))
	return err
}

// GetRegistry returns the active registry, or nil if Initialize has not
// run yet. resilience/factory.go uses this to auto-detect whether
// telemetry is available before wiring a circuit breaker's metrics
// collector.
func GetRegistry() *Registry {
	r := globalRegistry.Load()
	if r == nil {
		return nil
	}
	return r.(*Registry)
}
