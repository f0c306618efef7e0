package telemetry

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/reai-platform/core/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// meterName identifies this service's instruments in OTel exports;
// distinct from the per-process service.name resource attribute.
const meterName = "reai-platform"

// OTelProvider implements core.Telemetry with OpenTelemetry, exporting
// both traces and metrics over OTLP/HTTP. Each reai-platform component
// (registry, LLM gateway, retrieval gateway, RAG pipeline, orchestrator)
// gets its own provider, built by EnableTelemetry at process startup.
type OTelProvider struct {
	tracer         trace.Tracer
	meter          metric.Meter
	traceProvider  *sdktrace.TracerProvider
	metricProvider *sdkmetric.MeterProvider
	metrics        *MetricInstruments
	shutdownOnce   sync.Once
	shutdown       bool
	mu             sync.RWMutex
}

// NewOTelProvider builds the OTLP/HTTP trace and metric pipeline for
// serviceName against endpoint (typically port 4318). The endpoint
// "localhost:4317" (the gRPC default) is silently rewritten to
// "localhost:4318"; any other endpoint is used as given.
func NewOTelProvider(serviceName string, endpoint string) (*OTelProvider, error) {
	logger := GetLogger()

	if serviceName == "" {
		return nil, fmt.Errorf("service name cannot be empty")
	}

	if endpoint == "" {
		endpoint = "localhost:4318"
	}
	if endpoint == "localhost:4317" {
		endpoint = "localhost:4318"
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String("1.0.0"),
	)

	ctx := context.Background()

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter for endpoint %s: %w", endpoint, err)
	}

	metricExporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(endpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		if shutdownErr := traceExporter.Shutdown(ctx); shutdownErr != nil {
			logger.Debug("cleanup trace exporter after metric exporter failure", map[string]interface{}{"error": shutdownErr.Error()})
		}
		return nil, fmt.Errorf("create metric exporter for endpoint %s: %w", endpoint, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(30*time.Second)),
		),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	provider := &OTelProvider{
		tracer:         tp.Tracer(meterName),
		meter:          mp.Meter(meterName),
		traceProvider:  tp,
		metricProvider: mp,
		metrics:        NewMetricInstruments(meterName),
	}

	logger.Info("otel provider ready", map[string]interface{}{
		"service_name": serviceName,
		"endpoint":     endpoint,
	})

	return provider, nil
}

// StartSpan implements core.Telemetry.
func (o *OTelProvider) StartSpan(ctx context.Context, name string) (context.Context, core.Span) {
	o.mu.RLock()
	shutdown := o.shutdown
	o.mu.RUnlock()
	if shutdown || o.tracer == nil {
		return ctx, &noOpSpan{}
	}

	ctx, span := o.tracer.Start(ctx, name)
	return ctx, &otelSpan{span: span}
}

// RecordMetric implements core.Telemetry, routing a metric to the
// appropriate OTel instrument type by name heuristic:
//   - duration/latency/time -> histogram
//   - count/total/errors/success -> counter
//   - everything else -> histogram
func (o *OTelProvider) RecordMetric(name string, value float64, labels map[string]string) {
	o.mu.RLock()
	shutdown := o.shutdown
	o.mu.RUnlock()
	if shutdown || o.metrics == nil {
		return
	}

	ctx := context.Background()

	var attrs []attribute.KeyValue
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}

	switch {
	case contains(name, "duration", "latency", "time"):
		_ = o.metrics.RecordHistogram(ctx, name, value, metric.WithAttributes(attrs...))
	case contains(name, "count", "total", "errors", "success"):
		_ = o.metrics.RecordCounter(ctx, name, int64(value), metric.WithAttributes(attrs...))
	default:
		_ = o.metrics.RecordHistogram(ctx, name, value, metric.WithAttributes(attrs...))
	}
}

// contains reports whether any of substrings occurs anywhere in name
// (prefix, suffix or middle), used for heuristic metric-type detection
// (e.g. "llm_request_duration_ms", "total_retrieval_queries").
func contains(name string, substrings ...string) bool {
	for _, substr := range substrings {
		if strings.Contains(name, substr) {
			return true
		}
	}
	return false
}

// Shutdown flushes and tears down the trace and metric providers. Safe
// to call more than once; only the first call does any work.
func (o *OTelProvider) Shutdown(ctx context.Context) (shutdownErr error) {
	o.shutdownOnce.Do(func() {
		o.mu.Lock()
		o.shutdown = true
		o.mu.Unlock()
		shutdownErr = o.doShutdown(ctx)
	})
	return shutdownErr
}

func (o *OTelProvider) doShutdown(ctx context.Context) error {
	logger := GetLogger()
	var errs []error

	if err := o.metrics.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("shutdown metric instruments: %w", err))
	}

	if o.metricProvider != nil {
		if err := o.metricProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metric provider: %w", err))
		}
	}

	if o.traceProvider != nil {
		if err := o.traceProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown trace provider: %w", err))
		}
	}

	if len(errs) > 0 {
		logger.Error("otel provider shutdown completed with errors", map[string]interface{}{"errors": fmt.Sprintf("%v", errs)})
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	logger.Info("otel provider shut down", nil)
	return nil
}

// noOpSpan satisfies core.Span when the provider is shut down or absent.
type noOpSpan struct{}

func (s *noOpSpan) End()                                       {}
func (s *noOpSpan) SetAttribute(key string, value interface{}) {}
func (s *noOpSpan) RecordError(err error)                      {}

// otelSpan wraps an OpenTelemetry span to implement core.Span.
type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() {
	s.span.End()
}

func (s *otelSpan) SetAttribute(key string, value interface{}) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

func (s *otelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

// EnableTelemetry builds an OTelProvider for serviceName, falling back to
// OTEL_EXPORTER_OTLP_ENDPOINT or a local collector when endpoint is
// empty, and activates the global metrics registry so resilience's
// Counter/Gauge/Histogram calls stop being no-ops. Each of cmd/registry,
// cmd/llmgateway, cmd/retrieval, cmd/rag and cmd/orchestrator calls this
// once at startup and shuts the returned provider down on exit.
func EnableTelemetry(serviceName, endpoint string, logger core.Logger) (core.Telemetry, error) {
	if endpoint == "" {
		endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
		if endpoint == "" {
			endpoint = "localhost:4318"
		}
	}

	provider, err := NewOTelProvider(serviceName, endpoint)
	if err != nil {
		return nil, fmt.Errorf("create telemetry provider: %w", err)
	}

	if err := initializeWithProvider(Config{
		ServiceName: serviceName,
		Endpoint:    endpoint,
		CircuitBreaker: CircuitConfig{
			Enabled:     true,
			MaxFailures: 10,
		},
	}, provider); err != nil && logger != nil {
		logger.Error("telemetry registry failed to initialize, metrics will be dropped", map[string]interface{}{"error": err.Error()})
	}

	if logger != nil {
		logger.Info("telemetry enabled", map[string]interface{}{
			"endpoint": endpoint,
			"service":  serviceName,
		})
	}

	return provider, nil
}
