/*
Package telemetry provides the metrics and tracing plumbing shared by the
five reai-platform components (registry, LLM gateway, retrieval gateway,
RAG pipeline, orchestrator). It is deliberately small: only the surface
resilience and cmd/* actually call.

Layers:

 1. Simple API (Counter, Gauge, Histogram) - what resilience's circuit
    breaker and retry instrumentation emit through.
 2. Registry - a global, lock-free-read holder for the active metrics
    backend, fed by module metric declarations collected at init() time
    (see resilience/instrumentation.go).
 3. OTelProvider - the OpenTelemetry binding each cmd/* entrypoint builds
    via EnableTelemetry and shuts down after its component has stopped.

The registry is activated once, when EnableTelemetry calls
initializeWithProvider after the OTel exporters are up; everything
emitted before that point is silently dropped rather than blocking
startup.
*/
package telemetry
