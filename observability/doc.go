// Package observability wires OpenTelemetry tracing and metrics for the
// dictation service. Both exporters speak OTLP over HTTP and are optional:
// when no endpoint is configured the service runs with the no-op global
// providers and the rest of the code does not need to care.
package observability
