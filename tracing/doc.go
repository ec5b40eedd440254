// Package tracing contains the tracer setup for estrace, including configuring the exporters and
// helping keep consistent naming conventions across the stack.
//
// The elasticsearch instrumentation itself only needs a TracerProvider; it uses the global one
// unless a Pin carries its own. This package builds that provider for hosts, and for the estrace
// command, from environment variables, as consistent with the OpenTelemetry spec as possible:
//
// https://github.com/open-telemetry/opentelemetry-specification/blob/main/specification/sdk-environment-variables.md
//
//   - OTEL_TRACES_EXPORTER: a comma-separated list of exporters
//   - otlp
//   - zipkin
//   - file
//   - none
//
// Different exporters have their own set of environment variables, depending on the exporter. These are typically
// standard environment variables. Some common ones:
//
// OTLP HTTP/gRPC:
//
//   - OTEL_EXPORTER_OTLP_PROTOCOL
//   - one of [grpc, http/protobuf]
//   - default: http/protobuf
//   - OTEL_EXPORTER_OTLP_ENDPOINT
//   - OTEL_EXPORTER_OTLP_CERTIFICATE
//   - OTEL_EXPORTER_OTLP_HEADERS
//   - OTEL_EXPORTER_OTLP_COMPRESSION
//   - OTEL_EXPORTER_OTLP_TIMEOUT
//
// Zipkin:
//
//   - OTEL_EXPORTER_ZIPKIN_ENDPOINT
//
// File:
//
//   - OTEL_EXPORTER_FILE_PATH
//   - file path to write JSON traces
//   - default: `$PWD/traces.json`
//
// Propagators are read from OTEL_PROPAGATORS (default: tracecontext,baggage).
//
// For example, to look at the spans of a single request without a collector:
//
//	OTEL_TRACES_EXPORTER=file estrace request GET /_cluster/health
//
// # Implementer Notes
//
// Span names follow a convention of <Component>.<Span>, some examples:
//
//   - component=estrace + span=Request -> estrace.Request
//   - component=Controller + span=Patch -> Controller.Patch
//
// The instrumented client calls are the exception: they are named after the operation kind
// (elasticsearch.query), which is what backends group on.
//
// We follow the OpenTelemetry convention of using whatever TracerProvider is registered globally.
package tracing
