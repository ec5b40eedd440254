package config

// Tracing configures how the instrumentation is wired to the tracer.
//
// Exporters themselves are configured through the standard OTEL_* environment
// variables, see the tracing package.
type Tracing struct {
	// HTTPClientSpans adds a child span per HTTP round trip below the
	// elasticsearch.query span, and propagates the trace context to the
	// cluster.
	HTTPClientSpans Flag `json:",omitempty"`
}

const DefaultHTTPClientSpans = false
