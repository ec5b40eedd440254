package elasticsearch

import (
	"context"

	"github.com/tracekit/estrace/ext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// span is the narrow view of a tracer span the interceptor works with: string
// tags, numeric metrics, an error flag, a sampling decision and a resource.
type span struct {
	otel     trace.Span
	tags     map[string]string
	resource string
}

func startSpan(ctx context.Context, tracer trace.Tracer, name, service, spanType string) (context.Context, *span) {
	ctx, s := tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(ext.ServiceName, service),
			attribute.String(ext.SpanType, spanType),
		),
	)
	return ctx, &span{otel: s, tags: make(map[string]string, 8)}
}

func (s *span) SetTag(key, value string) {
	s.tags[key] = value
	s.otel.SetAttributes(attribute.String(key, value))
}

func (s *span) Tag(key string) string {
	return s.tags[key]
}

func (s *span) SetMetric(key string, value float64) {
	s.otel.SetAttributes(attribute.Float64(key, value))
}

func (s *span) SetError(err error) {
	s.otel.RecordError(err)
	s.otel.SetStatus(codes.Error, err.Error())
}

func (s *span) Sampled() bool {
	return s.otel.SpanContext().IsSampled()
}

func (s *span) SetResource(resource string) {
	s.resource = resource
	s.otel.SetAttributes(attribute.String(ext.ResourceName, resource))
}

func (s *span) Finish() {
	s.otel.End()
}
