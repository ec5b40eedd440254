package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	version "github.com/tracekit/estrace"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewTracerProviderNoExporter(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "")

	tp, err := NewTracerProvider(context.Background())
	require.NoError(t, err)
	require.IsType(t, &noopShutdownTracerProvider{}, tp)
	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProviderUnknownExporter(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "stdout")

	_, err := NewTracerProvider(context.Background())
	require.ErrorContains(t, err, "unknown or unsupported exporter")
}

func TestNewTracerProviderUnknownProtocol(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "otlp")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")

	_, err := NewTracerProvider(context.Background())
	require.ErrorContains(t, err, "carrier-pigeon")
}

func TestFileExporter(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "traces.json")
	t.Setenv("OTEL_TRACES_EXPORTER", "file")
	t.Setenv("OTEL_EXPORTER_FILE_PATH", filePath)

	ctx := context.Background()
	tp, err := NewTracerProvider(ctx)
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(ctx, "Test.Span")
	span.End()
	require.NoError(t, tp.Shutdown(ctx))

	b, err := os.ReadFile(filePath)
	require.NoError(t, err)
	require.Contains(t, string(b), "Test.Span")
	require.Contains(t, string(b), "estrace")
}

func TestSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	saved := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(saved) })

	ctx, parent := Span(context.Background(), "estrace", "request")
	_, child := Span(ctx, "estrace", "child")
	child.End()
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, "estrace.child", spans[0].Name())
	require.Equal(t, "estrace.request", spans[1].Name())
	require.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	require.Equal(t, version.InstrumentationName, spans[1].InstrumentationScope().Name)
}
