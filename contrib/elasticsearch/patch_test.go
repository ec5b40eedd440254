package elasticsearch

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracekit/estrace/config"
	"github.com/tracekit/estrace/ext"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/sync/errgroup"
)

func newTestController(t *testing.T, loaders ...Loader) *Controller {
	ctl, err := NewController(WithoutBuiltins(), WithVariants(loaders...))
	require.NoError(t, err)
	return ctl
}

func TestPatchIdempotent(t *testing.T) {
	ctl := newTestController(t,
		NewVariant("elasticsearch7", es7),
		NewVariant("elasticsearch8", es8),
		NewVariant("elasticsearch9", es9),
	)
	class7, err := ctl.TransportClass("elasticsearch7")
	require.NoError(t, err)
	class8, err := ctl.TransportClass("elasticsearch8")
	require.NoError(t, err)
	class9, err := ctl.TransportClass("elasticsearch9")
	require.NoError(t, err)
	assert.Same(t, class8, class9)
	assert.NotSame(t, class7, class8)

	assert.False(t, ctl.Patched("elasticsearch8"))
	assert.False(t, class8.Wrapped())

	ctl.Patch()
	ctl.Patch()
	for _, name := range []string{"elasticsearch7", "elasticsearch8", "elasticsearch9"} {
		assert.True(t, ctl.Patched(name), name)
	}
	assert.True(t, class7.Wrapped())
	assert.True(t, class8.Wrapped())
	assert.Equal(t, 2, class8.refs)

	ctl.Unpatch()
	ctl.Unpatch()
	for _, name := range []string{"elasticsearch7", "elasticsearch8", "elasticsearch9"} {
		assert.False(t, ctl.Patched(name), name)
	}
	assert.False(t, class7.Wrapped())
	assert.False(t, class8.Wrapped())
	assert.False(t, ctl.Patched("unknown"))
}

func TestPatchAttachesDisabledPin(t *testing.T) {
	ctl := newTestController(t, NewVariant("elasticsearch8", es8))
	class, err := ctl.TransportClass("elasticsearch8")
	require.NoError(t, err)
	assert.Nil(t, PinFrom(class))

	ctl.Patch()
	defer ctl.Unpatch()
	pin := PinFrom(class)
	require.NotNil(t, pin)
	assert.False(t, pin.Enabled())
}

func TestPatchKeepsClassPin(t *testing.T) {
	ctl := newTestController(t, NewVariant("elasticsearch8", es8))
	class, err := ctl.TransportClass("elasticsearch8")
	require.NoError(t, err)
	NewPin(sdktrace.NewTracerProvider()).Onto(class)

	ctl.Patch()
	defer ctl.Unpatch()
	assert.True(t, PinFrom(class).Enabled())
}

func TestPinLookup(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ok := roundTripperFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 200, Body: http.NoBody}, nil
	})
	ctl := newTestController(t, NewVariant("elasticsearch8", es8))
	ctl.Patch()
	defer ctl.Unpatch()

	class, err := ctl.TransportClass("elasticsearch8")
	require.NoError(t, err)
	NewPin(tp).Onto(class)

	send := func(tr *Transport) {
		req, err := http.NewRequest(http.MethodGet, "http://localhost:9200/", nil)
		require.NoError(t, err)
		_, err = tr.Perform(req)
		require.NoError(t, err)
	}

	// class pin applies to transports without one
	inherited, err := ctl.Transport("elasticsearch8", ok)
	require.NoError(t, err)
	send(inherited)
	assert.Len(t, recorder.Ended(), 1)

	// a disabled instance pin wins over the class pin
	muted, err := ctl.Transport("elasticsearch8", ok)
	require.NoError(t, err)
	Pin{TracerProvider: tp, Disabled: true}.Onto(muted)
	send(muted)
	assert.Len(t, recorder.Ended(), 1)

	assert.Nil(t, PinFrom(inherited))
	assert.False(t, PinFrom(muted).Enabled())
}

func TestUnpatchStopsTracing(t *testing.T) {
	f := newFixture(t, nil, `{"took":1}`)
	tr := f.transport(t, "elasticsearch8")

	f.ctl.Unpatch()
	resp, err := f.do(t, tr, http.MethodGet, "/_search", "")
	require.NoError(t, err)
	readAll(t, resp)
	assert.Empty(t, f.recorder.Ended())

	f.ctl.Patch()
	resp, err = f.do(t, tr, http.MethodGet, "/_search", "")
	require.NoError(t, err)
	readAll(t, resp)
	assert.Len(t, f.recorder.Ended(), 1)
}

func TestUnknownVariant(t *testing.T) {
	ctl := newTestController(t)
	_, err := ctl.Transport("elasticsearch8", nil)
	assert.ErrorIs(t, err, ErrUnknownVariant)
	_, err = ctl.TransportClass("elasticsearch8")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestHTTPClientSpans(t *testing.T) {
	cfg := &config.Config{Tracing: config.Tracing{HTTPClientSpans: config.True}}
	f := newFixture(t, cfg, `{"took":2}`)
	resp, err := f.do(t, f.transport(t, "elasticsearch8"), http.MethodGet, "/_search", "")
	require.NoError(t, err)
	readAll(t, resp)

	spans := f.recorder.Ended()
	require.Len(t, spans, 2)
	var query, roundTrip sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Name() == queryOperation {
			query = s
		} else {
			roundTrip = s
		}
	}
	require.NotNil(t, query)
	require.NotNil(t, roundTrip)
	assert.Equal(t, query.SpanContext().SpanID(), roundTrip.Parent().SpanID())
	assert.Equal(t, query.SpanContext().TraceID(), roundTrip.SpanContext().TraceID())

	attrs := attribute.NewSet(query.Attributes()...)
	v, ok := attrs.Value(attribute.Key(ext.ElasticsearchTook))
	require.True(t, ok)
	assert.Equal(t, 2.0, v.AsFloat64())
}

func TestConcurrentRequests(t *testing.T) {
	f := newFixture(t, nil, `{"took":1}`)
	tr := f.transport(t, "elasticsearch8")

	const n = 32
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(8)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			req, err := http.NewRequest(http.MethodPost, f.server.URL+"/idx/_search", strings.NewReader(`{"size":1}`))
			if err != nil {
				return err
			}
			resp, err := tr.Perform(req)
			if err != nil {
				return err
			}
			return resp.Body.Close()
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, f.recorder.Ended(), n)
	assert.EqualValues(t, n, f.hits.Load())
}

func TestConcurrentPatch(t *testing.T) {
	ctl := newTestController(t, NewVariant("elasticsearch8", es8), NewVariant("elasticsearch9", es9))
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			ctl.Patch()
			ctl.Unpatch()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	class, err := ctl.TransportClass("elasticsearch8")
	require.NoError(t, err)
	assert.False(t, class.Wrapped())
}
