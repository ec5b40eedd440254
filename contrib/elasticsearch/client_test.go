package elasticsearch_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"runtime/debug"
	"strings"
	"testing"

	elasticsearch8 "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracekit/estrace/contrib/elasticsearch"
	"github.com/tracekit/estrace/ext"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func fakeCluster(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPut:
			io.WriteString(w, `{"acknowledged":true,"index":"my_index"}`)
		case strings.HasSuffix(r.URL.Path, "/_search"):
			io.WriteString(w, `{"took":4,"timed_out":false,"hits":{"total":{"value":0,"relation":"eq"},"hits":[]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":"not found"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientV8(t *testing.T) {
	srv := fakeCluster(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctl, err := elasticsearch.NewController(elasticsearch.WithBuildInfo(func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Deps: []*debug.Module{
			{Path: "github.com/elastic/go-elasticsearch/v8", Version: "v8.15.0"},
		}}, true
	}))
	require.NoError(t, err)
	ctl.Patch()
	defer ctl.Unpatch()

	tr, err := ctl.Transport("elasticsearch8", nil)
	require.NoError(t, err)
	elasticsearch.NewPin(tp).Onto(tr)

	es, err := elasticsearch8.NewClient(elasticsearch8.Config{
		Addresses: []string{srv.URL},
		Transport: tr,
	})
	require.NoError(t, err)

	res, err := es.Indices.Create("my_index")
	require.NoError(t, err)
	res.Body.Close()
	assert.False(t, res.IsError())

	res, err = es.Search(
		es.Search.WithIndex("my_index"),
		es.Search.WithBody(strings.NewReader(`{"query":{"match_all":{}}}`)),
		es.Search.WithSize(100),
	)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"took":4`)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	create := attrs(spans[0])
	assert.Equal(t, "PUT /my_index", create[ext.ResourceName].AsString())
	assert.Equal(t, "/my_index", create[ext.ElasticsearchURL].AsString())

	search := attrs(spans[1])
	assert.Equal(t, "POST /my_index/_search", search[ext.ResourceName].AsString())
	assert.Equal(t, "size=100", search[ext.ElasticsearchParams].AsString())
	assert.Equal(t, `{"query":{"match_all":{}}}`, search[ext.ElasticsearchBody].AsString())
	assert.Equal(t, 4.0, search[ext.ElasticsearchTook].AsFloat64())
}

func attrs(s sdktrace.ReadOnlySpan) map[string]attribute.Value {
	out := make(map[string]attribute.Value)
	for _, kv := range s.Attributes() {
		out[string(kv.Key)] = kv.Value
	}
	return out
}
