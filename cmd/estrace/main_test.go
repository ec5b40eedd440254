package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	version "github.com/tracekit/estrace"
	"github.com/tracekit/estrace/config"
	"github.com/tracekit/estrace/config/serialize"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvDir, t.TempDir())
	t.Setenv("OTEL_TRACES_EXPORTER", "none")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRequest(t *testing.T) {
	var (
		mu     sync.Mutex
		ids    []string
		agents []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get(opaqueIDHeader))
		agents = append(agents, r.Header.Get("User-Agent"))
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"took":3,"hits":{"hits":[]}}`)
	}))
	defer srv.Close()

	out, err := execute(t, "request", "get", "/idx/_search?size=1",
		"--addr", srv.URL,
		"--body", `{"query":{"match_all":{}}}`,
		"--repeat", "3",
		"--concurrency", "2",
		"--print-metrics",
	)
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(out, "200 OK "))
	assert.Contains(t, out, `estrace_elasticsearch_requests_total{method="GET",outcome="ok",variant="elasticsearch8"} 3`)

	require.Len(t, ids, 3)
	seen := make(map[string]bool)
	for _, id := range ids {
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		seen[id] = true
	}
	assert.Len(t, seen, 3)
	for _, ua := range agents {
		assert.True(t, strings.HasPrefix(ua, "estrace/"+version.CurrentVersionNumber), ua)
	}
}

func TestRequestSinglePrintsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		io.WriteString(w, `{"acknowledged":true}`)
	}))
	defer srv.Close()

	out, err := execute(t, "request", "PUT", "/idx", "--addr", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `{"acknowledged":true}`)
}

func TestRequestInvalidFlags(t *testing.T) {
	_, err := execute(t, "request", "GET", "/", "--repeat", "0")
	require.Error(t, err)
}

func TestConfigInitShow(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config")

	out, err := execute(t, "config", "init", "--config", file)
	require.NoError(t, err)
	assert.Contains(t, out, file)

	cfg, err := serialize.Load(file)
	require.NoError(t, err)
	assert.Equal(t, "elasticsearch", cfg.Elasticsearch.ServiceName())

	_, err = execute(t, "config", "init", "--config", file)
	require.Error(t, err)
	_, err = execute(t, "config", "init", "--config", file, "--force")
	require.NoError(t, err)

	t.Setenv(config.EnvService, "search")
	out, err = execute(t, "config", "show", "--config", file)
	require.NoError(t, err)
	assert.Contains(t, out, `"Service": "search"`)
}

func TestVariants(t *testing.T) {
	out, err := execute(t, "variants")
	require.NoError(t, err)
	for _, name := range []string{"elasticsearch5", "elasticsearch6", "elasticsearch7", "elasticsearch8", "elasticsearch9"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "github.com/elastic/go-elasticsearch/v8")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "estrace version: ")
	assert.Contains(t, out, "Golang version: ")
}
