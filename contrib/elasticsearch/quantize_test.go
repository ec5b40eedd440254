package elasticsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantizePath(t *testing.T) {
	testCases := map[string]string{
		"/ddtrace_index":               "/ddtrace_index",
		"/ddtrace_index/_doc/10":       "/ddtrace_index/_doc/?",
		"/ddtrace_index/_doc/10/":      "/ddtrace_index/_doc/?/",
		"/idx/_doc/1?refresh":          "/idx/_doc/??refresh",
		"/logs-2024.01.15/_search":     "/logs-?.?.?/_search",
		"/my_index/_doc/abc123":        "/my_index/_doc/abc?",
		"/index_7/_doc/7":              "/index_7/_doc/?",
		"/":                            "/",
		"":                             "",
		"/ddtrace_index/_doc/12/_show": "/ddtrace_index/_doc/?/_show",
	}
	for in, want := range testCases {
		assert.Equal(t, want, quantizePath(in), in)
	}
}
