package elasticsearch

import (
	"regexp"

	"github.com/tracekit/estrace/ext"
)

var (
	// document ids: a whole numeric path segment.
	idPattern = regexp.MustCompile(`/([0-9]+)([/\?]|$)`)
	// dated or numbered index names.
	indexPattern = regexp.MustCompile(`[0-9]{2,}`)
)

const (
	idPlaceholder    = "/?${2}"
	indexPlaceholder = "?"
)

// quantizePath replaces the numeric parts of path with placeholders.
func quantizePath(path string) string {
	path = idPattern.ReplaceAllString(path, idPlaceholder)
	return indexPattern.ReplaceAllString(path, indexPlaceholder)
}

// quantize sets the span resource to the method and the quantized path.
func quantize(s *span) *span {
	s.SetResource(s.Tag(ext.ElasticsearchMethod) + " " + quantizePath(s.Tag(ext.ElasticsearchURL)))
	return s
}
