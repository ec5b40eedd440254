// Package ext holds the span names, span types and tag keys shared by the
// estrace integrations.
package ext

const (
	// ServiceName is the tag holding the service a span is reported under.
	ServiceName = "service.name"
	// SpanType is the tag holding the category of a span.
	SpanType = "span.type"
	// ResourceName is the tag holding the normalized resource of a span.
	ResourceName = "resource.name"

	// Measured marks a span as eligible for the default metrics aggregation.
	Measured = "_dd.measured"
	// AnalyticsSampleRate weights a span for analytics sampling.
	AnalyticsSampleRate = "_dd1.sr.eausr"

	HTTPStatusCode  = "http.status_code"
	HTTPQueryString = "http.query.string"
)

// Span types.
const (
	SpanTypeElasticsearch = "elasticsearch"
)

// Elasticsearch tags.
const (
	ElasticsearchMethod = "elasticsearch.method"
	ElasticsearchURL    = "elasticsearch.url"
	ElasticsearchParams = "elasticsearch.params"
	ElasticsearchBody   = "elasticsearch.body"
	ElasticsearchTook   = "elasticsearch.took"
)
