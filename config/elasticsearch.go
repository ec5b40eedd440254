package config

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

const (
	// DefaultElasticsearchService is the service name spans are reported
	// under when nothing else is configured.
	DefaultElasticsearchService = "elasticsearch"
	// DefaultAnalyticsSampleRate is used when analytics is enabled without a
	// rate.
	DefaultAnalyticsSampleRate = 1.0
	// DefaultTraceQueryString controls the copy of the encoded parameters
	// onto the generic http query string tag.
	DefaultTraceQueryString = false
	// DefaultAnalyticsEnabled leaves the analytics rate off spans.
	DefaultAnalyticsEnabled = false
	// DefaultSoftFailBody makes body serialization failures abort the call.
	DefaultSoftFailBody = false
)

// Elasticsearch holds the per-integration settings of the elasticsearch
// instrumentation.
type Elasticsearch struct {
	// Service overrides the service name of every span.
	Service *OptionalString `json:",omitempty"`

	// ServiceMapping renames services, keyed by the name that would
	// otherwise be used (e.g. {"elasticsearch": "search-prod"}).
	ServiceMapping map[string]string `json:",omitempty"`

	// TraceQueryString duplicates the encoded request parameters onto the
	// http.query.string tag.
	TraceQueryString Flag `json:",omitempty"`

	AnalyticsEnabled    Flag           `json:",omitempty"`
	AnalyticsSampleRate *OptionalFloat `json:",omitempty"`

	// SoftFailBody logs and skips the body tag when the request body cannot
	// be serialized, instead of failing the request.
	SoftFailBody Flag `json:",omitempty"`
}

// ServiceName resolves the service spans are tagged with.
func (e *Elasticsearch) ServiceName() string {
	name := e.Service.WithDefault(DefaultElasticsearchService)
	if mapped, ok := e.ServiceMapping[name]; ok && mapped != "" {
		return mapped
	}
	return name
}

// AnalyticsRate returns the analytics rate to set on spans, and false
// when analytics is disabled.
func (e *Elasticsearch) AnalyticsRate() (float64, bool) {
	if !e.AnalyticsEnabled.WithDefault(DefaultAnalyticsEnabled) {
		return 0, false
	}
	return e.AnalyticsSampleRate.WithDefault(DefaultAnalyticsSampleRate), true
}

func (e *Elasticsearch) validate() error {
	var err error
	if e.Service != nil && !e.Service.IsDefault() && strings.TrimSpace(e.Service.WithDefault("")) == "" {
		err = multierr.Append(err, fmt.Errorf("Elasticsearch.Service: must not be empty"))
	}
	for from, to := range e.ServiceMapping {
		if from == "" || to == "" {
			err = multierr.Append(err, fmt.Errorf("Elasticsearch.ServiceMapping: invalid entry %q -> %q", from, to))
		}
	}
	if rate := e.AnalyticsSampleRate.WithDefault(DefaultAnalyticsSampleRate); rate < 0 || rate > 1 {
		err = multierr.Append(err, fmt.Errorf("Elasticsearch.AnalyticsSampleRate: %v is outside [0, 1]", rate))
	}
	return err
}

// ParseServiceMapping reads a comma separated list of from:to pairs.
func ParseServiceMapping(s string) (map[string]string, error) {
	mapping := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		from, to, ok := strings.Cut(pair, ":")
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("invalid service mapping %q: expected from:to", pair)
		}
		mapping[from] = to
	}
	return mapping, nil
}
