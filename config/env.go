package config

import (
	"fmt"
	"os"
	"strconv"

	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/multierr"
)

var log = logging.Logger("estrace/config")

const (
	EnvService             = "ESTRACE_SERVICE"
	EnvServiceMapping      = "ESTRACE_SERVICE_MAPPING"
	EnvTraceQueryString    = "ESTRACE_TRACE_QUERY_STRING"
	EnvAnalyticsEnabled    = "ESTRACE_ANALYTICS_ENABLED"
	EnvAnalyticsSampleRate = "ESTRACE_ANALYTICS_SAMPLE_RATE"
)

// ApplyEnv overrides config values with the ESTRACE_* environment variables.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	es := &c.Elasticsearch
	var err error

	if v, ok := lookup(EnvService); ok && v != "" {
		log.Debugf("%s overrides the service name with %q", EnvService, v)
		es.Service = NewOptionalString(v)
	}
	if v, ok := lookup(EnvServiceMapping); ok {
		mapping, perr := ParseServiceMapping(v)
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", EnvServiceMapping, perr))
		} else if len(mapping) > 0 {
			if es.ServiceMapping == nil {
				es.ServiceMapping = make(map[string]string, len(mapping))
			}
			for from, to := range mapping {
				es.ServiceMapping[from] = to
			}
		}
	}
	if v, ok := lookup(EnvTraceQueryString); ok {
		f, perr := ParseFlag(v)
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", EnvTraceQueryString, perr))
		} else {
			es.TraceQueryString = f
		}
	}
	if v, ok := lookup(EnvAnalyticsEnabled); ok {
		f, perr := ParseFlag(v)
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", EnvAnalyticsEnabled, perr))
		} else {
			es.AnalyticsEnabled = f
		}
	}
	if v, ok := lookup(EnvAnalyticsSampleRate); ok && v != "" {
		rate, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", EnvAnalyticsSampleRate, perr))
		} else {
			es.AnalyticsSampleRate = NewOptionalFloat(rate)
		}
	}
	return err
}
