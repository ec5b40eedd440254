package elasticsearch

import (
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tracekit/estrace/config"
)

type settings struct {
	config    *config.Config
	loaders   []Loader
	builtins  bool
	buildInfo func() (*debug.BuildInfo, bool)
	registry  prometheus.Registerer
}

// Option configures a Controller.
type Option func(*settings) error

func newSettings(opts []Option) (*settings, error) {
	s := &settings{
		builtins:  true,
		buildInfo: debug.ReadBuildInfo,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.config == nil {
		s.config = new(config.Config)
	}
	return s, nil
}

// WithConfig sets the integration settings. The config is validated.
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		s.config = cfg
		return nil
	}
}

// WithVariants adds loaders after the builtin ones.
func WithVariants(loaders ...Loader) Option {
	return func(s *settings) error {
		s.loaders = append(s.loaders, loaders...)
		return nil
	}
}

// WithoutBuiltins skips the builtin go-elasticsearch loaders.
func WithoutBuiltins() Option {
	return func(s *settings) error {
		s.builtins = false
		return nil
	}
}

// WithBuildInfo replaces the build information the builtin loaders read.
func WithBuildInfo(fn func() (*debug.BuildInfo, bool)) Option {
	return func(s *settings) error {
		s.buildInfo = fn
		return nil
	}
}

// WithMetrics registers the request metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *settings) error {
		s.registry = reg
		return nil
	}
}
