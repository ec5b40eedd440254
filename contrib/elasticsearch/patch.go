package elasticsearch

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/tracekit/estrace/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var log = logging.Logger("estrace/elasticsearch")

// ErrUnknownVariant is returned for variants that were not resolved.
var ErrUnknownVariant = errors.New("unknown client variant")

// Controller installs and removes the tracing interceptor on the transport
// classes of the resolved variants.
type Controller struct {
	cfg     *config.Config
	metrics *metrics

	variants  []Variant
	companion *TransportClass

	mu      sync.Mutex
	patched map[string]bool
}

// NewController resolves the installed variants. Variants that fail to load
// are skipped and reported in the returned error next to a usable
// controller.
func NewController(opts ...Option) (*Controller, error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	m, err := newMetrics(s.registry)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	env := &Environment{Config: &s.config.Variants}
	if info, ok := s.buildInfo(); ok {
		env.BuildInfo = info
	}
	var loaders []Loader
	if s.builtins {
		loaders = append(loaders, Builtins...)
	}
	loaders = append(loaders, s.loaders...)
	variants, err := resolve(loaders, env)

	return &Controller{
		cfg:       s.config,
		metrics:   m,
		variants:  variants,
		companion: NewTransportClass("elastic-transport-go"),
		patched:   make(map[string]bool, len(variants)),
	}, err
}

// Variants returns the resolved variants.
func (c *Controller) Variants() []Variant {
	return append([]Variant(nil), c.variants...)
}

func (c *Controller) variant(name string) (Variant, error) {
	for _, v := range c.variants {
		if v.Name() == name {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, name)
}

// classOf returns the class v performs through.
func (c *Controller) classOf(v Variant) *TransportClass {
	if class := v.TransportClass(); class != nil {
		return class
	}
	return c.companion
}

// TransportClass returns the class of the named variant.
func (c *Controller) TransportClass(name string) (*TransportClass, error) {
	v, err := c.variant(name)
	if err != nil {
		return nil, err
	}
	return c.classOf(v), nil
}

// Transport returns a handle of the named variant sending requests through
// base, http.DefaultTransport when nil.
func (c *Controller) Transport(name string, base http.RoundTripper) (*Transport, error) {
	v, err := c.variant(name)
	if err != nil {
		return nil, err
	}
	if c.cfg.Tracing.HTTPClientSpans.WithDefault(config.DefaultHTTPClientSpans) {
		if base == nil {
			base = http.DefaultTransport
		}
		base = otelhttp.NewTransport(base)
	}
	return newTransport(v, c.classOf(v), base), nil
}

// Patch intercepts the request method of every resolved variant. Variants
// already patched are left alone.
func (c *Controller) Patch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.variants {
		if c.patched[v.Name()] {
			continue
		}
		class := c.classOf(v)
		class.wrap(c.intercept)
		if class.loadPin() == nil {
			(Pin{}).Onto(class)
		}
		c.patched[v.Name()] = true
		log.Infof("patched %s %s", v.Name(), v.Version())
	}
}

// Unpatch restores the request method of every patched variant.
func (c *Controller) Unpatch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.variants {
		if !c.patched[v.Name()] {
			continue
		}
		c.classOf(v).unwrap()
		c.patched[v.Name()] = false
		log.Infof("unpatched %s", v.Name())
	}
}

// Patched reports whether the named variant is patched.
func (c *Controller) Patched(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.patched[name]
}

var (
	defaultOnce       sync.Once
	defaultController *Controller
)

// Default returns the controller used by the package level functions. It
// resolves the builtin and preloaded variants, configured from the ESTRACE_*
// environment variables.
func Default() *Controller {
	defaultOnce.Do(func() {
		cfg := new(config.Config)
		if err := cfg.ApplyEnv(); err != nil {
			log.Warnf("ignoring invalid environment: %s", err)
			cfg = new(config.Config)
		}
		ctl, err := NewController(WithConfig(cfg), WithVariants(preloadVariants...))
		if err != nil {
			log.Warnf("resolving client variants: %s", err)
		}
		if ctl == nil {
			ctl, _ = NewController(WithVariants(preloadVariants...))
		}
		defaultController = ctl
	})
	return defaultController
}

// Patch patches the default controller.
func Patch() { Default().Patch() }

// Unpatch unpatches the default controller.
func Unpatch() { Default().Unpatch() }

// Patched reports whether the named variant of the default controller is
// patched.
func Patched(name string) bool { return Default().Patched(name) }

// WrapRoundTripper returns a transport of the named variant of the default
// controller, sending requests through rt.
func WrapRoundTripper(name string, rt http.RoundTripper) (*Transport, error) {
	return Default().Transport(name, rt)
}
