package elasticsearch

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/blang/semver/v4"
	"github.com/tracekit/estrace/config"
	"go.uber.org/multierr"
)

// ErrNotInstalled is returned by a Loader whose client is not linked into the
// binary.
var ErrNotInstalled = errors.New("client variant not installed")

// modernVersion is the first version with the split client and transport
// packages.
var modernVersion = semver.Version{Major: 8}

// Variant is one installed go-elasticsearch client.
type Variant interface {
	// Name is the variant name, e.g. "elasticsearch7".
	Name() string
	// Version of the client library.
	Version() semver.Version
	// TransportClass returns the class owned by the variant, or nil when
	// the variant performs through the shared transport package class.
	TransportClass() *TransportClass
	// Serializer used to render request bodies of t.
	Serializer(t *Transport) Serializer
}

// isModern reports whether v uses the 8.x+ request shape.
func isModern(v Variant) bool {
	return v.Version().GTE(modernVersion)
}

// Environment is what a Loader inspects to find its client.
type Environment struct {
	// BuildInfo of the running binary; nil when unavailable.
	BuildInfo *debug.BuildInfo
	// Config holds per variant overrides.
	Config *config.Variants
}

// Loader finds a variant in the running binary.
type Loader interface {
	Name() string
	// Load returns ErrNotInstalled when the client is absent.
	Load(env *Environment) (Variant, error)
}

type variant struct {
	name    string
	version semver.Version
	class   *TransportClass
}

func (v *variant) Name() string                    { return v.name }
func (v *variant) Version() semver.Version         { return v.version }
func (v *variant) TransportClass() *TransportClass { return v.class }

func (v *variant) Serializer(*Transport) Serializer {
	if v.version.GTE(modernVersion) {
		return UTF8Serializer{}
	}
	return TextSerializer{}
}

func (v *variant) Load(*Environment) (Variant, error) { return v, nil }

// NewVariant returns a variant that is always installed. 8.x+ variants use
// the shared transport class, older ones get a class of their own.
func NewVariant(name string, version semver.Version) interface {
	Variant
	Loader
} {
	v := &variant{name: name, version: version}
	if version.LT(modernVersion) {
		v.class = NewTransportClass(name)
	}
	return v
}

// ModuleLoader finds a go-elasticsearch module in the build info.
type ModuleLoader struct {
	VariantName string
	ModulePath  string
}

func (l ModuleLoader) Name() string { return l.VariantName }

func (l ModuleLoader) Load(env *Environment) (Variant, error) {
	if env.Config != nil {
		v, ok, err := env.Config.PinnedVersion(l.VariantName)
		if err != nil {
			return nil, err
		}
		if ok {
			return NewVariant(l.VariantName, v), nil
		}
	}
	if env.BuildInfo == nil {
		return nil, ErrNotInstalled
	}
	for _, dep := range env.BuildInfo.Deps {
		if dep.Path != l.ModulePath {
			continue
		}
		raw := dep.Version
		if dep.Replace != nil && dep.Replace.Version != "" {
			raw = dep.Replace.Version
		}
		v, err := semver.ParseTolerant(raw)
		if err != nil {
			return nil, fmt.Errorf("variant %s: module %s has unusable version %q: %w", l.VariantName, l.ModulePath, raw, err)
		}
		return NewVariant(l.VariantName, v), nil
	}
	return nil, ErrNotInstalled
}

// Builtins lists the known client variants.
var Builtins = []Loader{
	ModuleLoader{"elasticsearch", "github.com/elastic/go-elasticsearch"},
	ModuleLoader{"elasticsearch5", "github.com/elastic/go-elasticsearch/v5"},
	ModuleLoader{"elasticsearch6", "github.com/elastic/go-elasticsearch/v6"},
	ModuleLoader{"elasticsearch7", "github.com/elastic/go-elasticsearch/v7"},
	ModuleLoader{"elasticsearch8", "github.com/elastic/go-elasticsearch/v8"},
	ModuleLoader{"elasticsearch9", "github.com/elastic/go-elasticsearch/v9"},
}

var preloadVariants []Loader

// Preload adds loaders to the default set. Only call during init.
func Preload(loaders ...Loader) {
	preloadVariants = append(preloadVariants, loaders...)
}

// resolve runs every loader, skipping disabled and absent variants. Failing
// loaders are skipped and their errors returned together.
func resolve(loaders []Loader, env *Environment) ([]Variant, error) {
	seen := make(map[string]struct{}, len(loaders))
	var (
		out  []Variant
		errs error
	)
	for _, l := range loaders {
		name := l.Name()
		if _, dup := seen[name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("variant %s: already loaded", name))
			continue
		}
		seen[name] = struct{}{}

		if env.Config != nil && env.Config.IsDisabled(name) {
			log.Infof("not loading disabled variant %s", name)
			continue
		}
		v, err := l.Load(env)
		switch {
		case errors.Is(err, ErrNotInstalled):
			log.Debugf("variant %s not installed", name)
			continue
		case err != nil:
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, v)
	}
	return out, errs
}
