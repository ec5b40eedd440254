package config

import (
	"fmt"

	"github.com/blang/semver/v4"
	"go.uber.org/multierr"
)

// Variants holds overrides for the known client library variants, keyed by
// variant name (e.g. "elasticsearch8").
type Variants struct {
	Variants map[string]Variant `json:",omitempty"`
}

type Variant struct {
	// Disabled skips the variant during resolution.
	Disabled bool

	// Version pins the variant version instead of reading it from the build
	// information. Useful for vendored or replaced clients.
	Version *OptionalString `json:",omitempty"`
}

// IsDisabled reports whether the named variant was turned off.
func (v *Variants) IsDisabled(name string) bool {
	return v.Variants[name].Disabled
}

// PinnedVersion returns the configured version of the named variant, if any.
func (v *Variants) PinnedVersion(name string) (semver.Version, bool, error) {
	vc, ok := v.Variants[name]
	if !ok || vc.Version.IsDefault() {
		return semver.Version{}, false, nil
	}
	ver, err := semver.ParseTolerant(vc.Version.WithDefault(""))
	if err != nil {
		return semver.Version{}, false, fmt.Errorf("Variants.%s.Version: %w", name, err)
	}
	return ver, true, nil
}

func (v *Variants) validate() error {
	var err error
	for name := range v.Variants {
		_, _, verr := v.PinnedVersion(name)
		err = multierr.Append(err, verr)
	}
	return err
}
