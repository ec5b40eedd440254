package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Flag represents a ternary value: false (-1), default (0), or true (+1).
//
// When encoded in json, False is "false", Default is "null" (or empty), and True
// is "true".
type Flag int8

const (
	False   Flag = -1
	Default Flag = 0
	True    Flag = 1
)

// WithDefault resolves the value of the flag given the provided default value.
//
// Panics if Flag is an invalid value.
func (f Flag) WithDefault(defaultValue bool) bool {
	switch f {
	case False:
		return false
	case Default:
		return defaultValue
	case True:
		return true
	default:
		panic(fmt.Sprintf("invalid flag value %d", f))
	}
}

func (f Flag) MarshalJSON() ([]byte, error) {
	switch f {
	case Default:
		return json.Marshal(nil)
	case True:
		return json.Marshal(true)
	case False:
		return json.Marshal(false)
	default:
		return nil, fmt.Errorf("invalid flag value: %d", f)
	}
}

func (f *Flag) UnmarshalJSON(input []byte) error {
	switch string(input) {
	case "null", "undefined":
		*f = Default
	case "false":
		*f = False
	case "true":
		*f = True
	default:
		return fmt.Errorf("failed to unmarshal %q into a flag: must be null/undefined, true, or false", string(input))
	}
	return nil
}

func (f Flag) String() string {
	switch f {
	case Default:
		return "default"
	case True:
		return "true"
	case False:
		return "false"
	default:
		return fmt.Sprintf("<invalid flag value %d>", f)
	}
}

// ParseFlag reads a flag from its textual form, as found in environment
// variables. The empty string and "default" yield Default.
func ParseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return Default, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return Default, fmt.Errorf("invalid flag %q: %w", s, err)
	}
	if b {
		return True, nil
	}
	return False, nil
}

var (
	_ json.Unmarshaler = (*Flag)(nil)
	_ json.Marshaler   = (*Flag)(nil)
)

// OptionalString represents a string that has a default value
//
// When encoded in json, Default is encoded as "null".
type OptionalString struct {
	value *string
}

// NewOptionalString returns an OptionalString from a string.
func NewOptionalString(s string) *OptionalString {
	return &OptionalString{value: &s}
}

// WithDefault resolves the string with the given default.
func (p *OptionalString) WithDefault(defaultValue string) (value string) {
	if p == nil || p.value == nil {
		return defaultValue
	}
	return *p.value
}

// IsDefault returns if this is a default optional string.
func (p *OptionalString) IsDefault() bool {
	return p == nil || p.value == nil
}

func (p OptionalString) MarshalJSON() ([]byte, error) {
	if p.value != nil {
		return json.Marshal(p.value)
	}
	return json.Marshal(nil)
}

func (p *OptionalString) UnmarshalJSON(input []byte) error {
	switch string(input) {
	case "null", "undefined":
		*p = OptionalString{}
	default:
		var value string
		err := json.Unmarshal(input, &value)
		if err != nil {
			return err
		}
		*p = OptionalString{value: &value}
	}
	return nil
}

func (p OptionalString) String() string {
	if p.value == nil {
		return "default"
	}
	return *p.value
}

var (
	_ json.Unmarshaler = (*OptionalString)(nil)
	_ json.Marshaler   = (*OptionalString)(nil)
)

// OptionalFloat represents a float that has a default value
//
// When encoded in json, Default is encoded as "null".
type OptionalFloat struct {
	value *float64
}

// NewOptionalFloat returns an OptionalFloat from a float64.
func NewOptionalFloat(f float64) *OptionalFloat {
	return &OptionalFloat{value: &f}
}

// WithDefault resolves the float with the given default.
func (p *OptionalFloat) WithDefault(defaultValue float64) (value float64) {
	if p == nil || p.value == nil {
		return defaultValue
	}
	return *p.value
}

// IsDefault returns if this is a default optional float.
func (p *OptionalFloat) IsDefault() bool {
	return p == nil || p.value == nil
}

func (p OptionalFloat) MarshalJSON() ([]byte, error) {
	if p.value != nil {
		return json.Marshal(p.value)
	}
	return json.Marshal(nil)
}

func (p *OptionalFloat) UnmarshalJSON(input []byte) error {
	switch string(input) {
	case "null", "undefined", "\"null\"", "\"\"", "\"default\"":
		*p = OptionalFloat{}
	default:
		var value float64
		err := json.Unmarshal(input, &value)
		if err != nil {
			return err
		}
		*p = OptionalFloat{value: &value}
	}
	return nil
}

func (p OptionalFloat) String() string {
	if p.value == nil {
		return "default"
	}
	return strconv.FormatFloat(*p.value, 'g', -1, 64)
}

var (
	_ json.Unmarshaler = (*OptionalFloat)(nil)
	_ json.Marshaler   = (*OptionalFloat)(nil)
)
