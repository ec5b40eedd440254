package elasticsearch

import (
	"net/http"
	"sync"
	"sync/atomic"
)

// Performer is the request entry point of a go-elasticsearch transport.
type Performer interface {
	Perform(*http.Request) (*http.Response, error)
}

// PerformFunc is the request-performing method of a TransportClass.
type PerformFunc func(t *Transport, req *http.Request) (*http.Response, error)

// roundTrip hands the request to the transport's underlying RoundTripper.
func roundTrip(t *Transport, req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req)
}

// TransportClass holds the method every Transport of a variant performs its
// requests through. Patching swaps the method; transports only call it.
type TransportClass struct {
	name     string
	original PerformFunc
	method   atomic.Pointer[PerformFunc]
	pin      atomic.Pointer[Pin]

	mu   sync.Mutex
	refs int
}

// NewTransportClass returns an unpatched class dispatching straight to the
// underlying RoundTripper of each transport.
func NewTransportClass(name string) *TransportClass {
	c := &TransportClass{name: name, original: roundTrip}
	fn := c.original
	c.method.Store(&fn)
	return c
}

// Name of the class.
func (c *TransportClass) Name() string { return c.name }

// Wrapped reports whether the class method is currently intercepted.
func (c *TransportClass) Wrapped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refs > 0
}

// wrap installs the method built by wrapper on the first call. Classes shared
// by several variants count their wrappers so the method is wrapped once.
func (c *TransportClass) wrap(wrapper func(PerformFunc) PerformFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refs++
	if c.refs > 1 {
		return
	}
	fn := wrapper(c.original)
	c.method.Store(&fn)
}

// unwrap restores the original method once the last wrapper is gone.
func (c *TransportClass) unwrap() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refs == 0 {
		return
	}
	c.refs--
	if c.refs > 0 {
		return
	}
	fn := c.original
	c.method.Store(&fn)
}

func (c *TransportClass) perform(t *Transport, req *http.Request) (*http.Response, error) {
	return (*c.method.Load())(t, req)
}

func (c *TransportClass) storePin(p *Pin) { c.pin.Store(p) }
func (c *TransportClass) loadPin() *Pin   { return c.pin.Load() }

// Transport is a transport handle of one variant. It satisfies both
// http.RoundTripper and the go-elasticsearch Performer interface.
type Transport struct {
	variant Variant
	class   *TransportClass
	base    http.RoundTripper
	pin     atomic.Pointer[Pin]
}

var (
	_ http.RoundTripper = (*Transport)(nil)
	_ Performer         = (*Transport)(nil)
)

func newTransport(v Variant, class *TransportClass, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{variant: v, class: class, base: base}
}

// Variant the transport belongs to.
func (t *Transport) Variant() Variant { return t.variant }

// Class returns the class the transport performs through.
func (t *Transport) Class() *TransportClass { return t.class }

// Perform sends the request through the class method.
func (t *Transport) Perform(req *http.Request) (*http.Response, error) {
	return t.class.perform(t, req)
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.Perform(req)
}

func (t *Transport) storePin(p *Pin) { t.pin.Store(p) }
func (t *Transport) loadPin() *Pin   { return t.pin.Load() }

// pinned returns the instance pin, falling back to the class pin.
func (t *Transport) pinned() *Pin {
	if p := t.pin.Load(); p != nil {
		return p
	}
	return t.class.pin.Load()
}
