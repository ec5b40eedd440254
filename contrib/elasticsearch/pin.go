package elasticsearch

import (
	version "github.com/tracekit/estrace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Pin links a Transport, or a whole TransportClass, to the tracer its calls
// are reported to. The pin never owns the tracer provider.
type Pin struct {
	// Service overrides the configured service name.
	Service string

	// TracerProvider creates the spans. A pin without one is disabled.
	TracerProvider trace.TracerProvider

	// Disabled turns tracing off while keeping the pin attached.
	Disabled bool

	tracer trace.Tracer
}

// NewPin returns an enabled pin reporting to tp, the global provider when
// nil.
func NewPin(tp trace.TracerProvider) *Pin {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Pin{TracerProvider: tp}
}

// pinnable is implemented by the objects a pin can be attached to.
type pinnable interface {
	storePin(*Pin)
	loadPin() *Pin
}

// Onto attaches a copy of the pin to target, replacing the previous one.
func (p Pin) Onto(target pinnable) {
	if p.TracerProvider != nil {
		p.tracer = p.TracerProvider.Tracer(
			version.InstrumentationName,
			trace.WithInstrumentationVersion(version.CurrentVersionNumber),
		)
	}
	target.storePin(&p)
}

// PinFrom returns the pin attached to target, or nil.
func PinFrom(target pinnable) *Pin {
	return target.loadPin()
}

// Enabled reports whether calls through the pinned object are traced.
func (p *Pin) Enabled() bool {
	return p != nil && !p.Disabled && p.tracer != nil
}
