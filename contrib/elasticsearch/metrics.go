package elasticsearch

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "estrace"

// metrics counts traced calls per variant. A nil *metrics records nothing.
type metrics struct {
	requests *prometheus.CounterVec
	took     *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}
	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "elasticsearch",
		Name:      "requests_total",
		Help:      "Traced elasticsearch requests by variant, method and outcome.",
	}, []string{"variant", "method", "outcome"}))
	if err != nil {
		return nil, err
	}
	took, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "elasticsearch",
		Name:      "took_milliseconds",
		Help:      "Server side duration reported in elasticsearch results.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"variant"}))
	if err != nil {
		return nil, err
	}
	return &metrics{requests: requests, took: took}, nil
}

// register registers c, reusing the collector already registered under the
// same descriptor.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) request(variant, method string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(variant, method, outcome).Inc()
}

func (m *metrics) observeTook(variant string, took int64) {
	if m == nil {
		return
	}
	m.took.WithLabelValues(variant).Observe(float64(took))
}
