// Package metrics holds the prometheus collectors for the string analysis
// server. All methods are safe to call on a nil *Metrics, which records
// nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/stevemurr/string-analysis-server/errors"
)

const namespace = "string_analysis"

// Metrics contains the service metrics.
type Metrics struct {
	Operations      *prometheus.CounterVec
	Stored          prometheus.Gauge
	RequestDuration *prometheus.HistogramVec
}

// New creates the collectors without registering them.
func New() *Metrics {
	return &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "operations_total",
				Help:      "Engine operations by name and outcome",
			},
			[]string{"operation", "outcome"},
		),
		Stored: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "strings",
				Help:      "Number of strings currently stored",
			},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// Register adds the collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Operations, m.Stored, m.RequestDuration} {
		if err := reg.Register(c); err != nil {
			return errors.Wrap(err, "register collector")
		}
	}
	return nil
}

// NewRegistry returns a fresh registry holding the service metrics plus the
// Go runtime and process collectors.
func NewRegistry() (*prometheus.Registry, *Metrics, error) {
	reg := prometheus.NewRegistry()
	m := New()
	if err := m.Register(reg); err != nil {
		return nil, nil, err
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, m, nil
}

// Outcome classifies err into a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.IsInvalidInput(err):
		return "invalid_input"
	case errors.IsConflict(err):
		return "conflict"
	case errors.IsNotFound(err):
		return "not_found"
	case errors.Is(err, errors.ErrNoMatches):
		return "no_matches"
	case errors.Is(err, errors.ErrUnparsableQuery):
		return "unparsable"
	default:
		return "error"
	}
}

// ObserveOperation counts one engine operation.
func (m *Metrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, Outcome(err)).Inc()
}

// SetStored records the current collection size.
func (m *Metrics) SetStored(n int) {
	if m == nil {
		return
	}
	m.Stored.Set(float64(n))
}

// AddStored moves the collection size by delta. Each successful insert or
// delete adds its own step, so concurrent writers never overwrite each other.
func (m *Metrics) AddStored(delta int) {
	if m == nil {
		return
	}
	m.Stored.Add(float64(delta))
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
