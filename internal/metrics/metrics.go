// Package metrics defines the Prometheus collectors for visit store activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	operations      *prometheus.CounterVec
	persistDuration prometheus.Histogram
	visits          *prometheus.GaugeVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cv",
			Name:      "store_operations_total",
			Help:      "Visit store operations by operation and result.",
		}, []string{"op", "result"}),
		persistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cv",
			Name:      "store_persist_seconds",
			Help:      "Time spent rewriting the visit collection.",
			Buckets:   prometheus.DefBuckets,
		}),
		visits: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cv",
			Name:      "visits",
			Help:      "Visit records held by the store, by status.",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		m.operations,
		m.persistDuration,
		m.visits,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOp counts one store operation. err == nil counts as "ok".
func (m *Metrics) ObserveOp(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
}

// ObservePersist records how long a collection rewrite took.
func (m *Metrics) ObservePersist(d time.Duration) {
	if m == nil {
		return
	}
	m.persistDuration.Observe(d.Seconds())
}

// SetCounts publishes the current number of visits per status.
func (m *Metrics) SetCounts(counts map[string]int) {
	if m == nil {
		return
	}
	for status, n := range counts {
		m.visits.WithLabelValues(status).Set(float64(n))
	}
}
