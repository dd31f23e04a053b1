// Package metrics exposes Prometheus instrumentation for vector backends and search.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kensaku"

// Operation outcome label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	operations      *prometheus.CounterVec   // by backend, operation, status
	operationTime   *prometheus.HistogramVec // by backend, operation
	selectedBackend *prometheus.GaugeVec     // 1 for the active backend
	searchResults   prometheus.Histogram
}

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "operations_total",
			Help:      "Total number of vector backend operations",
		}, []string{"backend", "operation", "status"}),

		operationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "operation_duration_seconds",
			Help:      "Vector backend operation duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"backend", "operation"}),

		selectedBackend: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "selected",
			Help:      "Set to 1 for the vector backend chosen at startup",
		}, []string{"backend"}),

		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.operations, m.operationTime, m.selectedBackend, m.searchResults} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}
	return nil
}

// SetSelected marks backendType as the active backend.
func (m *Metrics) SetSelected(backendType string) {
	if m == nil {
		return
	}
	m.selectedBackend.Reset()
	m.selectedBackend.WithLabelValues(backendType).Set(1)
}

// ObserveSearch records the size of one search result set.
func (m *Metrics) ObserveSearch(results int) {
	if m == nil {
		return
	}
	m.searchResults.Observe(float64(results))
}

func (m *Metrics) observe(backend, op string, start time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.operations.WithLabelValues(backend, op, status).Inc()
	m.operationTime.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}
