// Package metrics records Prometheus metrics for connector operations.
//
// # Basic Usage
//
//	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)
//	timer := metrics.NewTimer()
//	frame, err := run()
//	recorder.Observe("execute_query", timer.Stop(), frame.NumRows(), err)
//
// # Metric Types
//
// Counter: nimble_operations_total{operation,status}, nimble_rows_total{operation}
// Histogram: nimble_operation_duration_seconds{operation}
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// StatusSuccess labels successful operations
	StatusSuccess = "success"
	// StatusFailure labels failed operations
	StatusFailure = "failure"
)

// Recorder holds the connector metric vectors. All methods are safe for
// concurrent use.
type Recorder struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	rows       *prometheus.CounterVec
}

// NewRecorder creates the connector metrics and registers them with reg.
// Passing nil creates unregistered metrics, which is what tests want.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nimble_operations_total",
				Help: "Total number of connector operations",
			},
			[]string{"operation", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "nimble_operation_duration_seconds",
				Help: "Duration of connector operations, including connection setup",
				Buckets: []float64{
					0.001, // 1ms - local socket round trip
					0.01,  // 10ms
					0.05,
					0.1, // 100ms - typical remote query
					0.5,
					1,
					5,  // 5s - large COPY
					30, // 30s
				},
			},
			[]string{"operation"},
		),
		rows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nimble_rows_total",
				Help: "Rows read or written by connector operations",
			},
			[]string{"operation"},
		),
	}
}

var defaultRecorder = NewRecorder(prometheus.DefaultRegisterer)

// Default returns the recorder registered with the default Prometheus registry.
func Default() *Recorder {
	return defaultRecorder
}

// Observe records one completed operation.
func (r *Recorder) Observe(operation string, duration time.Duration, rows int64, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.duration.WithLabelValues(operation).Observe(duration.Seconds())
	if err == nil && rows > 0 {
		r.rows.WithLabelValues(operation).Add(float64(rows))
	}
}

// Operations returns the operations counter, for tests and exporters.
func (r *Recorder) Operations() *prometheus.CounterVec {
	return r.operations
}

// Rows returns the rows counter, for tests and exporters.
func (r *Recorder) Rows() *prometheus.CounterVec {
	return r.rows
}

// Timer measures an operation duration from creation.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It can be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
