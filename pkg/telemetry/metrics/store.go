package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics tracks persistence operations against the decision and
// execution stores. Operations are labeled by store name ("decision",
// "execution"), operation ("append", "query", "prune", ...) and outcome
// ("ok", "error").
type StoreMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewStoreMetrics creates store metrics and registers them with the
// supplied registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "operations_total",
				Help:      "Total number of store operations by store, operation and outcome",
			},
			[]string{"store", "operation", "outcome"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "operation_duration_seconds",
				Help:      "Store operation duration in seconds",
				// 100µs to ~1.6s, covering memory lookups through SQLite
				// writes under WAL checkpointing.
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
			},
			[]string{"store", "operation"},
		),
	}

	reg.MustRegister(m.operationsTotal, m.operationDuration)

	return m
}

// RecordOperation records one store operation. The outcome label is derived
// from err. A nil receiver is a no-op.
func (m *StoreMetrics) RecordOperation(store, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operationsTotal.WithLabelValues(store, operation, outcome).Inc()
	m.operationDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
}
