package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// namespace prefixes every metric exposed by this package.
const namespace = "verdict"

// maxDecisionKeys caps the number of distinct decision_key label values.
// Decision keys are caller-controlled, so an unbounded tenant catalog would
// otherwise blow up metric cardinality. Keys beyond the cap are aggregated
// under the "other" label.
const maxDecisionKeys = 1000

// EvaluationMetrics tracks decision table evaluation outcomes and latency.
//
// All metrics are labeled by decision key so dashboards can break down
// throughput and latency per table. The histogram buckets are exponential
// from 1µs to ~16ms because table evaluation is an in-memory operation
// that normally completes in microseconds.
type EvaluationMetrics struct {
	// evaluationsTotal counts evaluations by decision key and result status
	// (success, failed, no_match).
	evaluationsTotal *prometheus.CounterVec

	// evaluationDuration tracks end-to-end evaluation latency in seconds.
	evaluationDuration *prometheus.HistogramVec

	// rulesEvaluated counts individual rule visits, which exposes tables
	// whose rule ordering defeats early termination.
	rulesEvaluated *prometheus.CounterVec

	// policyViolations counts hit policy violations (UNIQUE overlap,
	// ANY disagreement, PRIORITY without declared values).
	policyViolations *prometheus.CounterVec

	keys *CardinalityLimiter
}

// NewEvaluationMetrics creates evaluation metrics and registers them with
// the supplied registerer. Passing prometheus.DefaultRegisterer hooks them
// into the process-global registry; tests pass a fresh registry instead.
func NewEvaluationMetrics(reg prometheus.Registerer) *EvaluationMetrics {
	m := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of decision table evaluations by decision key and status",
			},
			[]string{"decision_key", "status"},
		),
		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Decision table evaluation duration in seconds",
				// 1µs to ~16ms
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15),
			},
			[]string{"decision_key"},
		),
		rulesEvaluated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rules_evaluated_total",
				Help:      "Total number of rules visited during evaluations",
			},
			[]string{"decision_key"},
		),
		policyViolations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "hit_policy_violations_total",
				Help:      "Total number of hit policy violations detected during evaluation",
			},
			[]string{"decision_key", "hit_policy"},
		),
		keys: NewCardinalityLimiter(maxDecisionKeys),
	}

	reg.MustRegister(
		m.evaluationsTotal,
		m.evaluationDuration,
		m.rulesEvaluated,
		m.policyViolations,
	)

	return m
}

// RecordEvaluation records one completed evaluation. A nil receiver is a
// no-op so callers can hold an optional *EvaluationMetrics without guards.
func (m *EvaluationMetrics) RecordEvaluation(decisionKey, status string, duration time.Duration, rulesEvaluated int) {
	if m == nil {
		return
	}

	key := m.keyLabel(decisionKey)
	m.evaluationsTotal.WithLabelValues(key, status).Inc()
	m.evaluationDuration.WithLabelValues(key).Observe(duration.Seconds())
	if rulesEvaluated > 0 {
		m.rulesEvaluated.WithLabelValues(key).Add(float64(rulesEvaluated))
	}
}

// RecordViolation records a hit policy violation. A nil receiver is a no-op.
func (m *EvaluationMetrics) RecordViolation(decisionKey, hitPolicy string) {
	if m == nil {
		return
	}

	m.policyViolations.WithLabelValues(m.keyLabel(decisionKey), hitPolicy).Inc()
}

// keyLabel maps a decision key to its label value, folding keys beyond the
// cardinality cap into "other".
func (m *EvaluationMetrics) keyLabel(decisionKey string) string {
	if !m.keys.Allow(decisionKey) {
		return "other"
	}
	return decisionKey
}
