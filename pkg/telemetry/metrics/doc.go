// Package metrics provides Prometheus metrics for the Verdict decision
// engine.
//
// # Overview
//
// Two metric families cover the engine's hot paths:
//
//   - EvaluationMetrics: evaluation count, latency, rules visited, and hit
//     policy violations, labeled by decision key
//   - StoreMetrics: persistence operation count and latency for the
//     decision and execution stores
//
// Both are registered on a caller-supplied prometheus.Registerer, so
// embedders control whether metrics land in the default registry or an
// isolated one.
//
// # Usage
//
//	registry := prometheus.NewRegistry()
//	evalMetrics := metrics.NewEvaluationMetrics(registry)
//	storeMetrics := metrics.NewStoreMetrics(registry)
//
//	evalMetrics.RecordEvaluation("loan-grade", "success", 42*time.Microsecond, 3)
//	storeMetrics.RecordOperation("execution", "append", time.Millisecond, nil)
//
//	http.Handle("/metrics", metrics.Handler(registry))
//
// A nil *EvaluationMetrics or *StoreMetrics is a valid no-op recorder, so
// components take the pointer without guarding every call site.
//
// # Exposition
//
// Metrics are exposed under the "verdict" namespace:
//
//	# HELP verdict_evaluations_total Total number of decision table evaluations by decision key and status
//	# TYPE verdict_evaluations_total counter
//	verdict_evaluations_total{decision_key="loan-grade",status="success"} 1234
//
// # Cardinality Management
//
// Decision keys come from tenant-authored tables, so the decision_key label
// is capped at 1000 distinct values; keys beyond the cap are aggregated
// under "other".
package metrics
