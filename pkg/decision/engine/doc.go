// Package engine executes DMN decision tables.
//
// The TableEngine resolves a decision reference (by id, or by key against
// published versions), evaluates every rule's conditions against the
// caller's input data, and composes the matched rules into a result
// according to the table's hit policy. Every execution, including failed
// ones, is appended to the execution history with an optional per-rule
// audit trail.
//
// Example usage:
//
//	eng, err := engine.NewTableEngine(nil, store, history, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := eng.Execute(ctx, &engine.Request{
//		DecisionKey: "loan-approval",
//		InputData:   map[string]any{"age": 25, "income": 50000},
//	})
//
// Execution semantics:
//
//   - Input clause values come from the input map by clause id, or from
//     evaluating the clause's FEEL expression against the map.
//   - Conditions never raise; unresolvable comparisons are false and an
//     unknown operator degrades to equality with a warning.
//   - Strict mode (default) surfaces hit-policy violations as errors; with
//     it off the policy's documented fallback applies and the violation is
//     noted on the audit trail.
//   - History persistence failures are logged, never masking the result.
package engine
