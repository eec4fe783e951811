// Package eval implements the FEEL expression interpreter: a tree walk over
// parsed expressions against a variable and function context.
//
// # Evaluation
//
// Evaluate interprets a parsed tree; EvaluateString takes raw source and
// routes the common decision-table idioms (literals, variable paths, simple
// comparisons, between, in-list, and single-operator conjunctions) through a
// fast path that skips the parser entirely. Both paths produce identical
// results for expressions the fast path accepts.
//
//	ctx := eval.NewContext(map[string]any{"age": 25.0})
//	result, err := eval.EvaluateString("age between 18 and 65", ctx)
//
// # Semantics
//
// Arithmetic requires numbers on both sides, except + which concatenates
// when either operand is a string. Ordering comparisons require operands of
// the same kind; equality is defined across all values. and/or combine the
// truthiness of both sides and evaluate both (no lazy short-circuit on the
// right operand). Truthiness: null, 0, "" and empty collections are false,
// everything else is true.
//
// Failures are *errors.Error values carrying one of the fixed error kinds,
// so callers can distinguish a missing variable from a type mismatch.
package eval
