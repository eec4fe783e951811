// Package feel ties the FEEL subpackages together behind a small convenience
// API: parse an expression, evaluate it against variables, or do both in one
// call. Callers needing finer control (custom registries, pinned clocks,
// tree inspection) use the subpackages directly.
package feel

import (
	"tabular-hq/verdict/pkg/feel/ast"
	"tabular-hq/verdict/pkg/feel/errors"
	"tabular-hq/verdict/pkg/feel/eval"
	"tabular-hq/verdict/pkg/feel/parser"
)

// Parse parses an expression into a tree. The tree is always returned; check
// the error list for syntax problems.
func Parse(input string) (*ast.Node, *errors.ErrorList) {
	return parser.Parse(input)
}

// Evaluate parses and evaluates an expression against the given variables,
// using the direct fast path where the expression shape allows it.
func Evaluate(input string, variables map[string]any) (any, error) {
	return eval.EvaluateString(input, eval.NewContext(variables))
}

// EvaluateTree evaluates an already-parsed tree against the given variables.
func EvaluateTree(tree *ast.Node, variables map[string]any) (any, error) {
	return eval.Evaluate(tree, eval.NewContext(variables))
}

// Check parses an expression and reports its syntax errors without
// evaluating anything.
func Check(input string) *errors.ErrorList {
	_, errs := parser.Parse(input)
	return errs
}
