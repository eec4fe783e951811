// Package builtins provides the FEEL built-in function library: a fixed
// registry of named pure functions covering numeric, string, list,
// date/time, conversion, context, and range operations.
//
// Names are normalized before lookup (lowercased, spaces replaced with
// underscores), so "string length", "STRING LENGTH" and "string_length" all
// resolve to the same function. Expression-level calls use the underscore
// form, since identifiers cannot contain spaces.
//
// Indices are 1-based wherever the DMN specification mandates it (substring,
// sublist, insert before, remove, index of).
package builtins

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tabular-hq/verdict/pkg/feel/ast"
	"tabular-hq/verdict/pkg/feel/errors"
)

// Env carries the ambient values a builtin may need. Most builtins ignore
// it; now() and today() read the clock from it so tests can pin time.
type Env struct {
	Now func() time.Time
}

// Clock returns the environment clock, defaulting to time.Now.
func (e *Env) Clock() time.Time {
	if e == nil || e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Impl is the implementation of one builtin.
type Impl func(env *Env, args []any) (any, error)

// Callable is a function value (typically a lambda produced by the
// evaluator) that builtins such as sort can invoke.
type Callable interface {
	Call(args []any) (any, error)
}

// Function describes one registered builtin.
type Function struct {
	Name    string // Canonical name, may contain spaces ("string length")
	MinArgs int
	MaxArgs int // -1 means variadic
	Impl    Impl
}

// Normalize maps a function name to its registry key: lowercase with
// underscores for spaces.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Registry maps normalized names to builtin descriptors. It is immutable
// after construction and safe for concurrent lookup.
type Registry struct {
	functions map[string]*Function
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{functions: make(map[string]*Function)}
}

// Register adds a function under its normalized name, replacing any earlier
// registration.
func (r *Registry) Register(fn *Function) {
	r.functions[Normalize(fn.Name)] = fn
}

// Lookup resolves a function by name (normalization applied).
func (r *Registry) Lookup(name string) (*Function, bool) {
	fn, ok := r.functions[Normalize(name)]
	return fn, ok
}

// Names returns the normalized names of all registered functions, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	return len(r.functions)
}

// Call looks up a function, checks arity, and invokes it. Unknown names
// yield FUNCTION_NOT_FOUND; arity mismatches yield INVALID_ARGUMENTS.
func (r *Registry) Call(env *Env, name string, args []any) (any, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, errors.Newf(errors.KindFunctionNotFound, ast.Location{},
			"unknown function %q", name)
	}
	if len(args) < fn.MinArgs {
		return nil, errors.Newf(errors.KindInvalidArguments, ast.Location{},
			"%s: expected at least %d argument(s), got %d", fn.Name, fn.MinArgs, len(args))
	}
	if fn.MaxArgs >= 0 && len(args) > fn.MaxArgs {
		return nil, errors.Newf(errors.KindInvalidArguments, ast.Location{},
			"%s: expected at most %d argument(s), got %d", fn.Name, fn.MaxArgs, len(args))
	}
	return fn.Impl(env, args)
}

var defaultRegistry = buildDefault()

// Default returns the process-wide registry with the complete FEEL builtin
// set. It is built once at init and never mutated afterwards.
func Default() *Registry {
	return defaultRegistry
}

func buildDefault() *Registry {
	r := NewRegistry()
	registerNumeric(r)
	registerStrings(r)
	registerLists(r)
	registerDateTime(r)
	registerConversion(r)
	registerContexts(r)
	registerRanges(r)
	return r
}

// invalidArgs builds the uniform argument-type error.
func invalidArgs(fn string, format string, args ...any) *errors.Error {
	return errors.Newf(errors.KindInvalidArguments, ast.Location{},
		fn+": "+format, args...)
}

// describeValue renders a value for error messages.
func describeValue(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%v (%T)", v, v)
}
