// Package errors defines the FEEL error taxonomy shared by the lexer, the
// parser, and the evaluator. Errors carry a kind, a message, and a source
// location so callers can report precisely where an expression went wrong.
package errors

import (
	"fmt"
	"strings"

	"tabular-hq/verdict/pkg/feel/ast"
)

// Kind classifies a FEEL error. The set is closed; every failure the
// subsystem can produce maps to exactly one kind.
type Kind string

const (
	KindSyntaxError      Kind = "SYNTAX_ERROR"       // Lexer or parser failure
	KindTypeError        Kind = "TYPE_ERROR"         // Operand type mismatch
	KindVariableNotFound Kind = "VARIABLE_NOT_FOUND" // Unknown variable reference
	KindFunctionNotFound Kind = "FUNCTION_NOT_FOUND" // Unknown function name
	KindInvalidArguments Kind = "INVALID_ARGUMENTS"  // Wrong arity or argument type
	KindDivisionByZero   Kind = "DIVISION_BY_ZERO"   // x / 0, modulo 0
	KindNullValue        Kind = "NULL_VALUE"         // Operation on null (e.g. property access)
	KindRuntimeError     Kind = "RUNTIME_ERROR"      // Anything else at evaluation time
)

// Error is a rich FEEL error with location, optional source context, and an
// optional suggested fix.
type Error struct {
	Kind       Kind         // Category of error
	Message    string       // Error message
	Location   ast.Location // Position within the expression
	Context    string       // Offending source fragment (optional)
	Suggestion string       // Suggested fix (optional)
}

// New creates an error of the given kind.
func New(kind Kind, message string, location ast.Location) *Error {
	return &Error{Kind: kind, Message: message, Location: location}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, location ast.Location, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Location: location}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Kind, e.Message))
	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf(" at %s", e.Location))
	}
	if e.Context != "" {
		sb.WriteString(fmt.Sprintf(" in %q", e.Context))
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf(" (suggestion: %s)", e.Suggestion))
	}

	return sb.String()
}

// Is reports kind equality, so errors.Is(err, &Error{Kind: KindTypeError})
// works for callers that only care about the category.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// ErrorList accumulates errors so the parser can report every problem in an
// expression instead of stopping at the first.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates an empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{Errors: make([]*Error, 0)}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and appends a new error with the given parameters.
func (el *ErrorList) AddError(kind Kind, message string, location ast.Location) {
	el.Add(&Error{Kind: kind, Message: message, Location: location})
}

// AddErrorWithSuggestion creates and appends a new error carrying a
// suggested fix.
func (el *ErrorList) AddErrorWithSuggestion(kind Kind, message string, location ast.Location, suggestion string) {
	el.Add(&Error{Kind: kind, Message: message, Location: location, Suggestion: suggestion})
}

// HasErrors returns true if the list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// First returns the first error, or nil if the list is empty.
func (el *ErrorList) First() *Error {
	if len(el.Errors) == 0 {
		return nil
	}
	return el.Errors[0]
}

// Error implements the error interface, rendering every accumulated error.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	if len(el.Errors) == 1 {
		return el.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors:", el.Count()))
	for _, err := range el.Errors {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// ToError returns nil if the list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByKind returns all errors of the given kind.
func (el *ErrorList) ByKind(kind Kind) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Kind == kind {
			result = append(result, err)
		}
	}
	return result
}

// HasKind returns true if the list contains at least one error of the kind.
func (el *ErrorList) HasKind(kind Kind) bool {
	for _, err := range el.Errors {
		if err.Kind == kind {
			return true
		}
	}
	return false
}
