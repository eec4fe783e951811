package engine

import (
	"errors"
	"fmt"
)

// ErrNilDecision indicates a nil decision was handed to the executor.
var ErrNilDecision = errors.New("decision cannot be nil")

// InvalidRequestError indicates a malformed execution request: no decision
// reference, or no input data where the table requires it.
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Message)
}

// NotFoundError indicates the referenced decision does not exist or has no
// published version to execute.
type NotFoundError struct {
	DecisionID  string
	DecisionKey string
	Version     int
	TenantID    string
}

func (e *NotFoundError) Error() string {
	if e.DecisionID != "" {
		return fmt.Sprintf("decision not found: %s", e.DecisionID)
	}
	if e.Version > 0 {
		return fmt.Sprintf("no published decision for key %q version %d", e.DecisionKey, e.Version)
	}
	return fmt.Sprintf("no published decision for key %q", e.DecisionKey)
}

// EvaluationError indicates an expression or rule failed to evaluate. The
// execution is recorded as FAILED and the error surfaces to the caller.
type EvaluationError struct {
	DecisionID string
	RuleID     string
	Expression string
	Cause      error
}

func (e *EvaluationError) Error() string {
	switch {
	case e.RuleID != "" && e.Expression != "":
		return fmt.Sprintf("decision %s rule %s: evaluating %q: %v", e.DecisionID, e.RuleID, e.Expression, e.Cause)
	case e.Expression != "":
		return fmt.Sprintf("decision %s: evaluating %q: %v", e.DecisionID, e.Expression, e.Cause)
	default:
		return fmt.Sprintf("decision %s: evaluation failed: %v", e.DecisionID, e.Cause)
	}
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}
