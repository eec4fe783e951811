package manager

import (
	"fmt"

	"tabular-hq/verdict/pkg/dmn"
)

// NotFoundError indicates no decision matched the given id or key.
type NotFoundError struct {
	ID  string
	Key string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("decision not found: %s", e.ID)
	}
	return fmt.Sprintf("decision not found for key %q", e.Key)
}

// AlreadyExistsError indicates a create would violate key uniqueness. New
// revisions of an existing key go through NewVersion instead.
type AlreadyExistsError struct {
	Key      string
	TenantID string
}

func (e *AlreadyExistsError) Error() string {
	if e.TenantID != "" {
		return fmt.Sprintf("decision key %q already exists for tenant %q", e.Key, e.TenantID)
	}
	return fmt.Sprintf("decision key %q already exists", e.Key)
}

// StateError indicates a lifecycle action was attempted from a status that
// does not permit it.
type StateError struct {
	ID     string
	Status dmn.DecisionStatus
	Action string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s decision %s in status %s", e.Action, e.ID, e.Status)
}

// InvalidDecisionError indicates a decision body failed the structural
// checks a create, update or publish requires.
type InvalidDecisionError struct {
	Reason string
}

func (e *InvalidDecisionError) Error() string {
	return fmt.Sprintf("invalid decision: %s", e.Reason)
}
