package dmn

// DecisionStatus tracks a decision version through its lifecycle.
type DecisionStatus string

const (
	StatusDraft     DecisionStatus = "DRAFT"     // Editable, not executable
	StatusPublished DecisionStatus = "PUBLISHED" // Immutable, executable
	StatusSuspended DecisionStatus = "SUSPENDED" // Immutable, execution blocked
	StatusArchived  DecisionStatus = "ARCHIVED"  // Retired, read-only
)

// Valid returns true if the status is one of the four lifecycle states.
func (s DecisionStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusSuspended, StatusArchived:
		return true
	}
	return false
}

// CanEdit returns true if the definition body may still be modified.
// Published definitions are immutable; edits require a new version.
func (s DecisionStatus) CanEdit() bool {
	return s == StatusDraft
}

// CanDelete returns true if the decision may be deleted. Only drafts qualify.
func (s DecisionStatus) CanDelete() bool {
	return s == StatusDraft
}

// CanPublish returns true if the decision may transition to PUBLISHED.
func (s DecisionStatus) CanPublish() bool {
	return s == StatusDraft
}

// CanSuspend returns true if the decision may transition to SUSPENDED.
func (s DecisionStatus) CanSuspend() bool {
	return s == StatusPublished
}

// CanActivate returns true if the decision may be re-published from
// suspension.
func (s DecisionStatus) CanActivate() bool {
	return s == StatusSuspended
}

// IsExecutable returns true if the engine may evaluate this decision.
func (s DecisionStatus) IsExecutable() bool {
	return s == StatusPublished
}
