package engine

import (
	"context"

	"tabular-hq/verdict/pkg/dmn"
	"tabular-hq/verdict/pkg/execution"
)

// Request asks for one decision evaluation. Either DecisionID or DecisionKey
// must be set. The key path resolves against published versions only: the
// highest one, or the one pinned by Version.
type Request struct {
	DecisionID  string `json:"decision_id,omitempty"`
	DecisionKey string `json:"decision_key,omitempty"`
	Version     int    `json:"version,omitempty"`
	TenantID    string `json:"tenant_id,omitempty"`

	// InputData holds the variables conditions and input expressions see.
	InputData map[string]any `json:"input_data"`

	// Caller context, copied onto the execution record.
	ProcessInstanceID string `json:"process_instance_id,omitempty"`
	ActivityID        string `json:"activity_id,omitempty"`
	TaskID            string `json:"task_id,omitempty"`

	// Options override the engine defaults for this execution. Nil means
	// use the engine's configured defaults.
	Options *Options `json:"options,omitempty"`
}

// Options tune the semantics of one execution.
type Options struct {
	// StrictMode surfaces hit-policy violations as errors. When false the
	// handler's documented fallback applies and the violation is recorded
	// on the audit trail instead.
	StrictMode bool `json:"strict_mode"`

	// ForceDMN11 applies DMN 1.1 COLLECT semantics: matches with identical
	// outputs collapse before composition.
	ForceDMN11 bool `json:"force_dmn11"`

	// EnableAudit attaches the per-rule audit trail to the result and the
	// execution record.
	EnableAudit bool `json:"enable_audit"`
}

// DefaultOptions returns the standard execution options: strict, DMN 1.3
// COLLECT semantics, auditing on.
func DefaultOptions() Options {
	return Options{StrictMode: true, EnableAudit: true}
}

// Result is the outcome of one execution, mirroring what gets persisted.
type Result struct {
	ExecutionID     string                    `json:"execution_id"`
	DecisionID      string                    `json:"decision_id"`
	DecisionKey     string                    `json:"decision_key,omitempty"`
	DecisionVersion int                       `json:"decision_version,omitempty"`
	Status          string                    `json:"status"` // "success", "no_match", "failed"
	OutputResult    any                       `json:"output_result,omitempty"`
	MatchedRules    []string                  `json:"matched_rules,omitempty"`
	MatchedCount    int                       `json:"matched_count"`
	ExecutionTimeMs int64                     `json:"execution_time_ms"`
	ErrorMessage    string                    `json:"error_message,omitempty"`
	Audit           *execution.AuditContainer `json:"audit,omitempty"`
}

// ValidationReport is the outcome of a structural decision check. Errors
// make the decision unexecutable; warnings flag suspect but legal tables.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// DecisionSource resolves decision references for the executor. Finders
// return nil without error when nothing matches; the executor turns that
// into a NotFoundError.
type DecisionSource interface {
	// FindByID returns the decision version with the given id.
	FindByID(ctx context.Context, id string) (*dmn.Decision, error)

	// FindByKey returns the given version of a decision key.
	FindByKey(ctx context.Context, key, tenantID string, version int) (*dmn.Decision, error)

	// FindHighestPublishedByKey returns the published version with the
	// highest version number for a key.
	FindHighestPublishedByKey(ctx context.Context, key, tenantID string) (*dmn.Decision, error)
}
