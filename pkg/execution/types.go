package execution

import (
	"context"
	"io"
	"time"
)

// Status classifies the outcome of one decision execution.
type Status string

const (
	StatusSuccess Status = "SUCCESS"  // At least one rule matched
	StatusNoMatch Status = "NO_MATCH" // Evaluation ran, no rule matched
	StatusFailed  Status = "FAILED"   // Evaluation raised an error
)

// ResultValue returns the lowercase form used in result payloads.
func (s Status) ResultValue() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNoMatch:
		return "no_match"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Record is the persisted trace of a single decision execution. One record
// is appended per evaluation, including failed ones.
type Record struct {
	// Identity
	ID              string `json:"id"` // UUID v4
	DecisionID      string `json:"decision_id"`
	DecisionKey     string `json:"decision_key,omitempty"`
	DecisionVersion int    `json:"decision_version,omitempty"`

	// Outcome
	Status          Status      `json:"status"`
	OutputResult    interface{} `json:"output_result,omitempty"`
	MatchedRuleIDs  []string    `json:"matched_rule_ids,omitempty"`
	MatchedCount    int         `json:"matched_count"`
	ExecutionTimeMs int64       `json:"execution_time_ms"`

	// Input snapshot
	InputData map[string]interface{} `json:"input_data"`

	// Caller context
	ProcessInstanceID string `json:"process_instance_id,omitempty"`
	ActivityID        string `json:"activity_id,omitempty"`
	TaskID            string `json:"task_id,omitempty"`
	TenantID          string `json:"tenant_id,omitempty"`

	// Error info
	ErrorMessage string `json:"error_message,omitempty"`
	ErrorDetails string `json:"error_details,omitempty"`

	// Audit trail, present when auditing was enabled for the execution
	Audit *AuditContainer `json:"audit,omitempty"`

	CreateTime time.Time `json:"create_time"`
}

// AuditContainer is the full evaluation trail of one execution: the options
// in effect, one entry per evaluated rule, and the composed result.
type AuditContainer struct {
	StrictMode        bool          `json:"strict_mode"`
	ForceDMN11        bool          `json:"force_dmn11"`
	HitPolicy         string        `json:"hit_policy"`
	ValidationMessage string        `json:"validation_message,omitempty"`
	Entries           []*AuditEntry `json:"entries"`
	DecisionResult    interface{}   `json:"decision_result,omitempty"`
}

// AuditEntry records the evaluation of a single rule. Rules skipped because
// iteration stopped early have no entry.
type AuditEntry struct {
	RuleNumber        int                 `json:"rule_number"` // 1-based table row
	RuleID            string              `json:"rule_id"`
	Matched           bool                `json:"matched"`
	InputEntries      []*AuditInputEntry  `json:"input_entries"`
	OutputEntries     []*AuditOutputEntry `json:"output_entries,omitempty"`
	ExceptionMessage  string              `json:"exception_message,omitempty"`
	ValidationMessage string              `json:"validation_message,omitempty"`
}

// AuditInputEntry records one condition check within a rule.
type AuditInputEntry struct {
	InputID        string      `json:"input_id"`
	InputValue     interface{} `json:"input_value"`
	Operator       string      `json:"operator"`
	ConditionValue interface{} `json:"condition_value"`
	Matched        bool        `json:"matched"`
}

// AuditOutputEntry records one output value a matched rule produced.
type AuditOutputEntry struct {
	OutputID    string      `json:"output_id"`
	OutputValue interface{} `json:"output_value"`
}

// Query defines filter parameters for execution history. Zero-value filters
// are ignored. StartTime and EndTime bound CreateTime inclusively. Page is
// 1-based; implementations default Page to 1 and Size to 20.
type Query struct {
	DecisionID        string     `json:"decision_id,omitempty"`
	DecisionKey       string     `json:"decision_key,omitempty"`
	Status            Status     `json:"status,omitempty"`
	ProcessInstanceID string     `json:"process_instance_id,omitempty"`
	TenantID          string     `json:"tenant_id,omitempty"`
	StartTime         *time.Time `json:"start_time,omitempty"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	Page              int        `json:"page,omitempty"`
	Size              int        `json:"size,omitempty"`
}

// Stats aggregates execution history for one decision. Counters are zero
// when no history exists.
type Stats struct {
	TotalCount    int64   `json:"total_count"`
	SuccessCount  int64   `json:"success_count"`
	FailedCount   int64   `json:"failed_count"`
	NoMatchCount  int64   `json:"no_match_count"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
	MaxDurationMs int64   `json:"max_duration_ms"`
}

// Storage is the contract for execution-history backends. Implementations
// must be safe for concurrent use.
type Storage interface {
	// Append persists one execution record.
	Append(ctx context.Context, record *Record) error

	// Query returns the records matching the filters, newest first, plus
	// the total match count before pagination.
	Query(ctx context.Context, query *Query) ([]*Record, int64, error)

	// Count returns the total match count without fetching records.
	Count(ctx context.Context, query *Query) (int64, error)

	// Stats aggregates history for one decision id.
	Stats(ctx context.Context, decisionID string) (*Stats, error)

	// Delete removes all records matching the filters, ignoring
	// pagination, and returns how many were removed. Retention
	// enforcement uses it.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases backend resources.
	Close() error
}

// Exporter writes execution records to a stream in a specific format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
