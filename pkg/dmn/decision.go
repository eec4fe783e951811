package dmn

import "time"

// Decision is one stored version of a decision table. Published versions are
// immutable; the lifecycle manager enforces the state machine documented on
// DecisionStatus.
type Decision struct {
	// Identity
	ID          string `json:"id"`                  // Opaque unique id of this version
	DecisionKey string `json:"decision_key"`        // Stable logical name, unique per tenant
	Name        string `json:"name"`                // Human-readable name
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"` // Free-form grouping label
	Version     int    `json:"version"`            // Monotonic, starts at 1
	TenantID    string `json:"tenant_id,omitempty"`

	// Lifecycle
	Status      DecisionStatus `json:"status"`
	PublishTime *time.Time     `json:"publish_time,omitempty"` // Set on publish
	CreateTime  time.Time      `json:"create_time"`
	UpdateTime  time.Time      `json:"update_time"`

	// Table definition
	HitPolicy   HitPolicy         `json:"hit_policy"`
	Aggregation Aggregation       `json:"aggregation,omitempty"` // COLLECT only
	Inputs      []*DecisionInput  `json:"inputs"`
	Outputs     []*DecisionOutput `json:"outputs"`
	Rules       []*Rule           `json:"rules"`
	RuleCount   int               `json:"rule_count"` // Always len(Rules)
}

// DecisionInput is one input clause of the table. Conditions reference it by
// ID. When the caller's input map has no entry for the input, Expression is
// evaluated as FEEL against the input map to produce the value.
type DecisionInput struct {
	ID         string `json:"id"`
	Label      string `json:"label,omitempty"`
	Expression string `json:"expression"`     // FEEL literal or variable path
	Type       string `json:"type,omitempty"` // typeRef: string, number, integer, long, double, boolean
	Required   bool   `json:"required,omitempty"`
}

// DecisionOutput is one output clause of the table. Name becomes the key in
// the emitted output record. Values, when present, declares the output values
// in priority order; PRIORITY and OUTPUT ORDER require it.
type DecisionOutput struct {
	ID           string      `json:"id"`
	Label        string      `json:"label,omitempty"`
	Name         string      `json:"name"`
	Type         string      `json:"type,omitempty"`
	DefaultValue interface{} `json:"default_value,omitempty"`
	Values       []string    `json:"values,omitempty"` // Declared output values, highest priority first
}

// GetInput returns the input clause with the given id, or nil.
func (d *Decision) GetInput(id string) *DecisionInput {
	for _, in := range d.Inputs {
		if in.ID == id {
			return in
		}
	}
	return nil
}

// GetOutput returns the output clause with the given id, or nil.
func (d *Decision) GetOutput(id string) *DecisionOutput {
	for _, out := range d.Outputs {
		if out.ID == id {
			return out
		}
	}
	return nil
}

// GetRule returns the rule with the given id, or nil.
func (d *Decision) GetRule(id string) *Rule {
	for _, r := range d.Rules {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// SyncRuleCount recomputes RuleCount from the rule list. Callers that mutate
// Rules must invoke it before persisting.
func (d *Decision) SyncRuleCount() {
	d.RuleCount = len(d.Rules)
}

// Clone returns a deep copy of the decision. The lifecycle manager uses it
// for versioning so that prior versions stay untouched.
func (d *Decision) Clone() *Decision {
	clone := *d
	if d.PublishTime != nil {
		t := *d.PublishTime
		clone.PublishTime = &t
	}
	clone.Inputs = make([]*DecisionInput, len(d.Inputs))
	for i, in := range d.Inputs {
		c := *in
		clone.Inputs[i] = &c
	}
	clone.Outputs = make([]*DecisionOutput, len(d.Outputs))
	for i, out := range d.Outputs {
		c := *out
		if out.Values != nil {
			c.Values = append([]string(nil), out.Values...)
		}
		clone.Outputs[i] = &c
	}
	clone.Rules = make([]*Rule, len(d.Rules))
	for i, r := range d.Rules {
		clone.Rules[i] = r.Clone()
	}
	return &clone
}
