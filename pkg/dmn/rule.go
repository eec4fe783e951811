package dmn

import "fmt"

// Rule is one row of a decision table: a conjunction of condition entries and
// one output entry per output clause. Rule order within the decision is
// significant; FIRST short-circuits on it and audit numbering follows it.
type Rule struct {
	ID          string        `json:"id"`
	Description string        `json:"description,omitempty"`
	Priority    int           `json:"priority,omitempty"` // Lower value = higher priority; 0 = unset
	Conditions  []*Condition  `json:"conditions"`
	Outputs     []*RuleOutput `json:"outputs"`
}

// Condition is one input entry: a predicate over the input identified by
// InputID. Value may be a scalar, a 2-element slice for between, or a list
// for in / not in.
type Condition struct {
	InputID  string      `json:"input_id"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// RuleOutput is one output entry: the value the rule emits for the output
// clause identified by OutputID.
type RuleOutput struct {
	OutputID string      `json:"output_id"`
	Value    interface{} `json:"value"`
}

// SyntheticRuleID returns the id assigned to rules stored without one:
// "rule_<index>" with a 0-based index.
func SyntheticRuleID(index int) string {
	return fmt.Sprintf("rule_%d", index)
}

// GetOutput returns the output entry for the given output-clause id, or nil.
func (r *Rule) GetOutput(outputID string) *RuleOutput {
	for _, out := range r.Outputs {
		if out.OutputID == outputID {
			return out
		}
	}
	return nil
}

// Clone returns a deep copy of the rule.
func (r *Rule) Clone() *Rule {
	clone := *r
	clone.Conditions = make([]*Condition, len(r.Conditions))
	for i, c := range r.Conditions {
		cc := *c
		clone.Conditions[i] = &cc
	}
	clone.Outputs = make([]*RuleOutput, len(r.Outputs))
	for i, o := range r.Outputs {
		oc := *o
		clone.Outputs[i] = &oc
	}
	return &clone
}
