// Package hitpolicy implements the eight DMN hit-policy handlers that decide
// how matched rules compose into a decision result.
//
// Each handler implements the base Handler interface. Optional capabilities
// are expressed as separate small interfaces rather than runtime flags:
// FIRST can stop rule iteration early (ContinueEvaluating), UNIQUE and ANY
// detect contract violations (ValidityChecker), and PRIORITY, OUTPUT ORDER,
// UNIQUE and aggregating COLLECT override the default composition
// (Composer). The executor probes for each capability through the helpers
// below and dispatches accordingly.
//
// Handlers are stateless and safe for concurrent use; per-decision data
// (declared output values, aggregation, compatibility flags) is supplied via
// Config at construction.
package hitpolicy

import (
	"fmt"

	"tabular-hq/verdict/pkg/dmn"
)

// RuleResult is one matched rule's contribution to the decision.
type RuleResult struct {
	RuleID    string         `json:"rule_id"`    // synthesized when the rule has none
	RuleIndex int            `json:"rule_index"` // 0-based position in the rule list
	Priority  int            `json:"priority"`   // declared rule priority, lower wins, 0 = unset
	Outputs   map[string]any `json:"outputs"`    // output name → produced value
}

// Outcome is the preliminary result a handler derives from the matched
// rules before validity checks and composition run.
type Outcome struct {
	HasMatch         bool     `json:"has_match"`
	MatchedRuleIDs   []string `json:"matched_rule_ids"`
	Output           any      `json:"output"` // single object or list, policy-dependent
	NeedsAggregation bool     `json:"needs_aggregation"`
	MultipleResults  bool     `json:"multiple_results"`
}

// OutputValues is one output clause's declared value list, highest priority
// first. Clause order follows the decision's output order.
type OutputValues struct {
	Name   string
	Values []string
}

// Config carries the decision-level data a handler may need.
type Config struct {
	OutputValues []OutputValues
	Aggregation  dmn.Aggregation
	ForceDMN11   bool
}

// Handler is the base contract all eight policies implement.
type Handler interface {
	// Policy returns the hit policy this handler implements.
	Policy() dmn.HitPolicy

	// Handle derives the preliminary outcome from the matched rules, which
	// arrive in rule order.
	Handle(results []RuleResult) Outcome
}

// ContinueEvaluating lets a handler stop rule iteration early. The executor
// consults it after every rule.
type ContinueEvaluating interface {
	// ShouldContinueEvaluating reports whether iteration should proceed
	// given whether the current rule matched, plus a reason for the audit
	// trail when it should not.
	ShouldContinueEvaluating(currentRuleMatched bool) (bool, string)
}

// ValidityChecker lets a handler verify the matched set against its policy
// contract. A non-nil error is a policy violation: strict mode surfaces it,
// non-strict mode records it and composes a fallback.
type ValidityChecker interface {
	EvaluateRuleValidity(results []RuleResult, strictMode bool) error
}

// Composer lets a handler override the default composition of the final
// output.
type Composer interface {
	ComposeDecisionResults(results []RuleResult) any
}

// ViolationError reports a hit-policy contract violation.
type ViolationError struct {
	Policy  dmn.HitPolicy
	Message string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%s hit policy violated: %s", e.Policy.AttributeValue(), e.Message)
}

// ConfigFor derives the handler configuration from a decision's table
// definition. ForceDMN11 is an execution-time option and stays false here.
func ConfigFor(d *dmn.Decision) Config {
	cfg := Config{Aggregation: d.Aggregation}
	for _, out := range d.Outputs {
		cfg.OutputValues = append(cfg.OutputValues, OutputValues{
			Name:   out.Name,
			Values: out.Values,
		})
	}
	return cfg
}

// ForPolicy selects the handler for a policy. Unknown policies fall back to
// FIRST, mirroring the parser's normalization.
func ForPolicy(policy dmn.HitPolicy, cfg Config) Handler {
	switch policy {
	case dmn.HitPolicyUnique:
		return &uniqueHandler{}
	case dmn.HitPolicyPriority:
		return &priorityHandler{cfg: cfg}
	case dmn.HitPolicyAny:
		return &anyHandler{}
	case dmn.HitPolicyCollect:
		if cfg.Aggregation != dmn.AggregationNone {
			return &collectAggregateHandler{
				collectHandler: collectHandler{cfg: cfg},
			}
		}
		return &collectHandler{cfg: cfg}
	case dmn.HitPolicyRuleOrder:
		return &ruleOrderHandler{}
	case dmn.HitPolicyOutputOrder:
		return &outputOrderHandler{cfg: cfg}
	case dmn.HitPolicyUnordered:
		return &unorderedHandler{}
	default:
		return &firstHandler{}
	}
}

// AsContinueEvaluating probes the early-stop capability.
func AsContinueEvaluating(h Handler) (ContinueEvaluating, bool) {
	c, ok := h.(ContinueEvaluating)
	return c, ok
}

// AsValidityChecker probes the violation-check capability.
func AsValidityChecker(h Handler) (ValidityChecker, bool) {
	v, ok := h.(ValidityChecker)
	return v, ok
}

// AsComposer probes the composition-override capability.
func AsComposer(h Handler) (Composer, bool) {
	c, ok := h.(Composer)
	return c, ok
}

// matchedIDs collects rule ids in the order the results arrive.
func matchedIDs(results []RuleResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.RuleID
	}
	return ids
}

// outputList collects each result's outputs, preserving order.
func outputList(results []RuleResult) []any {
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r.Outputs
	}
	return out
}
