package hitpolicy

import (
	"fmt"

	"tabular-hq/verdict/pkg/dmn"
)

// uniqueHandler implements UNIQUE: at most one rule may match. More than one
// match is a contract violation; the non-strict fallback merges the matched
// outputs, last non-null value per output winning.
type uniqueHandler struct{}

func (h *uniqueHandler) Policy() dmn.HitPolicy { return dmn.HitPolicyUnique }

func (h *uniqueHandler) Handle(results []RuleResult) Outcome {
	out := Outcome{
		HasMatch:       len(results) > 0,
		MatchedRuleIDs: matchedIDs(results),
	}
	if len(results) > 0 {
		out.Output = results[0].Outputs
	}
	return out
}

// EvaluateRuleValidity flags more than one match as a violation.
func (h *uniqueHandler) EvaluateRuleValidity(results []RuleResult, strictMode bool) error {
	if len(results) > 1 {
		return &ViolationError{
			Policy:  dmn.HitPolicyUnique,
			Message: fmt.Sprintf("expected at most one matching rule, got %d", len(results)),
		}
	}
	return nil
}

// ComposeDecisionResults merges the matched outputs into a single object.
// With a single match this is that rule's outputs; the multi-match fallback
// keeps the last non-null value seen for each output.
func (h *uniqueHandler) ComposeDecisionResults(results []RuleResult) any {
	if len(results) == 0 {
		return nil
	}
	if len(results) == 1 {
		return results[0].Outputs
	}
	merged := make(map[string]any)
	for _, r := range results {
		for name, value := range r.Outputs {
			if value != nil {
				merged[name] = value
			} else if _, seen := merged[name]; !seen {
				merged[name] = nil
			}
		}
	}
	return merged
}
