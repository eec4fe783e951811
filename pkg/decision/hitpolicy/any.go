package hitpolicy

import (
	"fmt"

	"tabular-hq/verdict/pkg/dmn"
	"tabular-hq/verdict/pkg/feel/builtins"
)

// anyHandler implements ANY: several rules may match, but they must all
// produce the same outputs. Disagreement is a contract violation; the
// non-strict fallback keeps the last match, which Handle returns.
type anyHandler struct{}

func (h *anyHandler) Policy() dmn.HitPolicy { return dmn.HitPolicyAny }

func (h *anyHandler) Handle(results []RuleResult) Outcome {
	out := Outcome{
		HasMatch:       len(results) > 0,
		MatchedRuleIDs: matchedIDs(results),
	}
	if len(results) > 0 {
		out.Output = results[len(results)-1].Outputs
	}
	return out
}

// EvaluateRuleValidity reports the first matched rule whose outputs differ
// from the first match.
func (h *anyHandler) EvaluateRuleValidity(results []RuleResult, strictMode bool) error {
	if len(results) < 2 {
		return nil
	}
	first := results[0]
	for _, r := range results[1:] {
		if !sameOutputs(first.Outputs, r.Outputs) {
			return &ViolationError{
				Policy:  dmn.HitPolicyAny,
				Message: fmt.Sprintf("rules %s and %s produced different outputs", first.RuleID, r.RuleID),
			}
		}
	}
	return nil
}

// sameOutputs compares two output tuples key by key with FEEL equality, so
// an int and a float with the same value still agree.
func sameOutputs(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for name, va := range a {
		vb, ok := b[name]
		if !ok || !builtins.ValuesEqual(va, vb) {
			return false
		}
	}
	return true
}
