package hitpolicy

import "tabular-hq/verdict/pkg/dmn"

// firstHandler implements FIRST: the first matching rule in rule order wins
// and iteration stops there. It is also the fallback for unrecognized
// policies.
type firstHandler struct{}

func (h *firstHandler) Policy() dmn.HitPolicy { return dmn.HitPolicyFirst }

func (h *firstHandler) Handle(results []RuleResult) Outcome {
	out := Outcome{
		HasMatch:       len(results) > 0,
		MatchedRuleIDs: matchedIDs(results),
	}
	if len(results) > 0 {
		out.Output = results[0].Outputs
	}
	return out
}

// ShouldContinueEvaluating stops iteration once a rule has matched.
func (h *firstHandler) ShouldContinueEvaluating(currentRuleMatched bool) (bool, string) {
	if currentRuleMatched {
		return false, "first matching rule found"
	}
	return true, ""
}
