package hitpolicy

import "tabular-hq/verdict/pkg/dmn"

// unorderedHandler implements UNORDERED: every match contributes one output
// object and no ordering is promised. The implementation still emits matches
// in rule order so repeated evaluations of the same table are reproducible.
type unorderedHandler struct{}

func (h *unorderedHandler) Policy() dmn.HitPolicy { return dmn.HitPolicyUnordered }

func (h *unorderedHandler) Handle(results []RuleResult) Outcome {
	return Outcome{
		HasMatch:        len(results) > 0,
		MatchedRuleIDs:  matchedIDs(results),
		Output:          outputList(results),
		MultipleResults: true,
	}
}
