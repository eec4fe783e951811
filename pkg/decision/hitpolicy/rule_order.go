package hitpolicy

import "tabular-hq/verdict/pkg/dmn"

// ruleOrderHandler implements RULE ORDER: every match contributes one output
// object, ordered by rule position in the table.
type ruleOrderHandler struct{}

func (h *ruleOrderHandler) Policy() dmn.HitPolicy { return dmn.HitPolicyRuleOrder }

func (h *ruleOrderHandler) Handle(results []RuleResult) Outcome {
	return Outcome{
		HasMatch:        len(results) > 0,
		MatchedRuleIDs:  matchedIDs(results),
		Output:          outputList(results),
		MultipleResults: true,
	}
}
