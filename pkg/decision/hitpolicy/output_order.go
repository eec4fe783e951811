package hitpolicy

import "tabular-hq/verdict/pkg/dmn"

// outputOrderHandler implements OUTPUT ORDER: every match contributes one
// output object, sorted by the position of its output values in the declared
// output-value lists. Like PRIORITY, a decision without declared output
// values cannot use it; the non-strict fallback is rule order, which the
// rank sort degrades to when no clause has values.
type outputOrderHandler struct {
	cfg Config
}

func (h *outputOrderHandler) Policy() dmn.HitPolicy { return dmn.HitPolicyOutputOrder }

func (h *outputOrderHandler) Handle(results []RuleResult) Outcome {
	ranked := rankByOutputValues(results, h.cfg.OutputValues)
	return Outcome{
		HasMatch:        len(ranked) > 0,
		MatchedRuleIDs:  matchedIDs(ranked),
		Output:          outputList(ranked),
		MultipleResults: true,
	}
}

// EvaluateRuleValidity requires at least one output clause with declared
// values, same as PRIORITY.
func (h *outputOrderHandler) EvaluateRuleValidity(results []RuleResult, strictMode bool) error {
	if !hasDeclaredValues(h.cfg.OutputValues) {
		return &ViolationError{
			Policy:  dmn.HitPolicyOutputOrder,
			Message: "no output values declared to order by",
		}
	}
	return nil
}

// ComposeDecisionResults returns the matches sorted highest priority first.
func (h *outputOrderHandler) ComposeDecisionResults(results []RuleResult) any {
	return outputList(rankByOutputValues(results, h.cfg.OutputValues))
}
