package hitpolicy

import (
	"sort"

	"tabular-hq/verdict/pkg/dmn"
	"tabular-hq/verdict/pkg/feel/builtins"
)

// priorityHandler implements PRIORITY: of all matching rules, the one whose
// output value sits earliest in the declared output-value list wins. The
// declared lists are ordered highest priority first, so ranking is by list
// position ascending. Decisions without declared output values cannot use
// PRIORITY; that is a contract violation, and the non-strict fallback takes
// the first match.
type priorityHandler struct {
	cfg Config
}

func (h *priorityHandler) Policy() dmn.HitPolicy { return dmn.HitPolicyPriority }

func (h *priorityHandler) Handle(results []RuleResult) Outcome {
	ranked := rankByOutputValues(results, h.cfg.OutputValues)
	out := Outcome{
		HasMatch:       len(ranked) > 0,
		MatchedRuleIDs: matchedIDs(ranked),
	}
	if len(ranked) > 0 {
		out.Output = ranked[0].Outputs
	}
	return out
}

// EvaluateRuleValidity requires at least one output clause with declared
// values; without one there is nothing to rank by.
func (h *priorityHandler) EvaluateRuleValidity(results []RuleResult, strictMode bool) error {
	if !hasDeclaredValues(h.cfg.OutputValues) {
		return &ViolationError{
			Policy:  dmn.HitPolicyPriority,
			Message: "no output values declared to rank by",
		}
	}
	return nil
}

// ComposeDecisionResults returns the highest-ranked match's outputs.
func (h *priorityHandler) ComposeDecisionResults(results []RuleResult) any {
	ranked := rankByOutputValues(results, h.cfg.OutputValues)
	if len(ranked) == 0 {
		return nil
	}
	return ranked[0].Outputs
}

func hasDeclaredValues(clauses []OutputValues) bool {
	for _, c := range clauses {
		if len(c.Values) > 0 {
			return true
		}
	}
	return false
}

// rankByOutputValues returns the results sorted highest priority first.
// Primary key is the position of each output value in its clause's declared
// list, clause by clause; values absent from the list rank below all listed
// ones. Ties fall back to the rule's numeric priority (lower wins, zero
// means unset and ranks last), then to rule order.
func rankByOutputValues(results []RuleResult, clauses []OutputValues) []RuleResult {
	ranked := append([]RuleResult(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		for _, clause := range clauses {
			if len(clause.Values) == 0 {
				continue
			}
			pa := valuePosition(clause, a.Outputs[clause.Name])
			pb := valuePosition(clause, b.Outputs[clause.Name])
			if pa != pb {
				return pa < pb
			}
		}
		if a.Priority != b.Priority {
			return rulePriorityRank(a.Priority) < rulePriorityRank(b.Priority)
		}
		return a.RuleIndex < b.RuleIndex
	})
	return ranked
}

// valuePosition locates a produced value in the clause's declared list by
// its canonical string form, so 100 matches a declared "100".
func valuePosition(clause OutputValues, value any) int {
	rendered := builtins.Stringify(value)
	for i, v := range clause.Values {
		if v == rendered {
			return i
		}
	}
	return len(clause.Values)
}

func rulePriorityRank(p int) int {
	if p == 0 {
		return int(^uint(0) >> 1) // unset ranks last
	}
	return p
}
