package hitpolicy

import "tabular-hq/verdict/pkg/dmn"

// collectHandler implements COLLECT without an aggregator: every match
// contributes one output object to the result list, in rule order. With
// ForceDMN11 set, matches whose output tuples are identical collapse to one,
// matching DMN 1.1 semantics.
type collectHandler struct {
	cfg Config
}

func (h *collectHandler) Policy() dmn.HitPolicy { return dmn.HitPolicyCollect }

func (h *collectHandler) Handle(results []RuleResult) Outcome {
	if h.cfg.ForceDMN11 {
		results = dedupResults(results)
	}
	return Outcome{
		HasMatch:        len(results) > 0,
		MatchedRuleIDs:  matchedIDs(results),
		Output:          outputList(results),
		MultipleResults: true,
	}
}

// collectAggregateHandler implements COLLECT with a SUM, MIN, MAX or COUNT
// aggregator: matches are reduced column by column into a single object.
type collectAggregateHandler struct {
	collectHandler
}

func (h *collectAggregateHandler) Handle(results []RuleResult) Outcome {
	if h.cfg.ForceDMN11 {
		results = dedupResults(results)
	}
	return Outcome{
		HasMatch:         len(results) > 0,
		MatchedRuleIDs:   matchedIDs(results),
		Output:           Aggregate(results, h.cfg.Aggregation),
		NeedsAggregation: true,
	}
}

// ComposeDecisionResults reduces the matches with the configured aggregator.
func (h *collectAggregateHandler) ComposeDecisionResults(results []RuleResult) any {
	if h.cfg.ForceDMN11 {
		results = dedupResults(results)
	}
	return Aggregate(results, h.cfg.Aggregation)
}
