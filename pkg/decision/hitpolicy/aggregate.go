package hitpolicy

import (
	"math"

	"tabular-hq/verdict/pkg/dmn"
	"tabular-hq/verdict/pkg/feel/builtins"
)

// Aggregate reduces matched results column by column. Each output name seen
// across the results becomes a key of the returned object; the aggregator
// decides the value:
//
//	SUM    adds the numeric values; entries that do not parse count as 0
//	MIN    smallest numeric value, NaN and non-numeric entries ignored
//	MAX    largest numeric value, NaN and non-numeric entries ignored
//	COUNT  number of results that define the output at all
//	none   the raw values as a list, in match order
//
// An empty result set aggregates to an empty object.
func Aggregate(results []RuleResult, agg dmn.Aggregation) map[string]any {
	out := make(map[string]any)
	for _, name := range outputNames(results) {
		switch agg {
		case dmn.AggregationSum:
			out[name] = aggregateSum(results, name)
		case dmn.AggregationMin:
			out[name] = aggregateExtreme(results, name, func(v, best float64) bool { return v < best })
		case dmn.AggregationMax:
			out[name] = aggregateExtreme(results, name, func(v, best float64) bool { return v > best })
		case dmn.AggregationCount:
			out[name] = aggregateCount(results, name)
		default:
			out[name] = aggregateValues(results, name)
		}
	}
	return out
}

// dedupResults collapses results with identical output tuples, keeping the
// first occurrence. DMN 1.1 COLLECT semantics.
func dedupResults(results []RuleResult) []RuleResult {
	deduped := make([]RuleResult, 0, len(results))
	for _, r := range results {
		duplicate := false
		for _, kept := range deduped {
			if sameOutputs(kept.Outputs, r.Outputs) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			deduped = append(deduped, r)
		}
	}
	return deduped
}

// outputNames returns every output name the results define.
func outputNames(results []RuleResult) []string {
	var names []string
	seen := make(map[string]bool)
	for _, r := range results {
		for out := range r.Outputs {
			if !seen[out] {
				seen[out] = true
				names = append(names, out)
			}
		}
	}
	return names
}

func aggregateSum(results []RuleResult, name string) float64 {
	var sum float64
	for _, r := range results {
		v, ok := r.Outputs[name]
		if !ok {
			continue
		}
		if n, ok := aggregateNumber(v); ok && !math.IsNaN(n) {
			sum += n
		}
	}
	return sum
}

func aggregateExtreme(results []RuleResult, name string, better func(v, best float64) bool) any {
	var best float64
	found := false
	for _, r := range results {
		v, ok := r.Outputs[name]
		if !ok {
			continue
		}
		n, ok := aggregateNumber(v)
		if !ok || math.IsNaN(n) {
			continue
		}
		if !found || better(n, best) {
			best = n
			found = true
		}
	}
	if !found {
		return nil
	}
	return best
}

func aggregateCount(results []RuleResult, name string) float64 {
	var count float64
	for _, r := range results {
		if _, ok := r.Outputs[name]; ok {
			count++
		}
	}
	return count
}

func aggregateValues(results []RuleResult, name string) []any {
	values := make([]any, 0, len(results))
	for _, r := range results {
		if v, ok := r.Outputs[name]; ok {
			values = append(values, v)
		}
	}
	return values
}

// aggregateNumber coerces an output value for aggregation: numbers pass
// through, numeric strings parse.
func aggregateNumber(v any) (float64, bool) {
	if n, ok := builtins.ToNumber(v); ok {
		return n, true
	}
	if s, ok := v.(string); ok {
		return builtins.ParseNumber(s)
	}
	return 0, false
}
