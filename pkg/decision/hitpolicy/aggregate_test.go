package hitpolicy

import (
	"math"
	"reflect"
	"testing"

	"tabular-hq/verdict/pkg/dmn"
)

func TestAggregateSum(t *testing.T) {
	tests := []struct {
		name    string
		results []RuleResult
		want    float64
	}{
		{
			name: "numbers",
			results: []RuleResult{
				res("rule_0", 0, map[string]any{"bonus": 100.0}),
				res("rule_1", 1, map[string]any{"bonus": 200.0}),
			},
			want: 300,
		},
		{
			name: "numeric strings parse",
			results: []RuleResult{
				res("rule_0", 0, map[string]any{"bonus": "100"}),
				res("rule_1", 1, map[string]any{"bonus": 200.0}),
			},
			want: 300,
		},
		{
			name: "non-numeric counts as zero",
			results: []RuleResult{
				res("rule_0", 0, map[string]any{"bonus": "n/a"}),
				res("rule_1", 1, map[string]any{"bonus": 200.0}),
			},
			want: 200,
		},
		{
			name: "int outputs",
			results: []RuleResult{
				res("rule_0", 0, map[string]any{"bonus": 1}),
				res("rule_1", 1, map[string]any{"bonus": 2}),
			},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.results, dmn.AggregationSum)
			if !reflect.DeepEqual(got, map[string]any{"bonus": tt.want}) {
				t.Errorf("Aggregate(SUM) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregateMinMax(t *testing.T) {
	results := []RuleResult{
		res("rule_0", 0, map[string]any{"score": 30.0}),
		res("rule_1", 1, map[string]any{"score": 10.0}),
		res("rule_2", 2, map[string]any{"score": 20.0}),
	}

	if got := Aggregate(results, dmn.AggregationMin); !reflect.DeepEqual(got, map[string]any{"score": 10.0}) {
		t.Errorf("Aggregate(MIN) = %v", got)
	}
	if got := Aggregate(results, dmn.AggregationMax); !reflect.DeepEqual(got, map[string]any{"score": 30.0}) {
		t.Errorf("Aggregate(MAX) = %v", got)
	}
}

func TestAggregateMinMaxIgnoreNaNAndNonNumeric(t *testing.T) {
	results := []RuleResult{
		res("rule_0", 0, map[string]any{"score": math.NaN()}),
		res("rule_1", 1, map[string]any{"score": "n/a"}),
		res("rule_2", 2, map[string]any{"score": 20.0}),
	}
	if got := Aggregate(results, dmn.AggregationMin); !reflect.DeepEqual(got, map[string]any{"score": 20.0}) {
		t.Errorf("Aggregate(MIN) = %v, want NaN and non-numeric skipped", got)
	}

	empty := []RuleResult{
		res("rule_0", 0, map[string]any{"score": "n/a"}),
	}
	got := Aggregate(empty, dmn.AggregationMax)
	if got["score"] != nil {
		t.Errorf("Aggregate(MAX) with no numeric values = %v, want nil", got["score"])
	}
}

func TestAggregateCount(t *testing.T) {
	results := []RuleResult{
		res("rule_0", 0, map[string]any{"flag": true, "note": "x"}),
		res("rule_1", 1, map[string]any{"flag": nil}),
		res("rule_2", 2, map[string]any{"flag": false}),
	}
	got := Aggregate(results, dmn.AggregationCount)

	// Null values are defined and count; absent keys do not.
	if got["flag"] != 3.0 {
		t.Errorf("count(flag) = %v, want 3", got["flag"])
	}
	if got["note"] != 1.0 {
		t.Errorf("count(note) = %v, want 1", got["note"])
	}
}

func TestAggregateNoneCollectsPerColumn(t *testing.T) {
	results := []RuleResult{
		res("rule_0", 0, map[string]any{"step": "a"}),
		res("rule_1", 1, map[string]any{"step": "b"}),
	}
	got := Aggregate(results, dmn.AggregationNone)
	want := map[string]any{"step": []any{"a", "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate(none) = %v, want %v", got, want)
	}
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil, dmn.AggregationSum)
	if len(got) != 0 {
		t.Errorf("Aggregate(nil) = %v, want empty object", got)
	}
}

func TestDedupResults(t *testing.T) {
	results := []RuleResult{
		res("rule_0", 0, map[string]any{"v": 1.0}),
		res("rule_1", 1, map[string]any{"v": 1}), // equal by value to rule_0
		res("rule_2", 2, map[string]any{"v": 2.0}),
		res("rule_3", 3, map[string]any{"v": 1.0}),
	}
	deduped := dedupResults(results)
	if len(deduped) != 2 {
		t.Fatalf("dedupResults() kept %d, want 2", len(deduped))
	}
	if deduped[0].RuleID != "rule_0" || deduped[1].RuleID != "rule_2" {
		t.Errorf("kept = %s, %s; want first occurrences", deduped[0].RuleID, deduped[1].RuleID)
	}
}
