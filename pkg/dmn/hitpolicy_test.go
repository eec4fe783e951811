package dmn

import "testing"

func TestParseHitPolicy(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  HitPolicy
		known bool
	}{
		{"unique", "UNIQUE", HitPolicyUnique, true},
		{"first lowercase", "first", HitPolicyFirst, true},
		{"rule order attribute form", "RULE ORDER", HitPolicyRuleOrder, true},
		{"rule order internal form", "RULE_ORDER", HitPolicyRuleOrder, true},
		{"output order attribute form", "OUTPUT ORDER", HitPolicyOutputOrder, true},
		{"collect", "COLLECT", HitPolicyCollect, true},
		{"padded", "  priority  ", HitPolicyPriority, true},
		{"unknown falls back to first", "BOGUS", HitPolicyFirst, false},
		{"empty falls back to first", "", HitPolicyFirst, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := ParseHitPolicy(tt.input)
			if got != tt.want {
				t.Errorf("ParseHitPolicy(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if known != tt.known {
				t.Errorf("ParseHitPolicy(%q) known = %v, want %v", tt.input, known, tt.known)
			}
		})
	}
}

func TestHitPolicyAttributeValue(t *testing.T) {
	tests := []struct {
		policy HitPolicy
		want   string
	}{
		{HitPolicyUnique, "UNIQUE"},
		{HitPolicyRuleOrder, "RULE ORDER"},
		{HitPolicyOutputOrder, "OUTPUT ORDER"},
		{HitPolicyUnordered, "UNORDERED"},
	}

	for _, tt := range tests {
		if got := tt.policy.AttributeValue(); got != tt.want {
			t.Errorf("%s.AttributeValue() = %q, want %q", tt.policy, got, tt.want)
		}
	}
}

func TestParseAggregation(t *testing.T) {
	tests := []struct {
		input string
		want  Aggregation
		known bool
	}{
		{"SUM", AggregationSum, true},
		{"min", AggregationMin, true},
		{"MAX", AggregationMax, true},
		{"COUNT", AggregationCount, true},
		{"", AggregationNone, true},
		{"AVERAGE", AggregationNone, false},
	}

	for _, tt := range tests {
		got, known := ParseAggregation(tt.input)
		if got != tt.want || known != tt.known {
			t.Errorf("ParseAggregation(%q) = (%q, %v), want (%q, %v)",
				tt.input, got, known, tt.want, tt.known)
		}
	}
}

func TestHitPolicyMultipleResults(t *testing.T) {
	multi := []HitPolicy{HitPolicyCollect, HitPolicyRuleOrder, HitPolicyOutputOrder, HitPolicyUnordered}
	single := []HitPolicy{HitPolicyUnique, HitPolicyFirst, HitPolicyPriority, HitPolicyAny}

	for _, p := range multi {
		if !p.MultipleResults() {
			t.Errorf("%s.MultipleResults() = false, want true", p)
		}
	}
	for _, p := range single {
		if p.MultipleResults() {
			t.Errorf("%s.MultipleResults() = true, want false", p)
		}
	}
}
