package dmn

import "strings"

// HitPolicy determines which matching rules contribute to a decision result
// and how their outputs are composed. Values use the internal normalized form
// (underscores); the DMN XML attribute form uses spaces (see AttributeValue).
type HitPolicy string

const (
	HitPolicyUnique      HitPolicy = "UNIQUE"       // Exactly one rule may match
	HitPolicyFirst       HitPolicy = "FIRST"        // First match wins, iteration stops
	HitPolicyPriority    HitPolicy = "PRIORITY"     // Highest-priority output wins
	HitPolicyAny         HitPolicy = "ANY"          // All matches must agree
	HitPolicyCollect     HitPolicy = "COLLECT"      // All matches, optionally aggregated
	HitPolicyRuleOrder   HitPolicy = "RULE_ORDER"   // All matches in rule order
	HitPolicyOutputOrder HitPolicy = "OUTPUT_ORDER" // All matches in output-priority order
	HitPolicyUnordered   HitPolicy = "UNORDERED"    // All matches, order unspecified
)

// Aggregation reduces COLLECT results column-by-column across matches.
type Aggregation string

const (
	AggregationNone  Aggregation = ""      // No aggregation: list per output
	AggregationSum   Aggregation = "SUM"   // Numeric sum (non-numeric counts as 0)
	AggregationMin   Aggregation = "MIN"   // Minimum (NaN ignored)
	AggregationMax   Aggregation = "MAX"   // Maximum (NaN ignored)
	AggregationCount Aggregation = "COUNT" // Count of defined values
)

// ParseHitPolicy normalizes a hit-policy string from either the DMN XML
// attribute form ("RULE ORDER") or the internal form ("RULE_ORDER").
// The boolean reports whether the input named a known policy; unknown
// inputs return HitPolicyFirst so callers can degrade with a warning.
func ParseHitPolicy(s string) (HitPolicy, bool) {
	normalized := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), " ", "_")
	switch HitPolicy(normalized) {
	case HitPolicyUnique, HitPolicyFirst, HitPolicyPriority, HitPolicyAny,
		HitPolicyCollect, HitPolicyRuleOrder, HitPolicyOutputOrder, HitPolicyUnordered:
		return HitPolicy(normalized), true
	}
	return HitPolicyFirst, false
}

// ParseAggregation normalizes a COLLECT aggregator string. Empty input means
// no aggregation. The boolean reports whether the input was recognized.
func ParseAggregation(s string) (Aggregation, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	switch Aggregation(normalized) {
	case AggregationNone, AggregationSum, AggregationMin, AggregationMax, AggregationCount:
		return Aggregation(normalized), true
	}
	return AggregationNone, false
}

// Valid returns true if the policy is one of the eight DMN hit policies.
func (h HitPolicy) Valid() bool {
	_, ok := ParseHitPolicy(string(h))
	return ok && HitPolicy(strings.ReplaceAll(string(h), " ", "_")) == h
}

// AttributeValue returns the bit-exact DMN XML attribute form of the policy:
// uppercase with spaces ("RULE ORDER", "OUTPUT ORDER").
func (h HitPolicy) AttributeValue() string {
	return strings.ReplaceAll(string(h), "_", " ")
}

// MultipleResults returns true for policies that can emit more than one
// result row (COLLECT without aggregation, RULE ORDER, OUTPUT ORDER,
// UNORDERED).
func (h HitPolicy) MultipleResults() bool {
	switch h {
	case HitPolicyCollect, HitPolicyRuleOrder, HitPolicyOutputOrder, HitPolicyUnordered:
		return true
	}
	return false
}
