package xml

import (
	"reflect"
	"strings"
	"testing"

	"tabular-hq/verdict/pkg/dmn"
)

func sampleDecision() *dmn.Decision {
	return &dmn.Decision{
		ID:          "id-123",
		DecisionKey: "loan_grading",
		Name:        "Loan Grading",
		Description: "Grades loan applications.",
		Version:     3,
		HitPolicy:   dmn.HitPolicyFirst,
		Inputs: []*dmn.DecisionInput{
			{ID: "in_age", Label: "Age", Expression: "age", Type: "number"},
			{ID: "in_tier", Label: "Tier", Expression: "tier", Type: "string"},
		},
		Outputs: []*dmn.DecisionOutput{
			{ID: "out_level", Label: "Level", Name: "level", Type: "string"},
		},
		Rules: []*dmn.Rule{
			{
				ID: "rule_adult_gold",
				Conditions: []*dmn.Condition{
					{InputID: "in_age", Operator: ">=", Value: 18.0},
					{InputID: "in_tier", Operator: "in", Value: []any{"gold", "silver"}},
				},
				Outputs: []*dmn.RuleOutput{{OutputID: "out_level", Value: "premium"}},
			},
			{
				ID: "rule_fallback",
				Conditions: []*dmn.Condition{
					{InputID: "in_age", Operator: "<", Value: 18.0},
				},
				Outputs: []*dmn.RuleOutput{{OutputID: "out_level", Value: "standard"}},
			},
		},
		RuleCount: 2,
	}
}

func TestEmitDocumentShape(t *testing.T) {
	decision := sampleDecision()
	decision.HitPolicy = dmn.HitPolicyRuleOrder

	data, err := Emit(decision, WithDefinitionsID("definitions_test"))
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	doc := string(data)

	for _, want := range []string{
		`xmlns="https://www.omg.org/spec/DMN/20191111/MODEL/"`,
		`xmlns:dmndi="https://www.omg.org/spec/DMN/20191111/DMNDI/"`,
		`xmlns:dc="http://www.omg.org/spec/DMN/20180521/DC/"`,
		`xmlns:di="http://www.omg.org/spec/DMN/20180521/DI/"`,
		`id="definitions_test"`,
		`exporter="verdict"`,
		`hitPolicy="RULE ORDER"`,
		`<decision id="loan_grading" name="Loan Grading">`,
		`id="inputEntry_0_0"`,
		`id="inputEntry_0_1"`,
		`id="inputEntry_1_0"`,
		`id="outputEntry_0_0"`,
		`<![CDATA[>= 18]]>`,
		`<![CDATA["gold", "silver"]]>`,
		`<![CDATA[-]]>`,
		`<![CDATA["premium"]]>`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q\n%s", want, doc)
		}
	}
	if !strings.HasPrefix(doc, "<?xml") {
		t.Error("document missing XML header")
	}
}

func TestEmitVersionSelection(t *testing.T) {
	tests := []struct {
		version Version
		xmlns   string
		dmndi   bool
	}{
		{DMN11, "http://www.omg.org/spec/DMN/20151101/dmn.xsd", false},
		{DMN12, "http://www.omg.org/spec/DMN/20180521/MODEL/", true},
		{DMN13, "https://www.omg.org/spec/DMN/20191111/MODEL/", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.version), func(t *testing.T) {
			data, err := Emit(sampleDecision(), WithVersion(tt.version))
			if err != nil {
				t.Fatalf("Emit: %v", err)
			}
			doc := string(data)
			if !strings.Contains(doc, `xmlns="`+tt.xmlns+`"`) {
				t.Errorf("missing model namespace %q", tt.xmlns)
			}
			if got := strings.Contains(doc, "xmlns:dmndi="); got != tt.dmndi {
				t.Errorf("dmndi namespace presence = %v, want %v", got, tt.dmndi)
			}
		})
	}
}

func TestEmitRejectsBadInput(t *testing.T) {
	if _, err := Emit(nil); err == nil {
		t.Error("nil decision must fail")
	}
	if _, err := EmitAll(nil); err == nil {
		t.Error("empty decision list must fail")
	}
	if _, err := Emit(sampleDecision(), WithVersion(Version("2.0"))); err == nil {
		t.Error("unsupported version must fail")
	}
}

func TestEmitCollectAggregation(t *testing.T) {
	decision := sampleDecision()
	decision.HitPolicy = dmn.HitPolicyCollect
	decision.Aggregation = dmn.AggregationSum

	data, err := Emit(decision)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(string(data), `hitPolicy="COLLECT" aggregation="SUM"`) {
		t.Errorf("missing aggregation attribute:\n%s", data)
	}

	// Aggregation is only meaningful for COLLECT.
	decision.HitPolicy = dmn.HitPolicyFirst
	data, err = Emit(decision)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if strings.Contains(string(data), "aggregation=") {
		t.Error("non-COLLECT table must not carry an aggregation attribute")
	}
}

// Emitted documents must parse back to the same semantic content, modulo
// synthesized ids and manager-assigned identity.
func TestXMLRoundTrip(t *testing.T) {
	original := &dmn.Decision{
		DecisionKey: "risk_rating",
		Name:        "Risk Rating",
		Description: "Maps exposure to a severity bucket.",
		HitPolicy:   dmn.HitPolicyCollect,
		Aggregation: dmn.AggregationSum,
		Inputs: []*dmn.DecisionInput{
			{ID: "in_exposure", Label: "Exposure", Expression: "exposure", Type: "number"},
			{ID: "in_region", Label: "Region", Expression: "region", Type: "string"},
		},
		Outputs: []*dmn.DecisionOutput{
			{ID: "out_points", Label: "Points", Name: "points", Type: "number"},
			{ID: "out_band", Label: "Band", Name: "band", Type: "string",
				Values: []string{"HIGH", "MEDIUM", "LOW"}},
		},
		Rules: []*dmn.Rule{
			{
				ID: "rule_high",
				Conditions: []*dmn.Condition{
					{InputID: "in_exposure", Operator: "between", Value: []any{50.0, 100.0}},
					{InputID: "in_region", Operator: "in", Value: []any{"emea", "apac"}},
				},
				Outputs: []*dmn.RuleOutput{
					{OutputID: "out_points", Value: 75.0},
					{OutputID: "out_band", Value: "HIGH"},
				},
			},
			{
				ID: "rule_low",
				Conditions: []*dmn.Condition{
					{InputID: "in_exposure", Operator: "<", Value: 50.0},
					{InputID: "in_region", Operator: "!=", Value: "emea"},
				},
				Outputs: []*dmn.RuleOutput{
					{OutputID: "out_points", Value: 10.0},
					{OutputID: "out_band", Value: "LOW"},
				},
			},
		},
		RuleCount: 2,
	}

	data, err := Emit(original, WithDefinitionsID("definitions_rt"))
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	result := Parse(data)
	if !result.OK() {
		t.Fatalf("re-parse failed: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("re-parse warnings: %v", result.Warnings)
	}

	drafts := result.Drafts("")
	if len(drafts) != 1 {
		t.Fatalf("drafts = %d, want 1", len(drafts))
	}
	got := drafts[0]

	if got.DecisionKey != original.DecisionKey {
		t.Errorf("key = %q, want %q", got.DecisionKey, original.DecisionKey)
	}
	if got.Name != original.Name || got.Description != original.Description {
		t.Errorf("name/description = %q/%q", got.Name, got.Description)
	}
	if got.HitPolicy != original.HitPolicy || got.Aggregation != original.Aggregation {
		t.Errorf("policy = %q/%q", got.HitPolicy, got.Aggregation)
	}

	if !reflect.DeepEqual(got.Inputs, original.Inputs) {
		t.Errorf("inputs round trip:\ngot  %+v\nwant %+v", got.Inputs, original.Inputs)
	}
	if !reflect.DeepEqual(got.Outputs, original.Outputs) {
		t.Errorf("outputs round trip:\ngot  %+v\nwant %+v", got.Outputs, original.Outputs)
	}
	if !reflect.DeepEqual(got.Rules, original.Rules) {
		t.Errorf("rules round trip:\ngot  %+v\nwant %+v", got.Rules, original.Rules)
	}
}
