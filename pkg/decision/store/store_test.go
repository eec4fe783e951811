package store

import (
	"time"

	"tabular-hq/verdict/pkg/dmn"
)

// testDecision builds a persistable decision. CreateTime advances with the
// version so ordering assertions have distinct instants.
func testDecision(id, key string, version int, status dmn.DecisionStatus) *dmn.Decision {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	created := base.Add(time.Duration(version) * time.Minute)

	d := &dmn.Decision{
		ID:          id,
		DecisionKey: key,
		Name:        "Decision " + key,
		Description: "test fixture",
		Category:    "scoring",
		Version:     version,
		Status:      status,
		CreateTime:  created,
		UpdateTime:  created,
		HitPolicy:   dmn.HitPolicyFirst,
		Inputs: []*dmn.DecisionInput{
			{ID: "in_age", Label: "Age", Expression: "age", Type: "number"},
		},
		Outputs: []*dmn.DecisionOutput{
			{ID: "out_level", Label: "Level", Name: "level", Type: "string"},
		},
		Rules: []*dmn.Rule{
			{
				ID: "rule_adult",
				Conditions: []*dmn.Condition{
					{InputID: "in_age", Operator: ">=", Value: 18.0},
				},
				Outputs: []*dmn.RuleOutput{
					{OutputID: "out_level", Value: "adult"},
				},
			},
		},
		RuleCount: 1,
	}
	if status == dmn.StatusPublished || status == dmn.StatusSuspended {
		published := created.Add(30 * time.Second)
		d.PublishTime = &published
	}
	return d
}
