package xml

import (
	"fmt"

	"tabular-hq/verdict/pkg/dmn"
)

// ValidationResult reports whether a DMN document is usable, with the full
// list of findings.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ValidateXML parses a document and checks the structural minimum every
// executable table needs: at least one input clause and one output clause.
// Zero rules and condition-free rules are reported as warnings.
func ValidateXML(data []byte) *ValidationResult {
	parsed := Parse(data)
	result := &ValidationResult{
		Errors:   parsed.Errors,
		Warnings: parsed.Warnings,
	}
	if parsed.Definitions != nil {
		for _, decision := range parsed.Definitions.Decisions {
			validateDecisionElement(decision, result)
		}
	}
	result.Valid = len(result.Errors) == 0
	return result
}

func validateDecisionElement(decision *DecisionElement, result *ValidationResult) {
	label := decisionLabel(decision)
	if decision.Table == nil {
		return // already warned by the parser
	}
	if len(decision.Table.Inputs) == 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("decision %q has no inputs", label))
	}
	if len(decision.Table.Outputs) == 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("decision %q has no outputs", label))
	}
	if len(decision.Table.Rules) == 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("decision %q has no rules", label))
	}
	for i, rule := range decision.Table.Rules {
		if len(rule.Conditions) == 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("rule %d of decision %q has no conditions and matches everything", i+1, label))
		}
	}
}

// ToCreateRequests parses a document and converts every decision element
// into a draft ready for the lifecycle manager. Identity fields the manager
// assigns (id, version, timestamps) stay zero. The ParseResult carries any
// errors and warnings; drafts are only produced when parsing succeeded.
func ToCreateRequests(data []byte, tenantID string) ([]*dmn.Decision, *ParseResult) {
	parsed := Parse(data)
	if !parsed.OK() {
		return nil, parsed
	}
	return parsed.Drafts(tenantID), parsed
}

// Drafts converts the parsed decision elements into decision drafts. The
// element id becomes the decision key; elements without a table are skipped.
func (r *ParseResult) Drafts(tenantID string) []*dmn.Decision {
	if r.Definitions == nil {
		return nil
	}
	var drafts []*dmn.Decision
	for i, decision := range r.Definitions.Decisions {
		if decision.Table == nil {
			continue
		}
		draft := &dmn.Decision{
			DecisionKey: draftKey(decision, i),
			Name:        decision.Name,
			Description: decision.Description,
			TenantID:    tenantID,
			Status:      dmn.StatusDraft,
			HitPolicy:   decision.Table.HitPolicy,
			Aggregation: decision.Table.Aggregation,
			Inputs:      decision.Table.Inputs,
			Outputs:     decision.Table.Outputs,
			Rules:       decision.Table.Rules,
		}
		if draft.Name == "" {
			draft.Name = draft.DecisionKey
		}
		draft.SyncRuleCount()
		drafts = append(drafts, draft)
	}
	return drafts
}

func draftKey(decision *DecisionElement, index int) string {
	if decision.ID != "" {
		return decision.ID
	}
	if decision.Name != "" {
		return decision.Name
	}
	return fmt.Sprintf("decision_%d", index)
}
