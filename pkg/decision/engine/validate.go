package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tabular-hq/verdict/pkg/dmn"
)

// ValidateByID resolves a stored decision by id and validates it. Unlike
// Execute it accepts decisions in any lifecycle state, so drafts can be
// checked before publishing.
func (e *TableEngine) ValidateByID(ctx context.Context, id string) (*ValidationReport, error) {
	d, err := e.source.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving decision %s: %w", id, err)
	}
	if d == nil {
		return nil, &NotFoundError{DecisionID: id}
	}
	return e.Validate(d), nil
}

// Validate checks a decision's structure without executing it. Errors mark
// tables the executor would reject or misread; warnings mark legal but
// suspect shapes.
func (e *TableEngine) Validate(d *dmn.Decision) *ValidationReport {
	return ValidateDecision(d)
}

// ValidateDecision is the check behind Validate. It is a plain function so
// lifecycle code can gate transitions on it without holding an engine.
func ValidateDecision(d *dmn.Decision) *ValidationReport {
	report := &ValidationReport{}
	if d == nil {
		report.Errors = append(report.Errors, ErrNilDecision.Error())
		return report
	}

	if len(d.Inputs) == 0 {
		report.Errors = append(report.Errors, "decision defines no inputs")
	}
	if len(d.Outputs) == 0 {
		report.Errors = append(report.Errors, "decision defines no outputs")
	}

	inputIDs := make(map[string]bool, len(d.Inputs))
	for _, in := range d.Inputs {
		inputIDs[in.ID] = true
	}
	outputIDs := make(map[string]bool, len(d.Outputs))
	for _, out := range d.Outputs {
		outputIDs[out.ID] = true
	}

	if len(d.Rules) == 0 {
		report.Warnings = append(report.Warnings, "decision has no rules; every execution will be a no-match")
	}

	for i, rule := range d.Rules {
		ruleID := rule.ID
		if ruleID == "" {
			ruleID = dmn.SyntheticRuleID(i)
		}

		for _, cond := range rule.Conditions {
			if !inputIDs[cond.InputID] {
				report.Errors = append(report.Errors,
					fmt.Sprintf("rule %s references unknown input %q", ruleID, cond.InputID))
			}
		}
		for _, out := range rule.Outputs {
			if !outputIDs[out.OutputID] {
				report.Errors = append(report.Errors,
					fmt.Sprintf("rule %s references unknown output %q", ruleID, out.OutputID))
			}
		}
		if len(rule.Conditions) == 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("rule %s has no conditions and matches every input", ruleID))
		}
	}

	switch d.HitPolicy {
	case dmn.HitPolicyPriority, dmn.HitPolicyOutputOrder:
		if !hasOutputValues(d) {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("hit policy %s has no declared output values; strict executions will fail", d.HitPolicy.AttributeValue()))
		}
	case dmn.HitPolicyUnique:
		report.Warnings = append(report.Warnings, uniqueOverlapWarnings(d)...)
	}

	report.Valid = len(report.Errors) == 0
	return report
}

func hasOutputValues(d *dmn.Decision) bool {
	for _, out := range d.Outputs {
		if len(out.Values) > 0 {
			return true
		}
	}
	return false
}

// uniqueOverlapWarnings flags rules whose condition sets are identical. This
// is a best-effort check: it catches exact duplicates, not every possible
// overlapping predicate pair.
func uniqueOverlapWarnings(d *dmn.Decision) []string {
	var warnings []string
	seen := make(map[string]string, len(d.Rules))
	for i, rule := range d.Rules {
		ruleID := rule.ID
		if ruleID == "" {
			ruleID = dmn.SyntheticRuleID(i)
		}
		sig := conditionSignature(rule)
		if prior, ok := seen[sig]; ok {
			warnings = append(warnings,
				fmt.Sprintf("rules %s and %s have identical conditions and would violate the UNIQUE hit policy together", prior, ruleID))
			continue
		}
		seen[sig] = ruleID
	}
	return warnings
}

// conditionSignature renders a rule's conditions order-independently.
func conditionSignature(rule *dmn.Rule) string {
	parts := make([]string, len(rule.Conditions))
	for i, cond := range rule.Conditions {
		parts[i] = fmt.Sprintf("%s|%s|%v", cond.InputID, normalizeOperator(cond.Operator), cond.Value)
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}
