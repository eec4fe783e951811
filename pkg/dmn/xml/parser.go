package xml

import (
	encxml "encoding/xml"
	"fmt"
	"strings"

	"tabular-hq/verdict/pkg/dmn"
)

// element is a generic XML tree node. The parser matches on local names only,
// so vendor namespace prefixes (dmn:, camunda:, semantic:) never matter.
type element struct {
	XMLName  encxml.Name
	Attrs    []encxml.Attr `xml:",any,attr"`
	Children []element     `xml:",any"`
	Text     string        `xml:",chardata"`
}

func (e *element) attr(local string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func (e *element) child(local string) *element {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == local {
			return &e.Children[i]
		}
	}
	return nil
}

// entryTexts collects the unary-test text of each inputEntry or outputEntry
// child. Conformant documents nest the text in a text element; bare chardata
// is tolerated.
func (e *element) entryTexts(local string) []string {
	var texts []string
	for i := range e.Children {
		child := &e.Children[i]
		if child.XMLName.Local != local {
			continue
		}
		if t := child.child("text"); t != nil {
			texts = append(texts, strings.TrimSpace(t.Text))
			continue
		}
		texts = append(texts, strings.TrimSpace(child.Text))
	}
	return texts
}

func (e *element) childText(local string) string {
	if c := e.child(local); c != nil {
		return strings.TrimSpace(c.Text)
	}
	return ""
}

// Parse reads a DMN document. It never returns a Go error: syntax failures
// and structural problems come back in ParseResult.Errors, recoverable
// oddities in ParseResult.Warnings.
func Parse(data []byte) *ParseResult {
	result := &ParseResult{}

	var root element
	if err := encxml.Unmarshal(data, &root); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("invalid XML: %v", err))
		return result
	}

	defs := findDefinitions(&root)
	if defs == nil {
		result.Errors = append(result.Errors, "no definitions element found")
		return result
	}

	version, known := detectVersion(defs.XMLName.Space)
	if !known {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("unknown DMN namespace %q, assuming DMN 1.3", defs.XMLName.Space))
	}

	parsed := &Definitions{
		ID:        defs.attr("id"),
		Name:      defs.attr("name"),
		Namespace: defs.attr("namespace"),
		Exporter:  defs.attr("exporter"),
		Version:   version,
	}

	for i := range defs.Children {
		child := &defs.Children[i]
		if child.XMLName.Local != "decision" {
			continue
		}
		parsed.Decisions = append(parsed.Decisions, parseDecision(child, result))
	}
	if len(parsed.Decisions) == 0 {
		result.Warnings = append(result.Warnings, "definitions contains no decisions")
	}

	result.Definitions = parsed
	return result
}

// findDefinitions locates the definitions element, depth first, so documents
// wrapped in envelopes still parse.
func findDefinitions(e *element) *element {
	if e.XMLName.Local == "definitions" {
		return e
	}
	for i := range e.Children {
		if found := findDefinitions(&e.Children[i]); found != nil {
			return found
		}
	}
	return nil
}

func parseDecision(e *element, result *ParseResult) *DecisionElement {
	decision := &DecisionElement{
		ID:          e.attr("id"),
		Name:        e.attr("name"),
		Description: e.childText("description"),
	}

	if v := e.child("variable"); v != nil {
		decision.Variable = &Variable{
			ID:      v.attr("id"),
			Name:    v.attr("name"),
			TypeRef: v.attr("typeRef"),
		}
	}

	for i := range e.Children {
		child := &e.Children[i]
		switch child.XMLName.Local {
		case "informationRequirement":
			for j := range child.Children {
				req := &child.Children[j]
				switch req.XMLName.Local {
				case "requiredDecision", "requiredInput":
					if href := req.attr("href"); href != "" {
						decision.Requirements.Information = append(decision.Requirements.Information, href)
					}
				}
			}
		case "authorityRequirement":
			for j := range child.Children {
				req := &child.Children[j]
				if req.XMLName.Local == "requiredAuthority" {
					if href := req.attr("href"); href != "" {
						decision.Requirements.Authority = append(decision.Requirements.Authority, href)
					}
				}
			}
		}
	}

	if table := e.child("decisionTable"); table != nil {
		decision.Table = parseTable(table, decision, result)
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("decision %q has no decision table", decisionLabel(decision)))
	}
	return decision
}

func parseTable(e *element, decision *DecisionElement, result *ParseResult) *DecisionTable {
	table := &DecisionTable{
		ID:        e.attr("id"),
		HitPolicy: dmn.HitPolicyUnique,
	}

	if raw := e.attr("hitPolicy"); raw != "" {
		policy, ok := dmn.ParseHitPolicy(raw)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("unknown hit policy %q in decision %q, defaulting to FIRST",
					raw, decisionLabel(decision)))
		}
		table.HitPolicy = policy
	}
	if raw := e.attr("aggregation"); raw != "" {
		agg, ok := dmn.ParseAggregation(raw)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("unknown aggregation %q in decision %q ignored",
					raw, decisionLabel(decision)))
		}
		table.Aggregation = agg
	}

	inputIndex := 0
	for i := range e.Children {
		child := &e.Children[i]
		switch child.XMLName.Local {
		case "input":
			table.Inputs = append(table.Inputs, parseInput(child, inputIndex))
			inputIndex++
		case "output":
			table.Outputs = append(table.Outputs, parseOutput(child, len(table.Outputs)))
		}
	}

	ruleIndex := 0
	for i := range e.Children {
		child := &e.Children[i]
		if child.XMLName.Local != "rule" {
			continue
		}
		table.Rules = append(table.Rules, parseRule(child, ruleIndex, table, decision, result))
		ruleIndex++
	}
	return table
}

func parseInput(e *element, index int) *dmn.DecisionInput {
	input := &dmn.DecisionInput{
		ID:    e.attr("id"),
		Label: e.attr("label"),
	}
	if input.ID == "" {
		input.ID = fmt.Sprintf("input_%d", index)
	}
	if expr := e.child("inputExpression"); expr != nil {
		input.Type = expr.attr("typeRef")
		input.Expression = expr.childText("text")
	}
	if input.Expression == "" {
		input.Expression = input.Label
	}
	return input
}

func parseOutput(e *element, index int) *dmn.DecisionOutput {
	output := &dmn.DecisionOutput{
		ID:    e.attr("id"),
		Label: e.attr("label"),
		Name:  e.attr("name"),
		Type:  e.attr("typeRef"),
	}
	if output.ID == "" {
		output.ID = fmt.Sprintf("output_%d", index)
	}
	if output.Name == "" {
		output.Name = output.Label
	}
	if output.Name == "" {
		output.Name = output.ID
	}
	if ov := e.child("outputValues"); ov != nil {
		raw := ov.childText("text")
		for _, part := range splitTopLevel(raw, ',') {
			if part == "" {
				continue
			}
			unquoted, _ := stripQuotes(part)
			output.Values = append(output.Values, unquoted)
		}
	}
	if def := e.child("defaultOutputEntry"); def != nil {
		if text := def.childText("text"); text != "" {
			output.DefaultValue = parseValue(text, output.Type)
		}
	}
	return output
}

func parseRule(e *element, index int, table *DecisionTable, decision *DecisionElement, result *ParseResult) *dmn.Rule {
	rule := &dmn.Rule{ID: e.attr("id")}
	if rule.ID == "" {
		rule.ID = dmn.SyntheticRuleID(index)
	}
	rule.Description = e.childText("description")

	inputEntries := e.entryTexts("inputEntry")
	if len(inputEntries) != len(table.Inputs) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("rule %d of decision %q has %d input entries, table declares %d inputs",
				index+1, decisionLabel(decision), len(inputEntries), len(table.Inputs)))
	}
	for i, text := range inputEntries {
		if i >= len(table.Inputs) {
			break
		}
		input := table.Inputs[i]
		operator, value, ok := ParseConditionText(text, input.Type)
		if !ok {
			continue // unconstrained entry
		}
		rule.Conditions = append(rule.Conditions, &dmn.Condition{
			InputID:  input.ID,
			Operator: operator,
			Value:    value,
		})
	}

	outputEntries := e.entryTexts("outputEntry")
	if len(outputEntries) != len(table.Outputs) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("rule %d of decision %q has %d output entries, table declares %d outputs",
				index+1, decisionLabel(decision), len(outputEntries), len(table.Outputs)))
	}
	for i, text := range outputEntries {
		if i >= len(table.Outputs) {
			break
		}
		if text == "" {
			continue // undefined output
		}
		output := table.Outputs[i]
		rule.Outputs = append(rule.Outputs, &dmn.RuleOutput{
			OutputID: output.ID,
			Value:    parseValue(text, output.Type),
		})
	}
	return rule
}

func decisionLabel(d *DecisionElement) string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}
