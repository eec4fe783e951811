package xml

import (
	encxml "encoding/xml"
	"fmt"

	"github.com/google/uuid"

	"tabular-hq/verdict/pkg/dmn"
)

// Exporter metadata stamped on emitted definitions.
const (
	exporterName    = "verdict"
	exporterVersion = "0.1.0"
)

// defaultModelNamespace is the namespace attribute emitted when the caller
// does not supply one. It identifies the model, not the DMN schema.
const defaultModelNamespace = "https://verdict.tabular-hq.dev/dmn"

// Option adjusts how Emit renders a document.
type Option func(*emitOptions)

type emitOptions struct {
	version       Version
	definitionsID string
	namespace     string
}

// WithVersion selects the DMN release to emit. The default is 1.3.
func WithVersion(v Version) Option {
	return func(o *emitOptions) { o.version = v }
}

// WithDefinitionsID overrides the generated definitions id, for callers that
// need byte-stable output.
func WithDefinitionsID(id string) Option {
	return func(o *emitOptions) { o.definitionsID = id }
}

// WithNamespace overrides the model namespace attribute.
func WithNamespace(ns string) Option {
	return func(o *emitOptions) { o.namespace = ns }
}

// Emit renders one decision as a standalone DMN document.
func Emit(decision *dmn.Decision, opts ...Option) ([]byte, error) {
	if decision == nil {
		return nil, fmt.Errorf("emit: nil decision")
	}
	return EmitAll([]*dmn.Decision{decision}, opts...)
}

// EmitAll renders several decisions into one definitions document.
func EmitAll(decisions []*dmn.Decision, opts ...Option) ([]byte, error) {
	options := emitOptions{version: DMN13, namespace: defaultModelNamespace}
	for _, opt := range opts {
		opt(&options)
	}
	if !options.version.Valid() {
		return nil, fmt.Errorf("emit: unsupported DMN version %q", options.version)
	}
	if len(decisions) == 0 {
		return nil, fmt.Errorf("emit: no decisions")
	}
	for _, d := range decisions {
		if d == nil {
			return nil, fmt.Errorf("emit: nil decision")
		}
	}
	if options.definitionsID == "" {
		options.definitionsID = "definitions_" + uuid.New().String()[:8]
	}

	doc := xmlDefinitions{
		Xmlns:           options.version.ModelNamespace(),
		ID:              options.definitionsID,
		Name:            definitionsName(decisions),
		Namespace:       options.namespace,
		Exporter:        exporterName,
		ExporterVersion: exporterVersion,
	}
	switch options.version {
	case DMN12:
		doc.XmlnsDMNDI = namespaceDMNDI12
		doc.XmlnsDC = namespaceDC
		doc.XmlnsDI = namespaceDI
	case DMN13:
		doc.XmlnsDMNDI = namespaceDMNDI13
		doc.XmlnsDC = namespaceDC
		doc.XmlnsDI = namespaceDI
	}

	for _, d := range decisions {
		doc.Decisions = append(doc.Decisions, emitDecision(d))
	}

	body, err := encxml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}
	return append([]byte(encxml.Header), body...), nil
}

func definitionsName(decisions []*dmn.Decision) string {
	if decisions[0].Name != "" {
		return decisions[0].Name
	}
	return "definitions"
}

func emitDecision(d *dmn.Decision) xmlDecision {
	decision := xmlDecision{
		ID:          decisionElementID(d),
		Name:        d.Name,
		Description: d.Description,
		Table: &xmlDecisionTable{
			ID:        "decisionTable_" + decisionElementID(d),
			HitPolicy: d.HitPolicy.AttributeValue(),
		},
	}
	if d.HitPolicy == dmn.HitPolicyCollect && d.Aggregation != dmn.AggregationNone {
		decision.Table.Aggregation = string(d.Aggregation)
	}

	for _, in := range d.Inputs {
		decision.Table.Inputs = append(decision.Table.Inputs, xmlInput{
			ID:    in.ID,
			Label: in.Label,
			Expression: xmlExpression{
				ID:      "inputExpression_" + in.ID,
				TypeRef: in.Type,
				Text:    in.Expression,
			},
		})
	}
	for _, out := range d.Outputs {
		decision.Table.Outputs = append(decision.Table.Outputs, emitOutput(out))
	}
	for r, rule := range d.Rules {
		decision.Table.Rules = append(decision.Table.Rules, emitRule(d, rule, r))
	}
	return decision
}

// decisionElementID prefers the stable decision key over the version-scoped
// storage id so re-exports of new versions keep the same element id.
func decisionElementID(d *dmn.Decision) string {
	if d.DecisionKey != "" {
		return d.DecisionKey
	}
	return d.ID
}

func emitOutput(out *dmn.DecisionOutput) xmlOutput {
	emitted := xmlOutput{
		ID:      out.ID,
		Label:   out.Label,
		Name:    out.Name,
		TypeRef: out.Type,
	}
	if len(out.Values) > 0 {
		parts := make([]string, len(out.Values))
		for i, v := range out.Values {
			parts[i] = formatLiteral(v)
		}
		emitted.OutputValues = &xmlUnaryTests{
			ID:   "outputValues_" + out.ID,
			Text: joinComma(parts),
		}
	}
	if out.DefaultValue != nil {
		emitted.Default = &xmlLiteralExpression{
			ID:   "defaultOutputEntry_" + out.ID,
			Text: formatLiteral(out.DefaultValue),
		}
	}
	return emitted
}

func emitRule(d *dmn.Decision, rule *dmn.Rule, r int) xmlRule {
	emitted := xmlRule{
		ID:          rule.ID,
		Description: rule.Description,
	}
	if emitted.ID == "" {
		emitted.ID = dmn.SyntheticRuleID(r)
	}

	for c, in := range d.Inputs {
		text := "-"
		if cond := firstCondition(rule, in.ID); cond != nil {
			text = FormatConditionText(cond.Operator, cond.Value)
		}
		emitted.InputEntries = append(emitted.InputEntries, xmlEntry{
			ID:   fmt.Sprintf("inputEntry_%d_%d", r, c),
			Text: xmlCDATA{Text: text},
		})
	}
	for c, out := range d.Outputs {
		text := ""
		if ro := rule.GetOutput(out.ID); ro != nil {
			text = formatLiteral(ro.Value)
		}
		emitted.OutputEntries = append(emitted.OutputEntries, xmlEntry{
			ID:   fmt.Sprintf("outputEntry_%d_%d", r, c),
			Text: xmlCDATA{Text: text},
		})
	}
	return emitted
}

// firstCondition returns the rule's condition on the given input clause. A
// DMN entry holds a single unary test, so only the first condition per
// clause is representable.
func firstCondition(rule *dmn.Rule, inputID string) *dmn.Condition {
	for _, cond := range rule.Conditions {
		if cond.InputID == inputID {
			return cond
		}
	}
	return nil
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// Marshal structures. Rule entry text uses CDATA; clause-level text elements
// use plain character data.

type xmlDefinitions struct {
	XMLName         encxml.Name   `xml:"definitions"`
	Xmlns           string        `xml:"xmlns,attr"`
	XmlnsDMNDI      string        `xml:"xmlns:dmndi,attr,omitempty"`
	XmlnsDC         string        `xml:"xmlns:dc,attr,omitempty"`
	XmlnsDI         string        `xml:"xmlns:di,attr,omitempty"`
	ID              string        `xml:"id,attr"`
	Name            string        `xml:"name,attr"`
	Namespace       string        `xml:"namespace,attr"`
	Exporter        string        `xml:"exporter,attr"`
	ExporterVersion string        `xml:"exporterVersion,attr"`
	Decisions       []xmlDecision `xml:"decision"`
}

type xmlDecision struct {
	ID          string            `xml:"id,attr"`
	Name        string            `xml:"name,attr"`
	Description string            `xml:"description,omitempty"`
	Table       *xmlDecisionTable `xml:"decisionTable"`
}

type xmlDecisionTable struct {
	ID          string      `xml:"id,attr"`
	HitPolicy   string      `xml:"hitPolicy,attr"`
	Aggregation string      `xml:"aggregation,attr,omitempty"`
	Inputs      []xmlInput  `xml:"input"`
	Outputs     []xmlOutput `xml:"output"`
	Rules       []xmlRule   `xml:"rule"`
}

type xmlInput struct {
	ID         string        `xml:"id,attr"`
	Label      string        `xml:"label,attr,omitempty"`
	Expression xmlExpression `xml:"inputExpression"`
}

type xmlExpression struct {
	ID      string `xml:"id,attr,omitempty"`
	TypeRef string `xml:"typeRef,attr,omitempty"`
	Text    string `xml:"text"`
}

type xmlOutput struct {
	ID           string                `xml:"id,attr"`
	Label        string                `xml:"label,attr,omitempty"`
	Name         string                `xml:"name,attr,omitempty"`
	TypeRef      string                `xml:"typeRef,attr,omitempty"`
	OutputValues *xmlUnaryTests        `xml:"outputValues,omitempty"`
	Default      *xmlLiteralExpression `xml:"defaultOutputEntry,omitempty"`
}

type xmlUnaryTests struct {
	ID   string `xml:"id,attr,omitempty"`
	Text string `xml:"text"`
}

type xmlLiteralExpression struct {
	ID   string `xml:"id,attr,omitempty"`
	Text string `xml:"text"`
}

type xmlRule struct {
	ID            string     `xml:"id,attr"`
	Description   string     `xml:"description,omitempty"`
	InputEntries  []xmlEntry `xml:"inputEntry"`
	OutputEntries []xmlEntry `xml:"outputEntry"`
}

type xmlEntry struct {
	ID   string   `xml:"id,attr"`
	Text xmlCDATA `xml:"text"`
}

type xmlCDATA struct {
	Text string `xml:",cdata"`
}
