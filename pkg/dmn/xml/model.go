package xml

import "tabular-hq/verdict/pkg/dmn"

// ParseResult carries everything Parse extracted from a DMN document.
// Errors are fatal findings (no usable definitions); Warnings note details
// the parser papered over, such as an unknown hit policy. Parse itself never
// returns a Go error for malformed input.
type ParseResult struct {
	Definitions *Definitions `json:"definitions,omitempty"`
	Errors      []string     `json:"errors,omitempty"`
	Warnings    []string     `json:"warnings,omitempty"`
}

// OK reports whether the document parsed without fatal errors.
func (r *ParseResult) OK() bool {
	return len(r.Errors) == 0 && r.Definitions != nil
}

// Definitions is the parsed root element of a DMN document.
type Definitions struct {
	ID        string             `json:"id,omitempty"`
	Name      string             `json:"name,omitempty"`
	Namespace string             `json:"namespace,omitempty"`
	Exporter  string             `json:"exporter,omitempty"`
	Version   Version            `json:"version"`
	Decisions []*DecisionElement `json:"decisions"`
}

// DecisionElement is one decision element and its contained decision table.
// Requirements hold the raw hrefs of the decision's dependencies; the engine
// does not resolve them, they survive round-trips for modeling tools.
type DecisionElement struct {
	ID           string         `json:"id,omitempty"`
	Name         string         `json:"name,omitempty"`
	Description  string         `json:"description,omitempty"`
	Variable     *Variable      `json:"variable,omitempty"`
	Requirements Requirements   `json:"requirements,omitempty"`
	Table        *DecisionTable `json:"table,omitempty"`
}

// Variable is the decision's result variable declaration.
type Variable struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	TypeRef string `json:"type_ref,omitempty"`
}

// Requirements lists dependency references of a decision element.
type Requirements struct {
	Information []string `json:"information,omitempty"` // requiredDecision / requiredInput hrefs
	Authority   []string `json:"authority,omitempty"`    // requiredAuthority hrefs
}

// DecisionTable is a parsed decisionTable element. Inputs, Outputs and Rules
// reuse the internal model types; condition and output entry text has already
// been decoded by the time the table is returned.
type DecisionTable struct {
	ID          string                `json:"id,omitempty"`
	HitPolicy   dmn.HitPolicy         `json:"hit_policy"`
	Aggregation dmn.Aggregation       `json:"aggregation,omitempty"`
	Inputs      []*dmn.DecisionInput  `json:"inputs"`
	Outputs     []*dmn.DecisionOutput `json:"outputs"`
	Rules       []*dmn.Rule           `json:"rules"`
}
