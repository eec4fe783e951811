package main

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"tabular-hq/verdict/pkg/dmn"
	dmnxml "tabular-hq/verdict/pkg/dmn/xml"
)

func TestXMLToJSON(t *testing.T) {
	convertFlags.tenant = ""

	data, err := os.ReadFile("testdata/age-grading.dmn")
	if err != nil {
		t.Fatal(err)
	}

	out, err := xmlToJSON(data)
	if err != nil {
		t.Fatalf("xmlToJSON() error = %v", err)
	}

	var decisions []*dmn.Decision
	if err := json.Unmarshal(out, &decisions); err != nil {
		t.Fatalf("output is not a decision array: %v", err)
	}
	if len(decisions) != 1 {
		t.Fatalf("decisions = %d, want 1", len(decisions))
	}
	if decisions[0].DecisionKey != "age_grading" {
		t.Errorf("decision key = %q, want age_grading", decisions[0].DecisionKey)
	}
	if decisions[0].HitPolicy != dmn.HitPolicyFirst {
		t.Errorf("hit policy = %q, want FIRST", decisions[0].HitPolicy)
	}
	if len(decisions[0].Rules) != 2 {
		t.Errorf("rules = %d, want 2", len(decisions[0].Rules))
	}
}

func TestXMLToJSONBrokenDocument(t *testing.T) {
	convertFlags.tenant = ""

	if _, err := xmlToJSON([]byte("<broken")); err == nil {
		t.Error("xmlToJSON() with broken XML should return error")
	}
}

func TestJSONToXMLRoundTrip(t *testing.T) {
	convertFlags.tenant = ""
	convertFlags.dmnVersion = "1.3"

	data, err := os.ReadFile("testdata/two-tables.dmn")
	if err != nil {
		t.Fatal(err)
	}

	jsonData, err := xmlToJSON(data)
	if err != nil {
		t.Fatalf("xmlToJSON() error = %v", err)
	}

	xmlData, err := jsonToXML(jsonData)
	if err != nil {
		t.Fatalf("jsonToXML() error = %v", err)
	}

	// The emitted document must parse back to the same tables
	result := dmnxml.Parse(xmlData)
	if !result.OK() {
		t.Fatalf("emitted document does not parse: %v", result.Errors)
	}
	if len(result.Definitions.Decisions) != 2 {
		t.Fatalf("decisions = %d, want 2", len(result.Definitions.Decisions))
	}
	keys := []string{result.Definitions.Decisions[0].ID, result.Definitions.Decisions[1].ID}
	if keys[0] != "ticket_routing" || keys[1] != "ticket_priority" {
		t.Errorf("decision ids = %v", keys)
	}
}

func TestJSONToXMLVersionNamespace(t *testing.T) {
	convertFlags.tenant = ""
	convertFlags.dmnVersion = "1.1"

	data, err := os.ReadFile("testdata/age-grading.dmn")
	if err != nil {
		t.Fatal(err)
	}
	jsonData, err := xmlToJSON(data)
	if err != nil {
		t.Fatal(err)
	}

	xmlData, err := jsonToXML(jsonData)
	if err != nil {
		t.Fatalf("jsonToXML() error = %v", err)
	}
	if !strings.Contains(string(xmlData), "20151101") {
		t.Error("expected the DMN 1.1 namespace in the output")
	}

	convertFlags.dmnVersion = "1.3"
}

func TestJSONToXMLRejectsUnknownVersion(t *testing.T) {
	convertFlags.dmnVersion = "2.0"

	if _, err := jsonToXML([]byte(`[]`)); err == nil {
		t.Error("jsonToXML() with unknown DMN version should return error")
	}

	convertFlags.dmnVersion = "1.3"
}

func TestDecodeDecisions(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{
			name:  "array of decisions",
			input: `[{"decision_key": "a", "name": "A"}, {"decision_key": "b", "name": "B"}]`,
			want:  2,
		},
		{
			name:  "single decision object",
			input: `{"decision_key": "a", "name": "A"}`,
			want:  1,
		},
		{
			name:    "empty array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "not json",
			input:   `<xml/>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decisions, err := decodeDecisions([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeDecisions() error = %v", err)
			}
			if len(decisions) != tt.want {
				t.Errorf("decisions = %d, want %d", len(decisions), tt.want)
			}
		})
	}
}

func TestConvertDecisionsUnknownTarget(t *testing.T) {
	convertFlags.file = "testdata/age-grading.dmn"
	convertFlags.output = ""
	convertFlags.to = "yaml"

	err := convertDecisions(nil, []string{})
	if err == nil {
		t.Error("convertDecisions() with unknown target should return error")
	}

	convertFlags.to = "json"
}

func TestConvertDecisionsWritesOutputFile(t *testing.T) {
	tmp, err := os.CreateTemp("", "convert-*.json")
	if err != nil {
		t.Fatal(err)
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	convertFlags.file = "testdata/age-grading.dmn"
	convertFlags.output = tmp.Name()
	convertFlags.to = "json"
	convertFlags.tenant = "tenant-a"

	if err := convertDecisions(nil, []string{}); err != nil {
		t.Fatalf("convertDecisions() error = %v", err)
	}

	written, err := os.ReadFile(tmp.Name())
	if err != nil {
		t.Fatal(err)
	}
	var decisions []*dmn.Decision
	if err := json.Unmarshal(written, &decisions); err != nil {
		t.Fatalf("output file is not a decision array: %v", err)
	}
	if len(decisions) != 1 || decisions[0].TenantID != "tenant-a" {
		t.Errorf("decisions = %+v", decisions)
	}

	convertFlags.output = ""
	convertFlags.tenant = ""
}
