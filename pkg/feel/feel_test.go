package feel

import (
	"testing"

	"tabular-hq/verdict/pkg/feel/errors"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		vars map[string]any
		want any
	}{
		{
			"range and flag both hold",
			"age between 20 and 30 and active = true",
			map[string]any{"age": 25, "active": true},
			true,
		},
		{
			"flag fails",
			"age between 20 and 30 and active = true",
			map[string]any{"age": 25, "active": false},
			false,
		},
		{
			"range fails",
			"age between 20 and 30 and active = true",
			map[string]any{"age": 35, "active": true},
			false,
		},
		{"comparison", "age >= 18", map[string]any{"age": 21}, true},
		{"string literal", `"approved"`, nil, "approved"},
		{"arithmetic", "price * quantity", map[string]any{"price": 4, "quantity": 2.5}, 10.0},
		{"nested path", "customer.tier", map[string]any{"customer": map[string]any{"tier": "gold"}}, "gold"},
		{"builtin call", `upper case("ok")`, nil, "OK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.src, tt.vars)
			if err != nil {
				t.Fatalf("Evaluate(%q): %v", tt.src, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestEvaluateUnknownVariable(t *testing.T) {
	_, err := Evaluate("missing > 1", map[string]any{"present": 1})
	if err == nil {
		t.Fatal("expected an error for an unknown variable")
	}
	ferr, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("error type = %T, want *errors.Error", err)
	}
	if ferr.Kind != errors.KindVariableNotFound {
		t.Errorf("kind = %s, want %s", ferr.Kind, errors.KindVariableNotFound)
	}
}

func TestParseAndEvaluateTree(t *testing.T) {
	tree, errs := Parse("amount * rate")
	if errs.HasErrors() {
		t.Fatalf("Parse: %v", errs)
	}
	if tree == nil {
		t.Fatal("Parse returned a nil tree")
	}

	// One tree, several variable sets.
	tests := []struct {
		vars map[string]any
		want float64
	}{
		{map[string]any{"amount": 100, "rate": 0.2}, 20},
		{map[string]any{"amount": 50, "rate": 0.5}, 25},
	}
	for _, tt := range tests {
		got, err := EvaluateTree(tree, tt.vars)
		if err != nil {
			t.Fatalf("EvaluateTree: %v", err)
		}
		if got != tt.want {
			t.Errorf("EvaluateTree(%v) = %v, want %v", tt.vars, got, tt.want)
		}
	}
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	_, errs := Parse("1 +")
	if !errs.HasErrors() {
		t.Fatal("expected syntax errors")
	}
	if errs.First().Kind != errors.KindSyntaxError {
		t.Errorf("kind = %s, want %s", errs.First().Kind, errors.KindSyntaxError)
	}
}

func TestCheck(t *testing.T) {
	if errs := Check("age between 20 and 30"); errs.HasErrors() {
		t.Errorf("valid expression flagged: %v", errs)
	}
	if errs := Check(`if amount > then "x" else "y"`); !errs.HasErrors() {
		t.Error("syntax error missed")
	}
}
