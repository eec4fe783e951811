package main

import (
	"os"
	"path/filepath"
	"testing"

	"tabular-hq/verdict/pkg/decision/engine"
	"tabular-hq/verdict/pkg/decision/store"
)

func newValidationEngine(t *testing.T) *engine.TableEngine {
	t.Helper()
	eng, err := engine.NewTableEngine(nil, store.NewMemoryStore(), nil, nil)
	if err != nil {
		t.Fatalf("NewTableEngine() error = %v", err)
	}
	return eng
}

func TestValidateDecisionsValidFile(t *testing.T) {
	// Set flags
	validateFlags.dir = ""
	validateFlags.strict = false
	validateFlags.format = "text"

	// Run validate command
	err := validateDecisions(nil, []string{"testdata/age-grading.dmn"})
	if err != nil {
		t.Errorf("validateDecisions() with valid file returned error: %v", err)
	}
}

func TestValidateDecisionsInvalidFile(t *testing.T) {
	// Set flags
	validateFlags.dir = ""
	validateFlags.strict = false
	validateFlags.format = "text"

	// Run validate command - should return error for broken table
	err := validateDecisions(nil, []string{"testdata/broken.dmn"})
	if err == nil {
		t.Error("validateDecisions() with invalid file should return error")
	}
}

func TestValidateDecisionsNonexistentFile(t *testing.T) {
	// Set flags
	validateFlags.dir = ""
	validateFlags.strict = false
	validateFlags.format = "text"

	// Run validate command - should return error
	err := validateDecisions(nil, []string{"testdata/nonexistent.dmn"})
	if err == nil {
		t.Error("validateDecisions() with nonexistent file should return error")
	}
}

func TestValidateDecisionsNoInput(t *testing.T) {
	// Set flags - neither files nor dir specified
	validateFlags.dir = ""
	validateFlags.strict = false
	validateFlags.format = "text"

	// Run validate command - should return error
	err := validateDecisions(nil, []string{})
	if err == nil {
		t.Error("validateDecisions() without files or dir should return error")
	}
}

func TestValidateDecisionsJSONFormat(t *testing.T) {
	// Set flags
	validateFlags.dir = ""
	validateFlags.strict = false
	validateFlags.format = "json"

	// Run validate command
	err := validateDecisions(nil, []string{"testdata/age-grading.dmn"})
	if err != nil {
		t.Errorf("validateDecisions() with JSON format returned error: %v", err)
	}
}

func TestValidateDecisionsStrictMode(t *testing.T) {
	// The empty table is legal but carries warnings
	validateFlags.dir = ""
	validateFlags.strict = false
	validateFlags.format = "text"

	if err := validateDecisions(nil, []string{"testdata/empty-table.dmn"}); err != nil {
		t.Errorf("validateDecisions() with warnings only returned error: %v", err)
	}

	// Strict mode turns the warnings into a failure
	validateFlags.strict = true
	if err := validateDecisions(nil, []string{"testdata/empty-table.dmn"}); err == nil {
		t.Error("validateDecisions() in strict mode should fail on warnings")
	}
	validateFlags.strict = false
}

func TestValidateDecisionFile(t *testing.T) {
	eng := newValidationEngine(t)

	tests := []struct {
		name         string
		file         string
		wantValid    bool
		wantDecision int
		wantWarnings bool
	}{
		{
			name:         "valid decision",
			file:         "testdata/age-grading.dmn",
			wantValid:    true,
			wantDecision: 1,
		},
		{
			name:      "invalid decision",
			file:      "testdata/broken.dmn",
			wantValid: false,
		},
		{
			name:      "nonexistent file",
			file:      "testdata/nonexistent.dmn",
			wantValid: false,
		},
		{
			name:         "empty table warns",
			file:         "testdata/empty-table.dmn",
			wantValid:    true,
			wantDecision: 1,
			wantWarnings: true,
		},
		{
			name:         "two tables",
			file:         "testdata/two-tables.dmn",
			wantValid:    true,
			wantDecision: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateDecisionFile(eng, tt.file)
			if result.Valid != tt.wantValid {
				t.Errorf("validateDecisionFile(%q).Valid = %v, want %v (errors: %v)",
					tt.file, result.Valid, tt.wantValid, result.Errors)
			}
			if tt.wantValid && result.Decisions != tt.wantDecision {
				t.Errorf("Decisions = %d, want %d", result.Decisions, tt.wantDecision)
			}
			if tt.wantWarnings && len(result.Warnings) == 0 {
				t.Error("expected warnings")
			}
		})
	}
}

func TestValidateDecisionsDirectory(t *testing.T) {
	// Create temp directory with test files
	tmpDir, err := os.MkdirTemp("", "validate-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	// Copy valid decision to temp dir
	validDecision := filepath.Join(tmpDir, "valid.dmn")
	data, _ := os.ReadFile("testdata/age-grading.dmn")
	_ = os.WriteFile(validDecision, data, 0644)

	// Set flags to validate directory
	validateFlags.dir = tmpDir
	validateFlags.strict = false
	validateFlags.format = "text"

	// Run validate command
	err = validateDecisions(nil, []string{})
	if err != nil {
		t.Errorf("validateDecisions() with valid directory returned error: %v", err)
	}
	validateFlags.dir = ""
}
