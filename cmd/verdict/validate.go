package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"tabular-hq/verdict/pkg/cli"
	"tabular-hq/verdict/pkg/decision/engine"
	"tabular-hq/verdict/pkg/decision/store"
	dmnxml "tabular-hq/verdict/pkg/dmn/xml"
)

var validateFlags struct {
	dir    string
	strict bool
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate DMN decision files",
	Long: `Validate DMN XML files for structural and semantic errors.

The validate command parses decision files and checks them in two passes:
  - Document structure: well-formedness, decision table shape, input
    and output clauses
  - Table semantics: hit policy requirements, rule arity, duplicate
    rule conditions

Examples:
  # Validate a single file
  verdict validate approval.dmn

  # Validate a directory
  verdict validate --dir decisions/

  # Strict mode (warnings as errors)
  verdict validate approval.dmn --strict

  # JSON output for CI/CD
  verdict validate approval.dmn --format json`,
	RunE: validateDecisions,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.dir, "dir", "d", "", "directory of decision files")
	validateCmd.Flags().BoolVar(&validateFlags.strict, "strict", false, "treat warnings as errors")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

func validateDecisions(cmd *cobra.Command, args []string) error {
	files := append([]string{}, args...)

	if validateFlags.dir != "" {
		// Same extensions the file source loads
		for _, pattern := range []string{"*.dmn", "*.xml"} {
			matches, err := filepath.Glob(filepath.Join(validateFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list decision files: %w", err)
			}
			files = append(files, matches...)
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("no decision files specified (pass files or --dir)")
	}

	eng, err := engine.NewTableEngine(nil, store.NewMemoryStore(), nil, nil)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateDecisionFile(eng, file))
	}

	// Output results
	if validateFlags.format == "json" {
		return outputJSON(results, validateFlags.strict)
	}
	return outputText(results, validateFlags.strict)
}

// ValidationResult represents the validation result for a single decision file.
type ValidationResult struct {
	File      string   `json:"file"`
	Valid     bool     `json:"valid"`
	Decisions int      `json:"decisions"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

func validateDecisionFile(eng *engine.TableEngine, path string) ValidationResult {
	result := ValidationResult{File: path}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	// Structural pass over the raw document
	structural := dmnxml.ValidateXML(data)
	result.Errors = append(result.Errors, structural.Errors...)
	result.Warnings = append(result.Warnings, structural.Warnings...)
	if !structural.Valid {
		return result
	}

	// Semantic pass over each parsed table
	drafts, _ := dmnxml.ToCreateRequests(data, "")
	result.Decisions = len(drafts)

	for _, draft := range drafts {
		report := eng.Validate(draft)
		for _, msg := range report.Errors {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", draft.DecisionKey, msg))
		}
		for _, msg := range report.Warnings {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", draft.DecisionKey, msg))
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func outputText(results []ValidationResult, strict bool) error {
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)

		if len(result.Errors) == 0 && len(result.Warnings) == 0 {
			fmt.Println("✓ Document structure valid")
			fmt.Printf("✓ %d decision table(s) pass semantic checks\n", result.Decisions)
		}

		for _, msg := range result.Errors {
			fmt.Printf("✗ Error: %s\n", msg)
			totalErrors++
		}

		for _, msg := range result.Warnings {
			fmt.Printf("⚠  Warning: %s\n", msg)
			totalWarnings++
		}

		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d error(s), %d warning(s)\n", totalErrors, totalWarnings)

	if strict && totalWarnings > 0 {
		fmt.Println("  Strict mode enabled: treating warnings as errors")
		return cli.NewCommandError("validate", fmt.Errorf("validation failed"))
	}

	if totalErrors > 0 {
		return cli.NewCommandError("validate", fmt.Errorf("validation failed"))
	}

	return nil
}

func outputJSON(results []ValidationResult, strict bool) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return err
	}

	for _, result := range results {
		if !result.Valid {
			return cli.NewCommandError("validate", fmt.Errorf("validation failed"))
		}
		if strict && len(result.Warnings) > 0 {
			return cli.NewCommandError("validate", fmt.Errorf("validation failed"))
		}
	}
	return nil
}
