package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"tabular-hq/verdict/pkg/cli"
	"tabular-hq/verdict/pkg/decision/engine"
	"tabular-hq/verdict/pkg/decision/store"
	"tabular-hq/verdict/pkg/dmn"
	dmnxml "tabular-hq/verdict/pkg/dmn/xml"
)

var evaluateFlags struct {
	decision    string
	decisionKey string
	input       string
	inputFile   string
	strict      bool
	audit       bool
	format      string
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a decision table",
	Long: `Evaluate a decision table from a DMN file against input data.

The decision file is parsed, the selected table is executed with the
given input variables, and the result is printed. Input data is a JSON
object, inline or from a file.

Examples:
  # Evaluate the only table in a file
  verdict evaluate --decision approval.dmn --input '{"amount": 1200}'

  # Pick a table by decision key
  verdict evaluate --decision tables.dmn --decision-key loan-approval --input-file case.json

  # Include the per-rule audit trail
  verdict evaluate --decision approval.dmn --input '{"amount": 1200}' --audit`,
	RunE: evaluateDecision,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evaluateFlags.decision, "decision", "", "decision file (DMN XML)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.decisionKey, "decision-key", "", "decision key when the file holds several tables")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.input, "input", "i", "", "input variables as a JSON object")
	evaluateCmd.Flags().StringVar(&evaluateFlags.inputFile, "input-file", "", "file holding input variables as a JSON object")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.strict, "strict", true, "surface hit policy violations as errors")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.audit, "audit", false, "include the per-rule audit trail in the result")
	evaluateCmd.Flags().StringVar(&evaluateFlags.format, "format", "json", "output format: text, json")
	_ = evaluateCmd.MarkFlagRequired("decision")
}

func evaluateDecision(cmd *cobra.Command, args []string) error {
	target, err := loadDecision(evaluateFlags.decision, evaluateFlags.decisionKey)
	if err != nil {
		return err
	}

	inputData, err := loadInputData()
	if err != nil {
		return err
	}

	eng, err := engine.NewTableEngine(nil, store.NewMemoryStore(), nil, nil)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	opts := &engine.Options{
		StrictMode:  evaluateFlags.strict,
		EnableAudit: evaluateFlags.audit,
	}
	result, err := eng.ExecuteDecision(context.Background(), target, inputData, opts)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	if evaluateFlags.format == "text" {
		printResultText(result)
		return nil
	}
	formatter := cli.NewFormatter(cli.FormatJSON)
	return formatter.FormatTo(os.Stdout, result)
}

func loadDecision(path, key string) (*dmn.Decision, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cli.NewCommandError("evaluate", err)
	}

	decisions, parsed := dmnxml.ToCreateRequests(data, "")
	if len(parsed.Errors) > 0 {
		return nil, cli.NewCommandError("evaluate", fmt.Errorf("parse failed: %s", strings.Join(parsed.Errors, "; ")))
	}
	if len(decisions) == 0 {
		return nil, cli.NewCommandError("evaluate", fmt.Errorf("document contains no decision tables"))
	}

	if key == "" {
		if len(decisions) > 1 {
			return nil, cli.NewInputError("decision-key",
				fmt.Sprintf("file holds %d tables (%s); pick one", len(decisions), strings.Join(decisionKeys(decisions), ", ")))
		}
		return decisions[0], nil
	}

	for _, d := range decisions {
		if d.DecisionKey == key {
			return d, nil
		}
	}
	return nil, cli.NewInputError("decision-key",
		fmt.Sprintf("no table with key %q (have: %s)", key, strings.Join(decisionKeys(decisions), ", ")))
}

func decisionKeys(decisions []*dmn.Decision) []string {
	keys := make([]string, len(decisions))
	for i, d := range decisions {
		keys[i] = d.DecisionKey
	}
	return keys
}

func loadInputData() (map[string]any, error) {
	raw := evaluateFlags.input
	if evaluateFlags.inputFile != "" {
		if raw != "" {
			return nil, cli.NewInputError("input", "cannot combine --input and --input-file")
		}
		data, err := os.ReadFile(evaluateFlags.inputFile)
		if err != nil {
			return nil, cli.NewCommandError("evaluate", err)
		}
		raw = string(data)
	}
	if raw == "" {
		return map[string]any{}, nil
	}

	var inputData map[string]any
	if err := json.Unmarshal([]byte(raw), &inputData); err != nil {
		return nil, cli.NewInputError("input", fmt.Sprintf("not a JSON object: %v", err))
	}
	return inputData, nil
}

func printResultText(result *engine.Result) {
	fmt.Printf("Status: %s\n", result.Status)
	fmt.Printf("Matched rules: %d", result.MatchedCount)
	if len(result.MatchedRules) > 0 {
		fmt.Printf(" (%s)", strings.Join(result.MatchedRules, ", "))
	}
	fmt.Println()
	if result.OutputResult != nil {
		if out, err := json.MarshalIndent(result.OutputResult, "", "  "); err == nil {
			fmt.Printf("Output: %s\n", out)
		}
	}
	fmt.Printf("Duration: %dms\n", result.ExecutionTimeMs)
}
