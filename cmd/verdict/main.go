// Verdict is a DMN decision table engine and toolchain.
//
// It evaluates DMN 1.3 decision tables with the full set of hit policies,
// records execution history with per-rule audit trails, and round-trips
// decision models between DMN XML and JSON.
//
// Usage:
//
//	# Show version information
//	verdict version
//
//	# Validate DMN files
//	verdict validate decisions/approval.dmn
//
//	# Convert DMN XML to the JSON model and back
//	verdict convert --file approval.dmn --to json
//
//	# Evaluate a decision table against input data
//	verdict evaluate --decision approval.dmn --input '{"amount": 1200}'
//
//	# Query recorded executions
//	verdict history --decision-key loan-approval --status FAILED
//
// For complete documentation, see: https://github.com/tabular-hq/verdict
package main

func main() {
	Execute()
}
