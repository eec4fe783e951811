/*
Package cli provides shared helpers for the verdict command.

Output Formatting:

Command results can be rendered as plain text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Execution history additionally supports CSV, produced by the
schema-aware writers in pkg/execution/export rather than a generic
formatter.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Pass ctx to operations that should stop on shutdown.
*/
package cli
