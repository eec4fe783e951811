package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"tabular-hq/verdict/pkg/cli"
	"tabular-hq/verdict/pkg/config"
	"tabular-hq/verdict/pkg/execution"
	"tabular-hq/verdict/pkg/execution/export"
	"tabular-hq/verdict/pkg/execution/storage"
)

var historyFlags struct {
	decisionID  string
	decisionKey string
	status      string
	tenant      string
	timeRange   string
	page        int
	size        int
	format      string
	output      string
	stats       bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query recorded executions",
	Long: `Query the execution history store.

Records are filtered by decision, status, tenant and time range, newest
first. Results can be printed as text or exported as JSON or CSV for
downstream analysis.

Examples:
  # Latest executions of one decision
  verdict history --decision-key loan-approval

  # Failed executions in a time window
  verdict history --status FAILED --time-range "2026-08-01T00:00:00Z/2026-08-25T00:00:00Z"

  # Export a page as CSV
  verdict history --decision-key loan-approval --format csv --output executions.csv

  # Aggregate statistics for one decision
  verdict history --decision-id d2f1... --stats`,
	RunE: queryHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyFlags.decisionID, "decision-id", "", "filter by decision id")
	historyCmd.Flags().StringVar(&historyFlags.decisionKey, "decision-key", "", "filter by decision key")
	historyCmd.Flags().StringVar(&historyFlags.status, "status", "", "filter by status: SUCCESS, NO_MATCH, FAILED")
	historyCmd.Flags().StringVar(&historyFlags.tenant, "tenant", "", "filter by tenant id")
	historyCmd.Flags().StringVar(&historyFlags.timeRange, "time-range", "", "RFC3339 interval start/end")
	historyCmd.Flags().IntVar(&historyFlags.page, "page", 1, "result page (1-based)")
	historyCmd.Flags().IntVar(&historyFlags.size, "size", 20, "page size")
	historyCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json, csv")
	historyCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "", "output file (defaults to stdout)")
	historyCmd.Flags().BoolVar(&historyFlags.stats, "stats", false, "print aggregate statistics instead of records (needs --decision-id)")
}

func queryHistory(cmd *cobra.Command, args []string) error {
	// Load config
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	store, err := openHistoryStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	if historyFlags.stats {
		return printStats(ctx, store)
	}

	query, err := buildHistoryQuery()
	if err != nil {
		return err
	}

	records, total, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("history", fmt.Errorf("query failed: %w", err))
	}

	out, closeOut, err := openOutput(historyFlags.output)
	if err != nil {
		return err
	}
	defer closeOut()

	switch cli.OutputFormat(historyFlags.format) {
	case cli.FormatJSON:
		return export.NewJSONExporter(true).Export(ctx, records, out)
	case cli.FormatCSV:
		return export.NewCSVExporter(true).Export(ctx, records, out)
	case cli.FormatText:
		printRecordsText(out, records, total, query)
		return nil
	default:
		return cli.NewInputError("format", fmt.Sprintf("unsupported format %q", historyFlags.format))
	}
}

func openHistoryStorage(cfg *config.Config) (execution.Storage, error) {
	if !cfg.ExecutionStore.Enabled {
		return nil, cli.NewConfigError("execution_store.enabled", "execution recording is disabled")
	}

	switch cfg.ExecutionStore.Backend {
	case "sqlite":
		store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.ExecutionStore.SQLite.Path,
			MaxOpenConns: cfg.ExecutionStore.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.ExecutionStore.SQLite.MaxIdleConns,
			WALMode:      cfg.ExecutionStore.SQLite.WALMode,
			BusyTimeout:  cfg.ExecutionStore.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, cli.NewCommandError("history", fmt.Errorf("failed to open execution store: %w", err))
		}
		return store, nil
	case "memory":
		return nil, cli.NewConfigError("execution_store.backend", "memory backend keeps no history across processes; use sqlite")
	default:
		return nil, cli.NewConfigError("execution_store.backend", fmt.Sprintf("unsupported backend: %s", cfg.ExecutionStore.Backend))
	}
}

func buildHistoryQuery() (*execution.Query, error) {
	query := &execution.Query{
		DecisionID:  historyFlags.decisionID,
		DecisionKey: historyFlags.decisionKey,
		TenantID:    historyFlags.tenant,
		Page:        historyFlags.page,
		Size:        historyFlags.size,
	}

	if historyFlags.status != "" {
		status := execution.Status(strings.ToUpper(historyFlags.status))
		switch status {
		case execution.StatusSuccess, execution.StatusNoMatch, execution.StatusFailed:
			query.Status = status
		default:
			return nil, cli.NewInputError("status", fmt.Sprintf("unknown status %q", historyFlags.status))
		}
	}

	if historyFlags.timeRange != "" {
		parts := strings.Split(historyFlags.timeRange, "/")
		if len(parts) != 2 {
			return nil, cli.NewInputError("time-range", "expected start/end")
		}
		start, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return nil, cli.NewInputError("time-range", fmt.Sprintf("invalid start time: %v", err))
		}
		end, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return nil, cli.NewInputError("time-range", fmt.Sprintf("invalid end time: %v", err))
		}
		query.StartTime = &start
		query.EndTime = &end
	}

	return query, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, cli.NewCommandError("history", err)
	}
	return f, func() { f.Close() }, nil
}

func printStats(ctx context.Context, store execution.Storage) error {
	if historyFlags.decisionID == "" {
		return cli.NewInputError("decision-id", "required with --stats")
	}

	stats, err := store.Stats(ctx, historyFlags.decisionID)
	if err != nil {
		return cli.NewCommandError("history", fmt.Errorf("stats failed: %w", err))
	}

	if cli.OutputFormat(historyFlags.format) == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, stats)
	}

	fmt.Printf("Executions: %d\n", stats.TotalCount)
	fmt.Printf("  success:  %d\n", stats.SuccessCount)
	fmt.Printf("  no match: %d\n", stats.NoMatchCount)
	fmt.Printf("  failed:   %d\n", stats.FailedCount)
	fmt.Printf("Avg duration: %.1fms\n", stats.AvgDurationMs)
	fmt.Printf("Max duration: %dms\n", stats.MaxDurationMs)
	return nil
}

func printRecordsText(w io.Writer, records []*execution.Record, total int64, query *execution.Query) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No execution records found.")
		return
	}

	fmt.Fprintf(w, "Showing %d of %d record(s) (page %d)\n\n", len(records), total, query.Page)
	for _, record := range records {
		fmt.Fprintf(w, "%s  %s  %-8s  %dms",
			record.CreateTime.Format(time.RFC3339), record.ID, record.Status, record.ExecutionTimeMs)
		if record.DecisionKey != "" {
			fmt.Fprintf(w, "  %s v%d", record.DecisionKey, record.DecisionVersion)
		}
		if record.ErrorMessage != "" {
			fmt.Fprintf(w, "  %s", record.ErrorMessage)
		}
		fmt.Fprintln(w)
	}
}
