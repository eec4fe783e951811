package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"tabular-hq/verdict/pkg/execution"
)

// CSVExporter exports execution records to CSV format. Nested fields
// (input data, output result, matched rule ids) are flattened to JSON
// strings; the audit trail is reduced to its entry count.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Export writes execution records to the provided writer in CSV format.
func (e *CSVExporter) Export(ctx context.Context, records []*execution.Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return execution.NewExportError("csv", len(records), err)
		}
	}

	for _, record := range records {
		if err := writer.Write(recordToRow(record)); err != nil {
			return execution.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return execution.NewExportError("csv", len(records), err)
	}
	return nil
}

// ExportStream exports execution records from a channel in CSV format,
// flushing every 100 rows so long exports make visible progress.
func (e *CSVExporter) ExportStream(ctx context.Context, recordsCh <-chan *execution.Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return execution.NewExportError("csv", 0, err)
		}
	}

	recordCount := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return execution.NewExportError("csv", recordCount, err)
				}
				return nil
			}

			if err := writer.Write(recordToRow(record)); err != nil {
				return execution.NewExportError("csv", recordCount, err)
			}
			recordCount++

			if recordCount%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return execution.NewExportError("csv", recordCount, err)
				}
			}
		}
	}
}

// headerRow returns the CSV header row. Column order matches recordToRow.
func headerRow() []string {
	return []string{
		"id", "decision_id", "decision_key", "decision_version",
		"status", "output_result", "matched_rule_ids", "matched_count", "execution_time_ms",
		"input_data",
		"process_instance_id", "activity_id", "task_id", "tenant_id",
		"error_message", "error_details",
		"audit_entries",
		"create_time",
	}
}

// recordToRow converts an execution record to a CSV row.
func recordToRow(record *execution.Record) []string {
	formatTime := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	}
	formatJSON := func(v interface{}) string {
		if v == nil {
			return ""
		}
		data, _ := json.Marshal(v)
		return string(data)
	}

	auditEntries := 0
	if record.Audit != nil {
		auditEntries = len(record.Audit.Entries)
	}

	return []string{
		record.ID,
		record.DecisionID,
		record.DecisionKey,
		fmt.Sprintf("%d", record.DecisionVersion),
		string(record.Status),
		formatJSON(record.OutputResult),
		formatJSON(record.MatchedRuleIDs),
		fmt.Sprintf("%d", record.MatchedCount),
		fmt.Sprintf("%d", record.ExecutionTimeMs),
		formatJSON(record.InputData),
		record.ProcessInstanceID,
		record.ActivityID,
		record.TaskID,
		record.TenantID,
		record.ErrorMessage,
		record.ErrorDetails,
		fmt.Sprintf("%d", auditEntries),
		formatTime(record.CreateTime),
	}
}
