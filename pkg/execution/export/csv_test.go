package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"tabular-hq/verdict/pkg/execution"
)

func TestCSVExporter_Export_WithHeader(t *testing.T) {
	records := []*execution.Record{
		createTestRecord("exec-1"),
		createTestRecord("exec-2"),
	}

	exporter := NewCSVExporter(true)
	var buf bytes.Buffer

	err := exporter.Export(context.Background(), records, &buf)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	reader := csv.NewReader(&buf)
	rows, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("Row count = %d, want 3 (header + 2 records)", len(rows))
	}
	if rows[0][0] != "id" {
		t.Errorf("Header[0] = %q, want %q", rows[0][0], "id")
	}
	if rows[1][0] != "exec-1" {
		t.Errorf("Row 1 id = %q, want %q", rows[1][0], "exec-1")
	}
	if rows[2][0] != "exec-2" {
		t.Errorf("Row 2 id = %q, want %q", rows[2][0], "exec-2")
	}
}

func TestCSVExporter_Export_NoHeader(t *testing.T) {
	records := []*execution.Record{createTestRecord("exec-1")}

	exporter := NewCSVExporter(false)
	var buf bytes.Buffer

	err := exporter.Export(context.Background(), records, &buf)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	reader := csv.NewReader(&buf)
	rows, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("Row count = %d, want 1", len(rows))
	}
	if rows[0][0] != "exec-1" {
		t.Errorf("Row id = %q, want %q", rows[0][0], "exec-1")
	}
}

func TestCSVExporter_Export_ColumnsMatchHeader(t *testing.T) {
	records := []*execution.Record{createTestRecord("exec-1")}

	exporter := NewCSVExporter(true)
	var buf bytes.Buffer

	if err := exporter.Export(context.Background(), records, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	reader := csv.NewReader(&buf)
	rows, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}

	if len(rows[0]) != len(rows[1]) {
		t.Errorf("Header has %d columns, data row has %d", len(rows[0]), len(rows[1]))
	}
}

func TestCSVExporter_Export_FlattensNestedFields(t *testing.T) {
	record := createTestRecord("exec-1")

	exporter := NewCSVExporter(true)
	var buf bytes.Buffer

	if err := exporter.Export(context.Background(), []*execution.Record{record}, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `""level"":""adult""`) {
		t.Errorf("CSV output missing flattened output result:\n%s", output)
	}
	if !strings.Contains(output, `rule_0`) {
		t.Errorf("CSV output missing matched rule ids:\n%s", output)
	}
}

func TestCSVExporter_ExportStream(t *testing.T) {
	recordsCh := make(chan *execution.Record, 2)
	recordsCh <- createTestRecord("exec-1")
	recordsCh <- createTestRecord("exec-2")
	close(recordsCh)

	exporter := NewCSVExporter(true)
	var buf bytes.Buffer

	err := exporter.ExportStream(context.Background(), recordsCh, &buf)
	if err != nil {
		t.Fatalf("ExportStream() error = %v", err)
	}

	reader := csv.NewReader(&buf)
	rows, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse streamed CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("Row count = %d, want 3 (header + 2 records)", len(rows))
	}
}

func TestCSVExporter_ExportStream_ContextCancelled(t *testing.T) {
	recordsCh := make(chan *execution.Record)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exporter := NewCSVExporter(false)
	var buf bytes.Buffer

	err := exporter.ExportStream(ctx, recordsCh, &buf)
	if err == nil {
		t.Fatal("ExportStream() with cancelled context should return an error")
	}
}
