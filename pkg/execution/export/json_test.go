package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"tabular-hq/verdict/pkg/execution"
)

func createTestRecord(id string) *execution.Record {
	return &execution.Record{
		ID:              id,
		DecisionID:      "dec-1",
		DecisionKey:     "age-grading",
		DecisionVersion: 2,
		Status:          execution.StatusSuccess,
		OutputResult:    map[string]interface{}{"level": "adult"},
		MatchedRuleIDs:  []string{"rule_0"},
		MatchedCount:    1,
		ExecutionTimeMs: 3,
		InputData:       map[string]interface{}{"age": 25.0},
		TenantID:        "tenant-a",
		CreateTime:      time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
	}
}

func TestJSONExporter_Export_EmptyRecords(t *testing.T) {
	exporter := NewJSONExporter(false)
	var buf bytes.Buffer

	err := exporter.Export(context.Background(), []*execution.Record{}, &buf)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if buf.String() != "[]" {
		t.Errorf("Export() = %q, want %q", buf.String(), "[]")
	}
}

func TestJSONExporter_Export_Records(t *testing.T) {
	records := []*execution.Record{
		createTestRecord("exec-1"),
		createTestRecord("exec-2"),
		createTestRecord("exec-3"),
	}

	exporter := NewJSONExporter(false)
	var buf bytes.Buffer

	err := exporter.Export(context.Background(), records, &buf)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded []*execution.Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}

	if len(decoded) != 3 {
		t.Fatalf("Decoded length = %d, want 3", len(decoded))
	}
	for i, record := range records {
		if decoded[i].ID != record.ID {
			t.Errorf("Decoded[%d].ID = %v, want %v", i, decoded[i].ID, record.ID)
		}
	}
	if decoded[0].Status != execution.StatusSuccess {
		t.Errorf("Decoded status = %v, want SUCCESS", decoded[0].Status)
	}
	if decoded[0].MatchedCount != 1 {
		t.Errorf("Decoded matched count = %d, want 1", decoded[0].MatchedCount)
	}
}

func TestJSONExporter_Export_PrettyPrint(t *testing.T) {
	record := createTestRecord("exec-1")
	exporter := NewJSONExporter(true)
	var buf bytes.Buffer

	err := exporter.Export(context.Background(), []*execution.Record{record}, &buf)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "\n") {
		t.Error("Pretty-printed JSON missing newlines")
	}
	if !strings.Contains(output, "  ") {
		t.Error("Pretty-printed JSON missing indentation")
	}

	var decoded []*execution.Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode pretty-printed JSON: %v", err)
	}
}

func TestJSONExporter_ExportStream(t *testing.T) {
	recordsCh := make(chan *execution.Record, 3)
	recordsCh <- createTestRecord("exec-1")
	recordsCh <- createTestRecord("exec-2")
	recordsCh <- createTestRecord("exec-3")
	close(recordsCh)

	exporter := NewJSONExporter(false)
	var buf bytes.Buffer

	err := exporter.ExportStream(context.Background(), recordsCh, &buf)
	if err != nil {
		t.Fatalf("ExportStream() error = %v", err)
	}

	var decoded []*execution.Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode streamed JSON: %v", err)
	}
	if len(decoded) != 3 {
		t.Errorf("Decoded length = %d, want 3", len(decoded))
	}
}

func TestJSONExporter_ExportStream_EmptyChannel(t *testing.T) {
	recordsCh := make(chan *execution.Record)
	close(recordsCh)

	exporter := NewJSONExporter(false)
	var buf bytes.Buffer

	err := exporter.ExportStream(context.Background(), recordsCh, &buf)
	if err != nil {
		t.Fatalf("ExportStream() error = %v", err)
	}

	if buf.String() != "[]" {
		t.Errorf("ExportStream() = %q, want %q", buf.String(), "[]")
	}
}

func TestJSONExporter_ExportStream_ContextCancelled(t *testing.T) {
	recordsCh := make(chan *execution.Record)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exporter := NewJSONExporter(false)
	var buf bytes.Buffer

	err := exporter.ExportStream(ctx, recordsCh, &buf)
	if err == nil {
		t.Fatal("ExportStream() with cancelled context should return an error")
	}
}
