package export

import (
	"context"
	"encoding/json"
	"io"

	"tabular-hq/verdict/pkg/execution"
)

// JSONExporter exports execution records to JSON format.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{
		Pretty: pretty,
	}
}

// Export writes execution records to the provided writer as a JSON array.
// An empty record set writes "[]" so the output is always parseable.
func (e *JSONExporter) Export(ctx context.Context, records []*execution.Record, w io.Writer) error {
	if len(records) == 0 {
		_, err := w.Write([]byte("[]"))
		return err
	}

	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return execution.NewExportError("json", len(records), err)
	}

	if _, err := w.Write(data); err != nil {
		return execution.NewExportError("json", len(records), err)
	}

	return nil
}

// ExportStream exports execution records from a channel as a JSON array.
// Records are serialized as they arrive, so the full history never has to
// fit in memory. The stream ends when the channel closes or the context is
// cancelled; cancellation leaves the array unterminated.
func (e *JSONExporter) ExportStream(ctx context.Context, recordsCh <-chan *execution.Record, w io.Writer) error {
	if _, err := w.Write([]byte("[")); err != nil {
		return execution.NewExportError("json", 0, err)
	}

	first := true
	recordCount := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				if _, err := w.Write([]byte("]")); err != nil {
					return execution.NewExportError("json", recordCount, err)
				}
				return nil
			}

			if !first {
				if _, err := w.Write([]byte(",")); err != nil {
					return execution.NewExportError("json", recordCount, err)
				}
				if e.Pretty {
					if _, err := w.Write([]byte("\n")); err != nil {
						return execution.NewExportError("json", recordCount, err)
					}
				}
			}
			first = false

			data, err := e.serializeRecord(record)
			if err != nil {
				return execution.NewExportError("json", recordCount, err)
			}
			if _, err := w.Write(data); err != nil {
				return execution.NewExportError("json", recordCount, err)
			}

			recordCount++
		}
	}
}

// serializeRecord serializes a single execution record to JSON.
func (e *JSONExporter) serializeRecord(record *execution.Record) ([]byte, error) {
	if e.Pretty {
		return json.MarshalIndent(record, "  ", "  ")
	}
	return json.Marshal(record)
}
