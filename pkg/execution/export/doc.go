// Package export writes execution records to JSON or CSV streams.
//
// Both exporters implement execution.Exporter and work against any
// io.Writer. The streaming variants accept a record channel instead of a
// slice, so very large histories can be exported without holding every
// record in memory. Retention archiving and the history CLI command are the
// main consumers.
package export
