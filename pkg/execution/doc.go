// Package execution defines the execution-history domain: the persisted
// record of every decision evaluation, its per-rule audit trail, and the
// storage, export and retention contracts around it.
//
// Records are written by the decision engine after every evaluation,
// successful or not, and queried through the Storage interface. Subpackages
// provide the concrete pieces:
//
//   - storage: in-memory and SQLite-backed Storage implementations
//   - export: JSON and CSV exporters for compliance extracts
//   - retention: age-based pruning on a cron schedule
package execution
