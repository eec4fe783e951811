// Package storage provides storage backends for execution records.
//
// # Storage Backends
//
// The storage package implements the execution.Storage interface twice:
//
//   - SQLite: embedded database for single-node deployments
//   - Memory: in-memory storage for tests and short-lived embedding
//
// InstrumentedStorage decorates either backend with Prometheus operation
// counters and latency histograms.
//
// # SQLite Backend
//
// The SQLite backend provides durable storage with:
//
//   - WAL mode for concurrent reads/writes
//   - Indexes on the fields history queries filter by
//   - Busy timeout for handling locks
//   - A schema_version table for future migrations
//
// Nested structures (input snapshot, matched rule ids, the audit
// container) are stored as JSON text columns. Records are append-only;
// the only mutation is retention-driven deletion.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path: "data/executions.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.Append(ctx, record)
//
//	records, total, err := store.Query(ctx, &execution.Query{
//	    DecisionKey: "loan_approval",
//	    Status:      execution.StatusSuccess,
//	    Page:        1,
//	    Size:        50,
//	})
//
// # Thread Safety
//
// Both backends are safe for concurrent use. Append can be called
// concurrently with Query; WAL mode keeps readers unblocked.
package storage
