package storage

import (
	"context"
	"time"

	"tabular-hq/verdict/pkg/execution"
	"tabular-hq/verdict/pkg/telemetry/metrics"
)

// InstrumentedStorage wraps a Storage and records every operation's count
// and latency. The wrapped backend does the work; this layer only observes.
type InstrumentedStorage struct {
	inner   execution.Storage
	metrics *metrics.StoreMetrics
}

// NewInstrumentedStorage decorates a storage backend with operation metrics.
// A nil StoreMetrics makes every recording a no-op, so callers can wire the
// decorator unconditionally.
func NewInstrumentedStorage(inner execution.Storage, m *metrics.StoreMetrics) *InstrumentedStorage {
	return &InstrumentedStorage{inner: inner, metrics: m}
}

const storeLabel = "execution"

// Append persists one execution record through the wrapped backend.
func (s *InstrumentedStorage) Append(ctx context.Context, record *execution.Record) error {
	start := time.Now()
	err := s.inner.Append(ctx, record)
	s.metrics.RecordOperation(storeLabel, "append", time.Since(start), err)
	return err
}

// Query returns the matching records plus total count.
func (s *InstrumentedStorage) Query(ctx context.Context, query *execution.Query) ([]*execution.Record, int64, error) {
	start := time.Now()
	records, total, err := s.inner.Query(ctx, query)
	s.metrics.RecordOperation(storeLabel, "query", time.Since(start), err)
	return records, total, err
}

// Count returns the total match count without fetching records.
func (s *InstrumentedStorage) Count(ctx context.Context, query *execution.Query) (int64, error) {
	start := time.Now()
	count, err := s.inner.Count(ctx, query)
	s.metrics.RecordOperation(storeLabel, "count", time.Since(start), err)
	return count, err
}

// Stats aggregates history for one decision id.
func (s *InstrumentedStorage) Stats(ctx context.Context, decisionID string) (*execution.Stats, error) {
	start := time.Now()
	stats, err := s.inner.Stats(ctx, decisionID)
	s.metrics.RecordOperation(storeLabel, "stats", time.Since(start), err)
	return stats, err
}

// Delete removes all records matching the filters.
func (s *InstrumentedStorage) Delete(ctx context.Context, query *execution.Query) (int64, error) {
	start := time.Now()
	deleted, err := s.inner.Delete(ctx, query)
	s.metrics.RecordOperation(storeLabel, "delete", time.Since(start), err)
	return deleted, err
}

// Close releases the wrapped backend's resources.
func (s *InstrumentedStorage) Close() error {
	return s.inner.Close()
}
