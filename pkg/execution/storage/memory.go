package storage

import (
	"context"
	"sort"
	"sync"

	"tabular-hq/verdict/pkg/execution"
)

// MemoryStorage implements execution.Storage using an in-memory map.
// Intended for tests and short-lived embedding; records do not survive
// process restarts.
type MemoryStorage struct {
	records map[string]*execution.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*execution.Record),
	}
}

// Append persists one execution record to memory.
func (s *MemoryStorage) Append(ctx context.Context, record *execution.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so later caller mutations don't reach the stored record.
	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves execution records matching the query filters, newest
// first, along with the total match count before pagination.
func (s *MemoryStorage) Query(ctx context.Context, query *execution.Query) ([]*execution.Record, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*execution.Record
	for _, record := range s.records {
		if matchesQuery(record, query) {
			matched = append(matched, record)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreateTime.Equal(matched[j].CreateTime) {
			return matched[i].CreateTime.After(matched[j].CreateTime)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))

	page, size := normalizePage(query.Page, query.Size)
	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	results := make([]*execution.Record, 0, end-start)
	for _, record := range matched[start:end] {
		recordCopy := *record
		results = append(results, &recordCopy)
	}

	return results, total, nil
}

// Count returns the number of records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *execution.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}

	return count, nil
}

// Stats aggregates history for one decision id.
func (s *MemoryStorage) Stats(ctx context.Context, decisionID string) (*execution.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &execution.Stats{}
	var totalDuration int64

	for _, record := range s.records {
		if record.DecisionID != decisionID {
			continue
		}
		stats.TotalCount++
		switch record.Status {
		case execution.StatusSuccess:
			stats.SuccessCount++
		case execution.StatusFailed:
			stats.FailedCount++
		case execution.StatusNoMatch:
			stats.NoMatchCount++
		}
		totalDuration += record.ExecutionTimeMs
		if record.ExecutionTimeMs > stats.MaxDurationMs {
			stats.MaxDurationMs = record.ExecutionTimeMs
		}
	}

	if stats.TotalCount > 0 {
		stats.AvgDurationMs = float64(totalDuration) / float64(stats.TotalCount)
	}

	return stats, nil
}

// Delete removes execution records matching the query filters, ignoring
// pagination. Returns the number of records deleted.
func (s *MemoryStorage) Delete(ctx context.Context, query *execution.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if matchesQuery(record, query) {
			delete(s.records, id)
			deleted++
		}
	}

	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*execution.Record)
	return nil
}

// matchesQuery checks if a record matches the query filters.
func matchesQuery(record *execution.Record, query *execution.Query) bool {
	if query.DecisionID != "" && record.DecisionID != query.DecisionID {
		return false
	}
	if query.DecisionKey != "" && record.DecisionKey != query.DecisionKey {
		return false
	}
	if query.Status != "" && record.Status != query.Status {
		return false
	}
	if query.ProcessInstanceID != "" && record.ProcessInstanceID != query.ProcessInstanceID {
		return false
	}
	if query.TenantID != "" && record.TenantID != query.TenantID {
		return false
	}
	if query.StartTime != nil && record.CreateTime.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.CreateTime.After(*query.EndTime) {
		return false
	}
	return true
}

// Size returns the number of records in storage (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
