package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"tabular-hq/verdict/pkg/dmn"
)

// MemoryStore keeps decisions in a map guarded by a RWMutex. Reads and
// writes exchange deep copies so callers can never mutate stored state.
// Intended for tests and embedded single-process use.
type MemoryStore struct {
	decisions map[string]*dmn.Decision
	mu        sync.RWMutex
}

// NewMemoryStore creates an empty in-memory decision store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		decisions: make(map[string]*dmn.Decision),
	}
}

// FindByID returns the decision version with the given id, or (nil, nil).
func (s *MemoryStore) FindByID(ctx context.Context, id string) (*dmn.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, ok := s.decisions[id]; ok {
		return d.Clone(), nil
	}
	return nil, nil
}

// FindByKey returns one version of a decision key. Version 0 selects the
// highest version regardless of status.
func (s *MemoryStore) FindByKey(ctx context.Context, key, tenantID string, version int) (*dmn.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *dmn.Decision
	for _, d := range s.decisions {
		if d.DecisionKey != key || !tenantMatches(d.TenantID, tenantID) {
			continue
		}
		if version > 0 {
			if d.Version == version {
				return d.Clone(), nil
			}
			continue
		}
		if best == nil || d.Version > best.Version {
			best = d
		}
	}
	if best == nil {
		return nil, nil
	}
	return best.Clone(), nil
}

// FindHighestPublishedByKey returns the published version with the highest
// version number, or (nil, nil).
func (s *MemoryStore) FindHighestPublishedByKey(ctx context.Context, key, tenantID string) (*dmn.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *dmn.Decision
	for _, d := range s.decisions {
		if d.DecisionKey != key || !tenantMatches(d.TenantID, tenantID) {
			continue
		}
		if d.Status != dmn.StatusPublished {
			continue
		}
		if best == nil || d.Version > best.Version {
			best = d
		}
	}
	if best == nil {
		return nil, nil
	}
	return best.Clone(), nil
}

// Save inserts or replaces one decision version, keyed by its id.
func (s *MemoryStore) Save(ctx context.Context, decision *dmn.Decision) error {
	if decision == nil || decision.ID == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.decisions[decision.ID] = decision.Clone()
	return nil
}

// Delete removes one decision version by id.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.decisions, id)
	return nil
}

// Query returns the matching page ordered by create time descending plus the
// total match count.
func (s *MemoryStore) Query(ctx context.Context, filter *Filter, page, size int) ([]*dmn.Decision, int64, error) {
	page, size = NormalizePage(page, size)

	s.mu.RLock()
	var matches []*dmn.Decision
	for _, d := range s.decisions {
		if matchesFilter(d, filter) {
			matches = append(matches, d)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreateTime.Equal(matches[j].CreateTime) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreateTime.After(matches[j].CreateTime)
	})

	total := int64(len(matches))
	start := (page - 1) * size
	if start >= len(matches) {
		return []*dmn.Decision{}, total, nil
	}
	end := start + size
	if end > len(matches) {
		end = len(matches)
	}

	pageItems := make([]*dmn.Decision, 0, end-start)
	for _, d := range matches[start:end] {
		pageItems = append(pageItems, d.Clone())
	}
	return pageItems, total, nil
}

// Close drops all stored decisions.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.decisions = make(map[string]*dmn.Decision)
	return nil
}

// Size returns the number of stored decision versions (for testing).
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.decisions)
}

// tenantMatches applies the tenant filter: an empty requested tenant matches
// every record, a concrete one must match exactly.
func tenantMatches(recordTenant, requested string) bool {
	return requested == "" || recordTenant == requested
}

// matchesFilter checks a decision against each set filter field.
func matchesFilter(d *dmn.Decision, filter *Filter) bool {
	if filter == nil {
		return true
	}
	if filter.ID != "" && d.ID != filter.ID {
		return false
	}
	if filter.DecisionKey != "" && d.DecisionKey != filter.DecisionKey {
		return false
	}
	if filter.Name != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(filter.Name)) {
		return false
	}
	if filter.Status != "" && d.Status != filter.Status {
		return false
	}
	if filter.Category != "" && d.Category != filter.Category {
		return false
	}
	if filter.TenantID != "" && d.TenantID != filter.TenantID {
		return false
	}
	if filter.Version > 0 && d.Version != filter.Version {
		return false
	}
	return true
}
