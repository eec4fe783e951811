// Package store persists decision definitions. Two backends ship: an
// in-memory store for tests and embedded use, and a SQLite store for
// durable single-instance deployments.
package store

import (
	"context"
	"errors"

	"tabular-hq/verdict/pkg/dmn"
)

// ErrMissingID rejects saves of decisions without an id. Ids are assigned by
// the lifecycle manager before the store ever sees a decision.
var ErrMissingID = errors.New("decision id is required")

// DecisionStore is the persistence contract for decision definitions. It is
// a superset of the engine's DecisionSource, so any store can back the
// executor directly. Finders return (nil, nil) when nothing matches.
type DecisionStore interface {
	// FindByID returns the decision version with the given id.
	FindByID(ctx context.Context, id string) (*dmn.Decision, error)

	// FindByKey returns the given version of a decision key. Version 0
	// means the highest version regardless of status.
	FindByKey(ctx context.Context, key, tenantID string, version int) (*dmn.Decision, error)

	// FindHighestPublishedByKey returns the published version with the
	// highest version number for a key.
	FindHighestPublishedByKey(ctx context.Context, key, tenantID string) (*dmn.Decision, error)

	// Save inserts or replaces one decision version, keyed by its id.
	Save(ctx context.Context, decision *dmn.Decision) error

	// Delete removes one decision version by id. Deleting an absent id is
	// not an error.
	Delete(ctx context.Context, id string) error

	// Query returns the page of decisions matching the filter, ordered by
	// create time descending, together with the total match count.
	Query(ctx context.Context, filter *Filter, page, size int) ([]*dmn.Decision, int64, error)

	// Close releases backend resources.
	Close() error
}

// Filter selects decisions in Query. Zero-valued fields do not constrain.
type Filter struct {
	ID          string             `json:"id,omitempty"`
	DecisionKey string             `json:"decision_key,omitempty"`
	Name        string             `json:"name,omitempty"` // substring match
	Status      dmn.DecisionStatus `json:"status,omitempty"`
	Category    string             `json:"category,omitempty"`
	TenantID    string             `json:"tenant_id,omitempty"`
	Version     int                `json:"version,omitempty"`
}

// Pagination defaults applied when callers pass zero or negative values.
const (
	DefaultPage = 1
	DefaultSize = 20
)

// NormalizePage clamps page and size to their minimums and defaults.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if size < 1 {
		size = DefaultSize
	}
	return page, size
}
