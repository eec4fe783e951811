// Package manager owns the decision lifecycle: create, edit, publish,
// suspend, activate, version, archive and delete, enforcing the status state
// machine and key/version uniqueness on top of a DecisionStore.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tabular-hq/verdict/pkg/decision/engine"
	"tabular-hq/verdict/pkg/decision/store"
	"tabular-hq/verdict/pkg/dmn"
	"tabular-hq/verdict/pkg/execution"
)

// Manager coordinates decision lifecycle operations. All mutations flow
// through the store; the manager itself holds no decision state, so any
// number of instances may share one store.
type Manager struct {
	store   store.DecisionStore
	history execution.Storage
	clock   func() time.Time
	newID   func() string
	logger  *slog.Logger
}

// Config carries the injectable collaborators. Zero values select real
// implementations: time.Now and UUID v4 ids.
type Config struct {
	Clock func() time.Time
	NewID func() string
}

// New creates a lifecycle manager. The history storage may be nil; then
// Statistics reports zeros.
func New(decisionStore store.DecisionStore, history execution.Storage, cfg *Config, logger *slog.Logger) (*Manager, error) {
	if decisionStore == nil {
		return nil, fmt.Errorf("decision store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		store:   decisionStore,
		history: history,
		clock:   time.Now,
		newID:   func() string { return uuid.New().String() },
		logger:  logger.With("component", "decision_manager"),
	}
	if cfg != nil {
		if cfg.Clock != nil {
			m.clock = cfg.Clock
		}
		if cfg.NewID != nil {
			m.newID = cfg.NewID
		}
	}
	return m, nil
}

// Create stores a new decision as version 1 in DRAFT. The draft's key must
// not exist yet for the tenant; revisions of existing keys go through
// NewVersion. Identity fields on the draft (id, version, status, timestamps)
// are overwritten.
func (m *Manager) Create(ctx context.Context, draft *dmn.Decision) (*dmn.Decision, error) {
	if draft == nil {
		return nil, &InvalidDecisionError{Reason: "decision is nil"}
	}
	if err := checkBody(draft); err != nil {
		return nil, err
	}

	existing, err := m.store.FindByKey(ctx, draft.DecisionKey, draft.TenantID, 0)
	if err != nil {
		return nil, fmt.Errorf("checking key uniqueness: %w", err)
	}
	if existing != nil {
		return nil, &AlreadyExistsError{Key: draft.DecisionKey, TenantID: draft.TenantID}
	}

	now := m.clock()
	d := draft.Clone()
	d.ID = m.newID()
	d.Version = 1
	d.Status = dmn.StatusDraft
	d.PublishTime = nil
	d.CreateTime = now
	d.UpdateTime = now
	normalizeBody(d)

	if err := m.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving decision: %w", err)
	}
	m.logger.Info("decision created",
		"decision_id", d.ID,
		"decision_key", d.DecisionKey,
		"version", d.Version,
	)
	return d, nil
}

// Get returns one decision version by id.
func (m *Manager) Get(ctx context.Context, id string) (*dmn.Decision, error) {
	d, err := m.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading decision: %w", err)
	}
	if d == nil {
		return nil, &NotFoundError{ID: id}
	}
	return d, nil
}

// GetByKey returns one version of a decision key. Version 0 selects the
// highest version regardless of status.
func (m *Manager) GetByKey(ctx context.Context, key, tenantID string, version int) (*dmn.Decision, error) {
	d, err := m.store.FindByKey(ctx, key, tenantID, version)
	if err != nil {
		return nil, fmt.Errorf("loading decision: %w", err)
	}
	if d == nil {
		return nil, &NotFoundError{Key: key}
	}
	return d, nil
}

// Update replaces the definition body of a draft. Published and suspended
// versions are immutable; identity and lifecycle fields on the incoming
// value are ignored.
func (m *Manager) Update(ctx context.Context, updated *dmn.Decision) (*dmn.Decision, error) {
	if updated == nil || updated.ID == "" {
		return nil, &InvalidDecisionError{Reason: "decision id is required"}
	}
	if err := checkBody(updated); err != nil {
		return nil, err
	}

	current, err := m.Get(ctx, updated.ID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanEdit() {
		return nil, &StateError{ID: current.ID, Status: current.Status, Action: "edit"}
	}

	d := current.Clone()
	d.Name = updated.Name
	d.Description = updated.Description
	d.Category = updated.Category
	d.HitPolicy = updated.HitPolicy
	d.Aggregation = updated.Aggregation
	d.Inputs = cloneInputs(updated.Inputs)
	d.Outputs = cloneOutputs(updated.Outputs)
	d.Rules = cloneRules(updated.Rules)
	d.UpdateTime = m.clock()
	normalizeBody(d)

	if err := m.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving decision: %w", err)
	}
	m.logger.Info("decision updated", "decision_id", d.ID, "decision_key", d.DecisionKey)
	return d, nil
}

// Delete removes a draft. Any other status is rejected.
func (m *Manager) Delete(ctx context.Context, id string) error {
	current, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	if !current.Status.CanDelete() {
		return &StateError{ID: id, Status: current.Status, Action: "delete"}
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting decision: %w", err)
	}
	m.logger.Info("decision deleted", "decision_id", id, "decision_key", current.DecisionKey)
	return nil
}

// Publish transitions a draft to PUBLISHED, freezing its body and stamping
// the publish time. A draft that fails validation cannot be published.
func (m *Manager) Publish(ctx context.Context, id string) (*dmn.Decision, error) {
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanPublish() {
		return nil, &StateError{ID: id, Status: current.Status, Action: "publish"}
	}
	if report := engine.ValidateDecision(current); !report.Valid {
		return nil, &InvalidDecisionError{
			Reason: "cannot publish: " + strings.Join(report.Errors, "; "),
		}
	}

	now := m.clock()
	d := current.Clone()
	d.Status = dmn.StatusPublished
	d.PublishTime = &now
	d.UpdateTime = now

	if err := m.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving decision: %w", err)
	}
	m.logger.Info("decision published",
		"decision_id", d.ID,
		"decision_key", d.DecisionKey,
		"version", d.Version,
	)
	return d, nil
}

// Suspend blocks execution of a published version.
func (m *Manager) Suspend(ctx context.Context, id string) (*dmn.Decision, error) {
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanSuspend() {
		return nil, &StateError{ID: id, Status: current.Status, Action: "suspend"}
	}

	d := current.Clone()
	d.Status = dmn.StatusSuspended
	d.UpdateTime = m.clock()

	if err := m.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving decision: %w", err)
	}
	m.logger.Info("decision suspended", "decision_id", d.ID, "decision_key", d.DecisionKey)
	return d, nil
}

// Activate re-publishes a suspended version. The original publish time is
// kept; activation is a resume, not a new release.
func (m *Manager) Activate(ctx context.Context, id string) (*dmn.Decision, error) {
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanActivate() {
		return nil, &StateError{ID: id, Status: current.Status, Action: "activate"}
	}

	d := current.Clone()
	d.Status = dmn.StatusPublished
	d.UpdateTime = m.clock()

	if err := m.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving decision: %w", err)
	}
	m.logger.Info("decision activated", "decision_id", d.ID, "decision_key", d.DecisionKey)
	return d, nil
}

// Archive retires a published or suspended version. Archived versions stay
// readable but can never execute or change again.
func (m *Manager) Archive(ctx context.Context, id string) (*dmn.Decision, error) {
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != dmn.StatusPublished && current.Status != dmn.StatusSuspended {
		return nil, &StateError{ID: id, Status: current.Status, Action: "archive"}
	}

	d := current.Clone()
	d.Status = dmn.StatusArchived
	d.UpdateTime = m.clock()

	if err := m.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving decision: %w", err)
	}
	m.logger.Info("decision archived", "decision_id", d.ID, "decision_key", d.DecisionKey)
	return d, nil
}

// NewVersion copies an existing version into a fresh DRAFT with the next
// version number for its key and tenant.
func (m *Manager) NewVersion(ctx context.Context, id string) (*dmn.Decision, error) {
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	highest, err := m.store.FindByKey(ctx, current.DecisionKey, current.TenantID, 0)
	if err != nil {
		return nil, fmt.Errorf("finding highest version: %w", err)
	}
	nextVersion := current.Version + 1
	if highest != nil && highest.Version >= nextVersion {
		nextVersion = highest.Version + 1
	}

	now := m.clock()
	d := current.Clone()
	d.ID = m.newID()
	d.Version = nextVersion
	d.Status = dmn.StatusDraft
	d.PublishTime = nil
	d.CreateTime = now
	d.UpdateTime = now

	if err := m.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving decision: %w", err)
	}
	m.logger.Info("decision version created",
		"decision_id", d.ID,
		"decision_key", d.DecisionKey,
		"version", d.Version,
		"copied_from", current.ID,
	)
	return d, nil
}

// Query pages through decisions matching the filter, newest first.
func (m *Manager) Query(ctx context.Context, filter *store.Filter, page, size int) ([]*dmn.Decision, int64, error) {
	return m.store.Query(ctx, filter, page, size)
}

// Statistics aggregates execution history for one decision version. Without
// a configured history store every counter is zero.
func (m *Manager) Statistics(ctx context.Context, id string) (*execution.Stats, error) {
	if _, err := m.Get(ctx, id); err != nil {
		return nil, err
	}
	if m.history == nil {
		return &execution.Stats{}, nil
	}
	stats, err := m.history.Stats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading statistics: %w", err)
	}
	if stats == nil {
		stats = &execution.Stats{}
	}
	return stats, nil
}

// checkBody verifies the caller-supplied definition fields.
func checkBody(d *dmn.Decision) error {
	if d.DecisionKey == "" {
		return &InvalidDecisionError{Reason: "decision key is required"}
	}
	if d.Name == "" {
		return &InvalidDecisionError{Reason: "name is required"}
	}
	if d.HitPolicy != "" && !d.HitPolicy.Valid() {
		return &InvalidDecisionError{Reason: fmt.Sprintf("unknown hit policy %q", d.HitPolicy)}
	}
	if d.Aggregation != dmn.AggregationNone && d.HitPolicy != dmn.HitPolicyCollect {
		return &InvalidDecisionError{Reason: "aggregation requires the COLLECT hit policy"}
	}
	return nil
}

// normalizeBody fills defaults a stored decision must have: a hit policy,
// synthetic rule ids and an accurate rule count.
func normalizeBody(d *dmn.Decision) {
	if d.HitPolicy == "" {
		d.HitPolicy = dmn.HitPolicyFirst
	}
	for i, r := range d.Rules {
		if r.ID == "" {
			r.ID = dmn.SyntheticRuleID(i)
		}
	}
	d.SyncRuleCount()
}

func cloneInputs(inputs []*dmn.DecisionInput) []*dmn.DecisionInput {
	out := make([]*dmn.DecisionInput, len(inputs))
	for i, in := range inputs {
		c := *in
		out[i] = &c
	}
	return out
}

func cloneOutputs(outputs []*dmn.DecisionOutput) []*dmn.DecisionOutput {
	out := make([]*dmn.DecisionOutput, len(outputs))
	for i, o := range outputs {
		c := *o
		if o.Values != nil {
			c.Values = append([]string(nil), o.Values...)
		}
		out[i] = &c
	}
	return out
}

func cloneRules(rules []*dmn.Rule) []*dmn.Rule {
	out := make([]*dmn.Rule, len(rules))
	for i, r := range rules {
		out[i] = r.Clone()
	}
	return out
}
