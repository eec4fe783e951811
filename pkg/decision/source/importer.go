package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"tabular-hq/verdict/pkg/decision/manager"
	"tabular-hq/verdict/pkg/dmn"
)

// Importer pushes file-sourced decision drafts through the lifecycle manager.
// Keys seen for the first time are created, changed tables become new
// versions, unchanged tables are left alone. When a sync fails, decisions
// already imported stay in place.
type Importer struct {
	source  *FileSource
	manager *manager.Manager
	logger  *slog.Logger

	// AutoPublish publishes imported drafts immediately so the engine can
	// execute them. Without it imports stay in DRAFT.
	AutoPublish bool
}

// ImportResult summarizes one sync run.
type ImportResult struct {
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// Total returns the number of decisions the sync saw.
func (r *ImportResult) Total() int {
	return r.Created + r.Updated + r.Unchanged + r.Failed
}

// NewImporter creates an importer for the given source and manager.
func NewImporter(src *FileSource, mgr *manager.Manager, autoPublish bool) *Importer {
	return &Importer{
		source:      src,
		manager:     mgr,
		logger:      slog.Default().With("component", "decision_importer"),
		AutoPublish: autoPublish,
	}
}

// Sync loads the source and reconciles every decision it contains with the
// manager. It returns an error only when the source itself cannot be read;
// per-decision failures are reported in the result and do not stop the run.
func (im *Importer) Sync(ctx context.Context) (*ImportResult, error) {
	drafts, err := im.source.LoadDecisions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading decisions: %w", err)
	}

	result := &ImportResult{}
	for _, draft := range drafts {
		if err := im.syncOne(ctx, draft, result); err != nil {
			result.Failed++
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: %v", draft.DecisionKey, err))
			im.logger.Error("decision import failed",
				"decision_key", draft.DecisionKey,
				"error", err,
			)
		}
	}

	im.logger.Info("decision sync completed",
		"created", result.Created,
		"updated", result.Updated,
		"unchanged", result.Unchanged,
		"failed", result.Failed,
	)

	return result, nil
}

// syncOne reconciles a single draft with the stored state of its key.
func (im *Importer) syncOne(ctx context.Context, draft *dmn.Decision, result *ImportResult) error {
	existing, err := im.manager.GetByKey(ctx, draft.DecisionKey, draft.TenantID, 0)

	var notFound *manager.NotFoundError
	switch {
	case errors.As(err, &notFound):
		created, err := im.manager.Create(ctx, draft)
		if err != nil {
			return err
		}
		if im.AutoPublish {
			if _, err := im.manager.Publish(ctx, created.ID); err != nil {
				return err
			}
		}
		result.Created++
		return nil

	case err != nil:
		return err
	}

	if sameTable(existing, draft) {
		if im.AutoPublish && existing.Status == dmn.StatusDraft {
			if _, err := im.manager.Publish(ctx, existing.ID); err != nil {
				return err
			}
			result.Updated++
			return nil
		}
		result.Unchanged++
		return nil
	}

	// The table changed on disk. Edit the latest version in place while it is
	// still a draft, otherwise cut a new version.
	target := existing
	if !existing.Status.CanEdit() {
		target, err = im.manager.NewVersion(ctx, existing.ID)
		if err != nil {
			return err
		}
	}

	body := draft.Clone()
	body.ID = target.ID
	if _, err := im.manager.Update(ctx, body); err != nil {
		return err
	}
	if im.AutoPublish {
		if _, err := im.manager.Publish(ctx, target.ID); err != nil {
			return err
		}
	}
	result.Updated++
	return nil
}

// tableBody is the definition subset compared between disk and store.
type tableBody struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	HitPolicy   dmn.HitPolicy         `json:"hit_policy"`
	Aggregation dmn.Aggregation       `json:"aggregation"`
	Inputs      []*dmn.DecisionInput  `json:"inputs"`
	Outputs     []*dmn.DecisionOutput `json:"outputs"`
	Rules       []*dmn.Rule           `json:"rules"`
}

// sameTable reports whether two decisions define the same table. Identity and
// lifecycle fields are ignored; rule ids are normalized the way the manager
// normalizes them on save, so a fresh draft compares equal to its stored form.
func sameTable(a, b *dmn.Decision) bool {
	return string(fingerprint(a)) == string(fingerprint(b))
}

func fingerprint(d *dmn.Decision) []byte {
	c := d.Clone()
	if c.HitPolicy == "" {
		c.HitPolicy = dmn.HitPolicyFirst
	}
	for i, r := range c.Rules {
		if r.ID == "" {
			r.ID = dmn.SyntheticRuleID(i)
		}
	}
	body := tableBody{
		Name:        c.Name,
		Description: c.Description,
		HitPolicy:   c.HitPolicy,
		Aggregation: c.Aggregation,
		Inputs:      c.Inputs,
		Outputs:     c.Outputs,
		Rules:       c.Rules,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return []byte(d.DecisionKey)
	}
	return data
}
