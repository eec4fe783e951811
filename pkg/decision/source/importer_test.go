package source

import (
	"context"
	"strings"
	"testing"

	"tabular-hq/verdict/pkg/decision/manager"
	"tabular-hq/verdict/pkg/decision/store"
	"tabular-hq/verdict/pkg/dmn"
)

func newTestManager(t *testing.T) *manager.Manager {
	t.Helper()
	mgr, err := manager.New(store.NewMemoryStore(), nil, nil, nil)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	return mgr
}

func TestImporter_SyncCreatesDrafts(t *testing.T) {
	tmpDir := t.TempDir()
	writeDMNFile(t, tmpDir, "dish.dmn", dishDMN)
	writeDMNFile(t, tmpDir, "beverage.xml", beverageDMN)

	mgr := newTestManager(t)
	importer := NewImporter(NewFileSource(tmpDir, "", nil), mgr, false)

	ctx := context.Background()
	result, err := importer.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() failed: %v", err)
	}

	if result.Created != 2 {
		t.Errorf("Created = %d, want 2", result.Created)
	}
	if result.Failed != 0 {
		t.Errorf("Failed = %d, want 0: %v", result.Failed, result.Errors)
	}
	if result.Total() != 2 {
		t.Errorf("Total() = %d, want 2", result.Total())
	}

	d, err := mgr.GetByKey(ctx, "dish", "", 0)
	if err != nil {
		t.Fatalf("GetByKey() failed: %v", err)
	}
	if d.Status != dmn.StatusDraft {
		t.Errorf("status = %q, want DRAFT", d.Status)
	}
	if d.Version != 1 {
		t.Errorf("version = %d, want 1", d.Version)
	}
}

func TestImporter_SyncAutoPublish(t *testing.T) {
	tmpDir := t.TempDir()
	writeDMNFile(t, tmpDir, "dish.dmn", dishDMN)

	mgr := newTestManager(t)
	importer := NewImporter(NewFileSource(tmpDir, "", nil), mgr, true)

	ctx := context.Background()
	result, err := importer.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() failed: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("Created = %d, want 1: %v", result.Created, result.Errors)
	}

	d, err := mgr.GetByKey(ctx, "dish", "", 0)
	if err != nil {
		t.Fatalf("GetByKey() failed: %v", err)
	}
	if d.Status != dmn.StatusPublished {
		t.Errorf("status = %q, want PUBLISHED", d.Status)
	}
}

func TestImporter_SyncUnchanged(t *testing.T) {
	tmpDir := t.TempDir()
	writeDMNFile(t, tmpDir, "dish.dmn", dishDMN)

	mgr := newTestManager(t)
	importer := NewImporter(NewFileSource(tmpDir, "", nil), mgr, true)

	ctx := context.Background()
	if _, err := importer.Sync(ctx); err != nil {
		t.Fatalf("first Sync() failed: %v", err)
	}

	result, err := importer.Sync(ctx)
	if err != nil {
		t.Fatalf("second Sync() failed: %v", err)
	}

	if result.Unchanged != 1 {
		t.Errorf("Unchanged = %d, want 1 (created=%d updated=%d failed=%d)",
			result.Unchanged, result.Created, result.Updated, result.Failed)
	}

	d, err := mgr.GetByKey(ctx, "dish", "", 0)
	if err != nil {
		t.Fatalf("GetByKey() failed: %v", err)
	}
	if d.Version != 1 {
		t.Errorf("version after unchanged re-sync = %d, want 1", d.Version)
	}
}

func TestImporter_SyncUpdatesDraftInPlace(t *testing.T) {
	tmpDir := t.TempDir()
	writeDMNFile(t, tmpDir, "dish.dmn", dishDMN)

	mgr := newTestManager(t)
	importer := NewImporter(NewFileSource(tmpDir, "", nil), mgr, false)

	ctx := context.Background()
	if _, err := importer.Sync(ctx); err != nil {
		t.Fatalf("first Sync() failed: %v", err)
	}

	// Change the winter dish on disk
	changed := strings.Replace(dishDMN, "Roastbeef", "Stew", 1)
	writeDMNFile(t, tmpDir, "dish.dmn", changed)

	result, err := importer.Sync(ctx)
	if err != nil {
		t.Fatalf("second Sync() failed: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("Updated = %d, want 1: %v", result.Updated, result.Errors)
	}

	d, err := mgr.GetByKey(ctx, "dish", "", 0)
	if err != nil {
		t.Fatalf("GetByKey() failed: %v", err)
	}
	if d.Version != 1 {
		t.Errorf("draft should be edited in place, got version %d", d.Version)
	}
	if d.Rules[0].Outputs[0].Value != "Stew" {
		t.Errorf("rule output = %v, want Stew", d.Rules[0].Outputs[0].Value)
	}
}

func TestImporter_SyncVersionsPublishedDecision(t *testing.T) {
	tmpDir := t.TempDir()
	writeDMNFile(t, tmpDir, "dish.dmn", dishDMN)

	mgr := newTestManager(t)
	importer := NewImporter(NewFileSource(tmpDir, "", nil), mgr, true)

	ctx := context.Background()
	if _, err := importer.Sync(ctx); err != nil {
		t.Fatalf("first Sync() failed: %v", err)
	}

	changed := strings.Replace(dishDMN, "Roastbeef", "Stew", 1)
	writeDMNFile(t, tmpDir, "dish.dmn", changed)

	result, err := importer.Sync(ctx)
	if err != nil {
		t.Fatalf("second Sync() failed: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("Updated = %d, want 1: %v", result.Updated, result.Errors)
	}

	d, err := mgr.GetByKey(ctx, "dish", "", 0)
	if err != nil {
		t.Fatalf("GetByKey() failed: %v", err)
	}
	if d.Version != 2 {
		t.Errorf("published decision should get a new version, got %d", d.Version)
	}
	if d.Status != dmn.StatusPublished {
		t.Errorf("new version status = %q, want PUBLISHED", d.Status)
	}
	if d.Rules[0].Outputs[0].Value != "Stew" {
		t.Errorf("rule output = %v, want Stew", d.Rules[0].Outputs[0].Value)
	}

	// The original version is untouched
	v1, err := mgr.GetByKey(ctx, "dish", "", 1)
	if err != nil {
		t.Fatalf("GetByKey(v1) failed: %v", err)
	}
	if v1.Rules[0].Outputs[0].Value != "Roastbeef" {
		t.Errorf("version 1 output = %v, want Roastbeef", v1.Rules[0].Outputs[0].Value)
	}
}

func TestImporter_SyncPublishesExistingDraft(t *testing.T) {
	tmpDir := t.TempDir()
	writeDMNFile(t, tmpDir, "dish.dmn", dishDMN)

	mgr := newTestManager(t)
	ctx := context.Background()

	// First import leaves a draft
	draftImporter := NewImporter(NewFileSource(tmpDir, "", nil), mgr, false)
	if _, err := draftImporter.Sync(ctx); err != nil {
		t.Fatalf("draft Sync() failed: %v", err)
	}

	// Second import with auto-publish promotes it without touching the body
	publishImporter := NewImporter(NewFileSource(tmpDir, "", nil), mgr, true)
	result, err := publishImporter.Sync(ctx)
	if err != nil {
		t.Fatalf("publish Sync() failed: %v", err)
	}
	if result.Updated != 1 {
		t.Errorf("Updated = %d, want 1", result.Updated)
	}

	d, err := mgr.GetByKey(ctx, "dish", "", 0)
	if err != nil {
		t.Fatalf("GetByKey() failed: %v", err)
	}
	if d.Status != dmn.StatusPublished {
		t.Errorf("status = %q, want PUBLISHED", d.Status)
	}
	if d.Version != 1 {
		t.Errorf("version = %d, want 1", d.Version)
	}
}

func TestImporter_SyncSourceError(t *testing.T) {
	mgr := newTestManager(t)
	importer := NewImporter(NewFileSource("/nonexistent/decisions", "", nil), mgr, false)

	if _, err := importer.Sync(context.Background()); err == nil {
		t.Fatal("Expected error when the source path does not exist")
	}
}

func TestSameTable(t *testing.T) {
	a := &dmn.Decision{
		DecisionKey: "dish",
		Name:        "Dish",
		HitPolicy:   dmn.HitPolicyFirst,
		Rules: []*dmn.Rule{
			{Conditions: []*dmn.Condition{{InputID: "input_1", Operator: "==", Value: "Winter"}},
				Outputs: []*dmn.RuleOutput{{OutputID: "output_1", Value: "Stew"}}},
		},
	}

	// Same table with rule ids normalized by storage
	b := a.Clone()
	b.ID = "stored-id"
	b.Version = 3
	b.Status = dmn.StatusPublished
	b.Rules[0].ID = dmn.SyntheticRuleID(0)

	if !sameTable(a, b) {
		t.Error("tables differing only in identity fields should compare equal")
	}

	c := a.Clone()
	c.Rules[0].Outputs[0].Value = "Salad"
	if sameTable(a, c) {
		t.Error("tables with different rule outputs should not compare equal")
	}

	d := a.Clone()
	d.HitPolicy = dmn.HitPolicyUnique
	if sameTable(a, d) {
		t.Error("tables with different hit policies should not compare equal")
	}
}
