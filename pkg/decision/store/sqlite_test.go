package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"tabular-hq/verdict/pkg/dmn"
)

// createTempStore creates a SQLite decision store backed by a temp file.
func createTempStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "decisions.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}
	return s, dbPath
}

func TestSQLiteStore_Initialize(t *testing.T) {
	s, dbPath := createTempStore(t)
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestSQLiteStore_RejectsEmptyPath(t *testing.T) {
	if _, err := NewSQLiteStore(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestSQLiteStore_SaveAndFindByID(t *testing.T) {
	s, _ := createTempStore(t)
	defer s.Close()
	ctx := context.Background()

	original := testDecision("d1", "grading", 2, dmn.StatusPublished)
	if err := s.Save(ctx, original); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := s.FindByID(ctx, "d1")
	if err != nil {
		t.Fatalf("FindByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("FindByID() returned nil for stored decision")
	}

	if got.DecisionKey != original.DecisionKey ||
		got.Name != original.Name ||
		got.Description != original.Description ||
		got.Category != original.Category ||
		got.Version != original.Version ||
		got.Status != original.Status ||
		got.HitPolicy != original.HitPolicy ||
		got.RuleCount != original.RuleCount {
		t.Errorf("scalar fields round trip:\ngot  %+v\nwant %+v", got, original)
	}
	if !got.CreateTime.Equal(original.CreateTime) || !got.UpdateTime.Equal(original.UpdateTime) {
		t.Errorf("timestamps round trip: got %v/%v want %v/%v",
			got.CreateTime, got.UpdateTime, original.CreateTime, original.UpdateTime)
	}
	if got.PublishTime == nil || !got.PublishTime.Equal(*original.PublishTime) {
		t.Errorf("publish time = %v, want %v", got.PublishTime, original.PublishTime)
	}
	if !reflect.DeepEqual(got.Inputs, original.Inputs) {
		t.Errorf("inputs round trip:\ngot  %+v\nwant %+v", got.Inputs, original.Inputs)
	}
	if !reflect.DeepEqual(got.Outputs, original.Outputs) {
		t.Errorf("outputs round trip:\ngot  %+v\nwant %+v", got.Outputs, original.Outputs)
	}
	if !reflect.DeepEqual(got.Rules, original.Rules) {
		t.Errorf("rules round trip:\ngot  %+v\nwant %+v", got.Rules, original.Rules)
	}
}

func TestSQLiteStore_FindByIDAbsent(t *testing.T) {
	s, _ := createTempStore(t)
	defer s.Close()

	got, err := s.FindByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("FindByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for absent id, got %+v", got)
	}
}

func TestSQLiteStore_SaveUpserts(t *testing.T) {
	s, _ := createTempStore(t)
	defer s.Close()
	ctx := context.Background()

	d := testDecision("d1", "grading", 1, dmn.StatusDraft)
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	d.Name = "Renamed"
	d.Status = dmn.StatusPublished
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}

	got, err := s.FindByID(ctx, "d1")
	if err != nil {
		t.Fatalf("FindByID() failed: %v", err)
	}
	if got.Name != "Renamed" || got.Status != dmn.StatusPublished {
		t.Errorf("upsert lost changes: %+v", got)
	}

	_, total, err := s.Query(ctx, nil, 1, 20)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1 after upsert", total)
	}
}

func TestSQLiteStore_FindByKeyVersions(t *testing.T) {
	s, _ := createTempStore(t)
	defer s.Close()
	ctx := context.Background()

	for _, d := range []*dmn.Decision{
		testDecision("d1", "grading", 1, dmn.StatusPublished),
		testDecision("d2", "grading", 2, dmn.StatusSuspended),
		testDecision("d3", "grading", 3, dmn.StatusDraft),
	} {
		if err := s.Save(ctx, d); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}

	got, err := s.FindByKey(ctx, "grading", "", 0)
	if err != nil {
		t.Fatalf("FindByKey() failed: %v", err)
	}
	if got == nil || got.Version != 3 {
		t.Errorf("version 0 lookup = %+v, want version 3", got)
	}

	got, err = s.FindByKey(ctx, "grading", "", 2)
	if err != nil {
		t.Fatalf("FindByKey() failed: %v", err)
	}
	if got == nil || got.ID != "d2" {
		t.Errorf("exact version lookup = %+v, want d2", got)
	}

	got, err = s.FindHighestPublishedByKey(ctx, "grading", "")
	if err != nil {
		t.Fatalf("FindHighestPublishedByKey() failed: %v", err)
	}
	if got == nil || got.ID != "d1" {
		t.Errorf("published lookup = %+v, want d1", got)
	}
}

func TestSQLiteStore_TenantIsolation(t *testing.T) {
	s, _ := createTempStore(t)
	defer s.Close()
	ctx := context.Background()

	a := testDecision("a1", "grading", 1, dmn.StatusPublished)
	a.TenantID = "tenant-a"
	b := testDecision("b1", "grading", 1, dmn.StatusPublished)
	b.TenantID = "tenant-b"
	for _, d := range []*dmn.Decision{a, b} {
		if err := s.Save(ctx, d); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}

	got, err := s.FindHighestPublishedByKey(ctx, "grading", "tenant-a")
	if err != nil {
		t.Fatalf("FindHighestPublishedByKey() failed: %v", err)
	}
	if got == nil || got.ID != "a1" {
		t.Errorf("got %+v, want a1", got)
	}

	got, err = s.FindByKey(ctx, "grading", "tenant-c", 0)
	if err != nil {
		t.Fatalf("FindByKey() failed: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for unknown tenant", got)
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	s, _ := createTempStore(t)
	defer s.Close()
	ctx := context.Background()

	if err := s.Save(ctx, testDecision("d1", "grading", 1, dmn.StatusDraft)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := s.Delete(ctx, "d1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if got, _ := s.FindByID(ctx, "d1"); got != nil {
		t.Errorf("decision survived delete: %+v", got)
	}
	if err := s.Delete(ctx, "d1"); err != nil {
		t.Errorf("Delete() of absent id failed: %v", err)
	}
}

func TestSQLiteStore_QueryFiltersAndPagination(t *testing.T) {
	s, _ := createTempStore(t)
	defer s.Close()
	ctx := context.Background()

	published := testDecision("d1", "grading", 1, dmn.StatusPublished)
	draft := testDecision("d2", "grading", 2, dmn.StatusDraft)
	other := testDecision("d3", "routing", 1, dmn.StatusPublished)
	other.Category = "infrastructure"
	other.Name = "Order Routing"
	other.TenantID = "tenant-a"
	for _, d := range []*dmn.Decision{published, draft, other} {
		if err := s.Save(ctx, d); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}

	t.Run("order is create time descending", func(t *testing.T) {
		got, total, err := s.Query(ctx, nil, 1, 20)
		if err != nil {
			t.Fatalf("Query() failed: %v", err)
		}
		if total != 3 || len(got) != 3 {
			t.Fatalf("total=%d len=%d, want 3/3", total, len(got))
		}
		// draft (v2) was created last in the fixture, so it leads.
		if got[0].ID != "d2" {
			t.Errorf("first = %q, want d2", got[0].ID)
		}
	})

	t.Run("status and key filters", func(t *testing.T) {
		got, total, err := s.Query(ctx, &Filter{DecisionKey: "grading", Status: dmn.StatusPublished}, 1, 20)
		if err != nil {
			t.Fatalf("Query() failed: %v", err)
		}
		if total != 1 || got[0].ID != "d1" {
			t.Errorf("got total=%d %+v", total, got)
		}
	})

	t.Run("name is case-insensitive substring", func(t *testing.T) {
		got, total, err := s.Query(ctx, &Filter{Name: "order"}, 1, 20)
		if err != nil {
			t.Fatalf("Query() failed: %v", err)
		}
		if total != 1 || got[0].ID != "d3" {
			t.Errorf("got total=%d %+v", total, got)
		}
	})

	t.Run("tenant and category filters", func(t *testing.T) {
		got, total, err := s.Query(ctx, &Filter{TenantID: "tenant-a", Category: "infrastructure"}, 1, 20)
		if err != nil {
			t.Fatalf("Query() failed: %v", err)
		}
		if total != 1 || got[0].ID != "d3" {
			t.Errorf("got total=%d %+v", total, got)
		}
	})

	t.Run("pagination reports the full total", func(t *testing.T) {
		got, total, err := s.Query(ctx, nil, 2, 2)
		if err != nil {
			t.Fatalf("Query() failed: %v", err)
		}
		if total != 3 || len(got) != 1 {
			t.Errorf("total=%d len=%d, want 3/1", total, len(got))
		}
	})
}

func TestSQLiteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "decisions.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	ctx := context.Background()
	if err := s.Save(ctx, testDecision("d1", "grading", 1, dmn.StatusPublished)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.FindByID(ctx, "d1")
	if err != nil {
		t.Fatalf("FindByID() after reopen failed: %v", err)
	}
	if got == nil || got.DecisionKey != "grading" {
		t.Errorf("decision lost across restart: %+v", got)
	}
}

func TestSQLiteStore_CloseIsIdempotent(t *testing.T) {
	s, _ := createTempStore(t)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}
