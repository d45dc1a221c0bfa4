package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestEnsureSchema_FreshDatabase(t *testing.T) {
	st := openTestStore(t)
	if err := st.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	cols, err := st.tableColumns(context.Background(), "jobs")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"id", "title", "company", "city", "region", "freshness_days",
		"annual_pay", "pay_display", "score", "raw_payload", "status",
	} {
		if !cols[want] {
			t.Errorf("column %s missing after EnsureSchema", want)
		}
	}
}

// A database created by an older revision gets the new columns added and the
// old rows backfilled, without disturbing the data those rows already carry.
func TestEnsureSchema_UpgradesLegacyTable(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, err := st.db.ExecContext(ctx,
		`CREATE TABLE jobs (id TEXT PRIMARY KEY, title TEXT, company TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := st.db.ExecContext(ctx,
		`INSERT INTO jobs (id, title, company) VALUES ('legacy1', 'Old Title', 'Old Co')`); err != nil {
		t.Fatal(err)
	}

	if err := st.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	rec, err := st.GetJob(ctx, "legacy1")
	if err != nil {
		t.Fatalf("GetJob after upgrade: %v", err)
	}
	if rec.Title != "Old Title" || rec.Company != "Old Co" {
		t.Errorf("existing data disturbed: title=%q company=%q", rec.Title, rec.Company)
	}
	if rec.Score != 50 {
		t.Errorf("score = %d, want backfilled 50", rec.Score)
	}
	if rec.Status != "NEW" {
		t.Errorf("status = %q, want backfilled NEW", rec.Status)
	}
}

func TestEnsureSchema_BackfillSparesPopulatedValues(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := st.db.ExecContext(ctx,
		`INSERT INTO jobs (id, title, score, status) VALUES ('kept', 'Dev', 88, 'APPROVED')`); err != nil {
		t.Fatal(err)
	}

	if err := st.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	rec, err := st.GetJob(ctx, "kept")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Score != 88 || rec.Status != "APPROVED" {
		t.Errorf("populated values overwritten: score=%d status=%q", rec.Score, rec.Status)
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := st.EnsureSchema(ctx); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}
}
