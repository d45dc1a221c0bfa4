package triage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/m5trevino/trevino-war-room/internal/model"
	"github.com/m5trevino/trevino-war-room/internal/store"
	"github.com/m5trevino/trevino-war-room/internal/triage"
)

// newService wires a Service against a temp-file store with events and
// history disabled.
func newService(t *testing.T, recs ...model.JobRecord) (*triage.Service, *store.Store) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	for _, rec := range recs {
		if err := st.InsertJob(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}
	return triage.NewService(st, nil, nil), st
}

func TestApprove(t *testing.T) {
	svc, st := newService(t, model.JobRecord{ID: "j1", Status: "NEW"})
	ctx := context.Background()

	if err := svc.Approve(ctx, "j1"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	status, err := st.GetStatus(ctx, "j1")
	if err != nil {
		t.Fatal(err)
	}
	if status != "APPROVED" {
		t.Errorf("status = %q, want APPROVED", status)
	}
}

func TestApprove_Repeated(t *testing.T) {
	svc, st := newService(t, model.JobRecord{ID: "j1", Status: "NEW"})
	ctx := context.Background()

	if err := svc.Approve(ctx, "j1"); err != nil {
		t.Fatal(err)
	}
	// Same-status transition is a no-op, not an error.
	if err := svc.Approve(ctx, "j1"); err != nil {
		t.Errorf("second Approve: %v, want nil", err)
	}
	status, _ := st.GetStatus(ctx, "j1")
	if status != "APPROVED" {
		t.Errorf("status = %q, want APPROVED", status)
	}
}

func TestDeny_FromDeliveredForbidden(t *testing.T) {
	svc, st := newService(t, model.JobRecord{ID: "j1", Status: "DELIVERED"})
	ctx := context.Background()

	err := svc.Deny(ctx, "j1")
	var verr *triage.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Deny from DELIVERED: err = %v, want *ValidationError", err)
	}
	status, _ := st.GetStatus(ctx, "j1")
	if status != "DELIVERED" {
		t.Errorf("status = %q, want DELIVERED untouched", status)
	}
}

func TestRestore(t *testing.T) {
	svc, st := newService(t,
		model.JobRecord{ID: "auto", Status: "AUTO_DENIED"},
		model.JobRecord{ID: "human", Status: "DENIED"},
	)
	ctx := context.Background()

	for _, id := range []string{"auto", "human"} {
		if err := svc.Restore(ctx, id); err != nil {
			t.Fatalf("Restore %s: %v", id, err)
		}
		status, _ := st.GetStatus(ctx, id)
		if status != "NEW" {
			t.Errorf("status of %s = %q, want NEW", id, status)
		}
	}
}

func TestMarkDelivered(t *testing.T) {
	svc, st := newService(t, model.JobRecord{ID: "j1", Status: "APPROVED"})
	ctx := context.Background()

	if err := svc.MarkDelivered(ctx, "j1"); err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}
	status, _ := st.GetStatus(ctx, "j1")
	if status != "DELIVERED" {
		t.Errorf("status = %q, want DELIVERED", status)
	}
}

func TestApprove_UnknownID(t *testing.T) {
	svc, _ := newService(t)

	err := svc.Approve(context.Background(), "ghost")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Approve unknown id: err = %v, want store.ErrNotFound", err)
	}
}

// Rows with a status value the state machine does not know stay reviewable.
func TestApprove_UnknownLegacyStatus(t *testing.T) {
	svc, st := newService(t, model.JobRecord{ID: "j1", Status: "WEIRD"})
	ctx := context.Background()

	if err := svc.Approve(ctx, "j1"); err != nil {
		t.Fatalf("Approve legacy row: %v", err)
	}
	status, _ := st.GetStatus(ctx, "j1")
	if status != "APPROVED" {
		t.Errorf("status = %q, want APPROVED", status)
	}
}
