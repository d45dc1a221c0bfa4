package history_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m5trevino/trevino-war-room/internal/history"
)

func TestBump_SessionAndAllTime(t *testing.T) {
	tr := history.NewTracker(filepath.Join(t.TempDir(), "job_history.json"))

	if err := tr.Bump("approved", 1); err != nil {
		t.Fatalf("Bump: %v", err)
	}
	if err := tr.Bump("approved", 2); err != nil {
		t.Fatal(err)
	}

	session, allTime := tr.Snapshot()
	if session["approved"] != 3 {
		t.Errorf("session approved = %d, want 3", session["approved"])
	}
	if allTime["approved"] != 3 {
		t.Errorf("all-time approved = %d, want 3", allTime["approved"])
	}
}

// Session counters start at zero per process; the all-time file carries over.
func TestBump_AllTimePersistsAcrossTrackers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_history.json")

	if err := history.NewTracker(path).Bump("scraped", 5); err != nil {
		t.Fatal(err)
	}

	session, allTime := history.NewTracker(path).Snapshot()
	if session["scraped"] != 0 {
		t.Errorf("fresh session scraped = %d, want 0", session["scraped"])
	}
	if allTime["scraped"] != 5 {
		t.Errorf("all-time scraped = %d, want 5", allTime["scraped"])
	}
}

func TestSnapshot_ZeroValuedKeysPresent(t *testing.T) {
	tr := history.NewTracker(filepath.Join(t.TempDir(), "job_history.json"))

	session, allTime := tr.Snapshot()
	for _, k := range []string{"scraped", "approved", "denied", "sent_to_groq"} {
		if _, ok := session[k]; !ok {
			t.Errorf("session missing key %s", k)
		}
		if _, ok := allTime[k]; !ok {
			t.Errorf("all-time missing key %s", k)
		}
	}
}

func TestBump_CorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_history.json")
	if err := os.WriteFile(path, []byte("{{{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	tr := history.NewTracker(path)
	if err := tr.Bump("denied", 1); err != nil {
		t.Fatalf("Bump over corrupt file: %v", err)
	}
	_, allTime := tr.Snapshot()
	if allTime["denied"] != 1 {
		t.Errorf("all-time denied = %d, want 1 after fresh start", allTime["denied"])
	}
}
