// Package history tracks review-activity counters: a volatile per-session
// map plus an all-time tally persisted as a small JSON file.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Known counter keys. Bumps to other keys only touch the all-time file.
var sessionKeys = []string{"scraped", "approved", "denied", "sent_to_groq"}

type fileShape struct {
	AllTime map[string]int `json:"all_time"`
}

// Tracker accumulates counters. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	path    string
	session map[string]int
}

// NewTracker returns a Tracker persisting all-time counts at path.
func NewTracker(path string) *Tracker {
	t := &Tracker{path: path, session: make(map[string]int)}
	for _, k := range sessionKeys {
		t.session[k] = 0
	}
	return t
}

// Bump increments a counter in the session map and the all-time file.
// Persistence failures are returned but leave the session count applied.
func (t *Tracker) Bump(key string, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.session[key]; ok {
		t.session[key] += amount
	}

	all, err := t.load()
	if err != nil {
		return err
	}
	all.AllTime[key] += amount

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.WriteFile(t.path, data, 0o644); err != nil {
		return fmt.Errorf("write history %s: %w", t.path, err)
	}
	return nil
}

// Snapshot returns copies of the session and all-time counter maps. Every
// session key is present in both, zero-valued when never bumped.
func (t *Tracker) Snapshot() (session, allTime map[string]int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	session = make(map[string]int, len(t.session))
	for k, v := range t.session {
		session[k] = v
	}

	allTime = make(map[string]int)
	if all, err := t.load(); err == nil {
		allTime = all.AllTime
	}
	for _, k := range sessionKeys {
		if _, ok := allTime[k]; !ok {
			allTime[k] = 0
		}
	}
	return session, allTime
}

// load reads the all-time file; a missing or corrupt file starts fresh.
func (t *Tracker) load() (*fileShape, error) {
	out := &fileShape{AllTime: make(map[string]int)}

	data, err := os.ReadFile(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", t.path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &fileShape{AllTime: make(map[string]int)}, nil
	}
	if out.AllTime == nil {
		out.AllTime = make(map[string]int)
	}
	return out, nil
}
