package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Blacklist is the user-maintained list of exclusion terms. A posting whose
// title or employer contains any term (case-insensitive) is auto-denied at
// ingest time. List order is priority order: the first matching term wins and
// no further terms are checked.
type Blacklist struct {
	mu    sync.RWMutex
	path  string
	terms []string
}

// LoadBlacklist reads the JSON term array at path. A missing file is an
// empty blacklist, not an error. Terms are normalized to lowercase.
func LoadBlacklist(path string) (*Blacklist, error) {
	b := &Blacklist{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read blacklist %s: %w", path, err)
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse blacklist %s: %w", path, err)
	}
	for _, t := range raw {
		b.terms = append(b.terms, strings.ToLower(t))
	}
	return b, nil
}

// Match checks title and employer against the term list and returns the
// first matching term. Matching is case-insensitive substring containment.
func (b *Blacklist) Match(title, employer string) (string, bool) {
	title = strings.ToLower(title)
	employer = strings.ToLower(employer)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, term := range b.terms {
		if term == "" {
			continue
		}
		if strings.Contains(title, term) || strings.Contains(employer, term) {
			return term, true
		}
	}
	return "", false
}

// Terms returns a copy of the current term list.
func (b *Blacklist) Terms() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.terms))
	copy(out, b.terms)
	return out
}

// Add appends a term (lowercased) and persists the list back to disk.
// Adding a term that is already present is a no-op.
func (b *Blacklist) Add(term string) error {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return fmt.Errorf("empty blacklist term")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.terms {
		if t == term {
			return nil
		}
	}
	b.terms = append(b.terms, term)

	data, err := json.MarshalIndent(b.terms, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal blacklist: %w", err)
	}
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("write blacklist %s: %w", b.path, err)
	}
	return nil
}
