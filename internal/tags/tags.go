// Package tags maintains the categorized skill-tag vocabulary harvested
// during review. Tags live in exactly one category at a time.
package tags

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Categories recognized by the review UI.
var Categories = []string{"qualifications", "skills", "benefits", "ignored"}

// Store is a file-backed tag vocabulary. Safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a Store persisting at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Harvest moves a tag into category, removing it from any other category
// first. Unknown categories are rejected.
func (s *Store) Harvest(tag, category string) error {
	if !validCategory(category) {
		return fmt.Errorf("unknown tag category %q", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return err
	}

	for cat, items := range db {
		db[cat] = remove(items, tag)
	}
	db[category] = append(db[category], tag)

	return s.save(db)
}

// CategoryMap returns a lowercase tag → category lookup over the whole
// vocabulary. Tags not in the map have never been harvested.
func (s *Store) CategoryMap() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for cat, items := range db {
		for _, item := range items {
			out[strings.ToLower(item)] = cat
		}
	}
	return out, nil
}

// All returns the full vocabulary, every category present.
func (s *Store) All() (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (map[string][]string, error) {
	db := make(map[string][]string)
	for _, c := range Categories {
		db[c] = []string{}
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return db, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tags %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parse tags %s: %w", s.path, err)
	}
	for _, c := range Categories {
		if db[c] == nil {
			db[c] = []string{}
		}
	}
	return db, nil
}

func (s *Store) save(db map[string][]string) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write tags %s: %w", s.path, err)
	}
	return nil
}

func validCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func remove(items []string, tag string) []string {
	out := items[:0]
	for _, it := range items {
		if it != tag {
			out = append(out, it)
		}
	}
	return out
}
