package tags_test

import (
	"path/filepath"
	"testing"

	"github.com/m5trevino/trevino-war-room/internal/tags"
)

func newStore(t *testing.T) *tags.Store {
	t.Helper()
	return tags.NewStore(filepath.Join(t.TempDir(), "categorized_tags.json"))
}

func TestHarvest(t *testing.T) {
	s := newStore(t)

	if err := s.Harvest("forklift", "skills"); err != nil {
		t.Fatalf("Harvest: %v", err)
	}

	cm, err := s.CategoryMap()
	if err != nil {
		t.Fatal(err)
	}
	if cm["forklift"] != "skills" {
		t.Errorf("category of forklift = %q, want skills", cm["forklift"])
	}
}

// Re-harvesting into a different category moves the tag; it never lives in
// two categories at once.
func TestHarvest_MovesBetweenCategories(t *testing.T) {
	s := newStore(t)

	if err := s.Harvest("CDL", "qualifications"); err != nil {
		t.Fatal(err)
	}
	if err := s.Harvest("CDL", "ignored"); err != nil {
		t.Fatal(err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatal(err)
	}
	if n := len(all["qualifications"]); n != 0 {
		t.Errorf("qualifications still has %d tags, want 0", n)
	}
	if n := len(all["ignored"]); n != 1 || all["ignored"][0] != "CDL" {
		t.Errorf("ignored = %v, want [CDL]", all["ignored"])
	}
}

func TestHarvest_UnknownCategory(t *testing.T) {
	s := newStore(t)
	if err := s.Harvest("forklift", "perks"); err == nil {
		t.Error("Harvest into unknown category expected error, got nil")
	}
}

func TestHarvest_PersistsAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categorized_tags.json")

	if err := tags.NewStore(path).Harvest("401k", "benefits"); err != nil {
		t.Fatal(err)
	}

	cm, err := tags.NewStore(path).CategoryMap()
	if err != nil {
		t.Fatal(err)
	}
	if cm["401k"] != "benefits" {
		t.Errorf("category of 401k after reload = %q, want benefits", cm["401k"])
	}
}

func TestAll_EveryCategoryPresent(t *testing.T) {
	all, err := newStore(t).All()
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range tags.Categories {
		if _, ok := all[c]; !ok {
			t.Errorf("category %s missing from empty vocabulary", c)
		}
	}
}
