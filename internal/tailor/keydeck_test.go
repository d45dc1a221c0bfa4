package tailor_test

import (
	"testing"

	"github.com/m5trevino/trevino-war-room/internal/tailor"
)

func TestKeyDeck_DealsEveryKeyBeforeRepeating(t *testing.T) {
	deck := tailor.NewKeyDeck("k1,k2,k3,k4", "")

	seen := make(map[string]bool)
	for i := 0; i < 4; i++ {
		seen[deck.Next()] = true
	}
	for _, k := range []string{"k1", "k2", "k3", "k4"} {
		if !seen[k] {
			t.Errorf("key %s not dealt within one pass of the bag", k)
		}
	}
}

func TestKeyDeck_ReshufflesOnExhaustion(t *testing.T) {
	deck := tailor.NewKeyDeck("k1,k2,k3", "")

	// Two full passes: the second must again contain every key.
	for pass := 0; pass < 2; pass++ {
		seen := make(map[string]bool)
		for i := 0; i < 3; i++ {
			seen[deck.Next()] = true
		}
		if len(seen) != 3 {
			t.Errorf("pass %d dealt %d distinct keys, want 3", pass+1, len(seen))
		}
	}
}

func TestKeyDeck_LabelledEntries(t *testing.T) {
	deck := tailor.NewKeyDeck("groq1:gsk_aaa, groq2:gsk_bbb", "")

	if deck.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", deck.Size())
	}
	for i := 0; i < 2; i++ {
		k := deck.Next()
		if k != "gsk_aaa" && k != "gsk_bbb" {
			t.Errorf("Next() = %q, want a bare key with the label stripped", k)
		}
	}
}

func TestKeyDeck_EmptyDealsFallback(t *testing.T) {
	deck := tailor.NewKeyDeck("", "solo-key")

	if deck.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", deck.Size())
	}
	for i := 0; i < 3; i++ {
		if got := deck.Next(); got != "solo-key" {
			t.Errorf("Next() = %q, want fallback", got)
		}
	}
}

func TestKeyDeck_BlankEntriesIgnored(t *testing.T) {
	deck := tailor.NewKeyDeck(" , k1, ,", "")
	if deck.Size() != 1 {
		t.Errorf("Size() = %d, want 1", deck.Size())
	}
	if got := deck.Next(); got != "k1" {
		t.Errorf("Next() = %q, want k1", got)
	}
}
