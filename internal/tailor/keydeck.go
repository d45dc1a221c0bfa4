// Package tailor implements resume generation for approved postings: an
// API-key rotation deck plus a client for an OpenAI-compatible
// chat-completions endpoint.
package tailor

import (
	"math/rand"
	"strings"
	"sync"
)

// KeyDeck rotates through a set of API keys: a shuffle bag with a cursor.
// Every key is dealt once, in shuffled order, before any key repeats; on
// exhaustion the bag is reshuffled. An empty deck always deals the fallback
// key (possibly empty).
//
// The deck is an explicit value owned by whoever needs rotation — it is not
// package state. Safe for concurrent use.
type KeyDeck struct {
	mu       sync.Mutex
	keys     []string
	cursor   int
	fallback string
}

// NewKeyDeck builds a deck from a comma-separated key list. Entries may be
// bare keys or "label:key" pairs (the label is dropped). Blank entries are
// ignored. The initial order is shuffled.
func NewKeyDeck(raw, fallback string) *KeyDeck {
	d := &KeyDeck{fallback: fallback}
	for _, item := range strings.Split(raw, ",") {
		if i := strings.Index(item, ":"); i >= 0 {
			item = item[i+1:]
		}
		item = strings.TrimSpace(item)
		if item != "" {
			d.keys = append(d.keys, item)
		}
	}
	d.shuffle()
	return d
}

// Next deals the next key.
func (d *KeyDeck) Next() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.keys) == 0 {
		return d.fallback
	}
	if d.cursor >= len(d.keys) {
		d.shuffle()
		d.cursor = 0
	}
	key := d.keys[d.cursor]
	d.cursor++
	return key
}

// Size returns the number of keys in the bag, excluding the fallback.
func (d *KeyDeck) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.keys)
}

func (d *KeyDeck) shuffle() {
	rand.Shuffle(len(d.keys), func(i, j int) {
		d.keys[i], d.keys[j] = d.keys[j], d.keys[i]
	})
}
