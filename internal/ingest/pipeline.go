// Package ingest implements the batch migration pipeline: heterogeneous
// scraper output files in, deduplicated status-tagged job records out.
//
// The pipeline is built to be re-run freely. Identity resolution is
// deterministic, existing records are never updated, and every failure below
// the store itself degrades to skip-and-log: one bad file or posting must not
// lose progress on the rest of the run.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/m5trevino/trevino-war-room/internal/model"
	"github.com/m5trevino/trevino-war-room/internal/store"
	"github.com/m5trevino/trevino-war-room/internal/triage"
)

// Stats is the per-run summary returned to the caller, even on partial
// failure.
type Stats struct {
	Files       int `json:"files"`
	New         int `json:"new"`
	Skipped     int `json:"skipped"`
	Blacklisted int `json:"blacklisted"`
}

// Pipeline orchestrates one or more batch files into the record store.
// The cron sweep and the migrate endpoint share one Pipeline; overlapping
// Run calls serialize on mu so the same file is never processed twice
// concurrently.
type Pipeline struct {
	mu        sync.Mutex
	store     *store.Store
	blacklist *Blacklist
	ids       Resolver

	// now is swappable for tests.
	now func() time.Time
}

// NewPipeline constructs a Pipeline.
func NewPipeline(st *store.Store, blacklist *Blacklist) *Pipeline {
	return &Pipeline{store: st, blacklist: blacklist, now: time.Now}
}

// Run ingests the given batch files in order and returns the accumulated
// counters. The schema guardian runs once before any batch is touched.
//
// Run only errors when the store itself is unusable (the table cannot be
// created). Unreadable files, malformed postings, and failed inserts are
// logged, counted around, and skipped.
func (p *Pipeline) Run(ctx context.Context, files []string) (Stats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var stats Stats

	log.Printf("[ingest] Starting migration over %d file(s)", len(files))

	if err := p.store.EnsureSchema(ctx); err != nil {
		return stats, fmt.Errorf("ensure schema: %w", err)
	}

	for _, filename := range files {
		postings, err := readBatch(filename)
		if err != nil {
			log.Printf("[ingest] Error reading %s: %v — skipping file", filename, err)
			continue
		}
		stats.Files++

		for _, raw := range postings {
			p.processPosting(ctx, raw, &stats)
		}
	}

	log.Printf("[ingest] Done — files=%d new=%d skipped=%d blacklisted=%d",
		stats.Files, stats.New, stats.Skipped, stats.Blacklisted)
	return stats, nil
}

// processPosting handles a single raw posting: resolve identity, skip if
// present, classify, normalize, insert.
func (p *Pipeline) processPosting(ctx context.Context, raw json.RawMessage, stats *Stats) {
	var posting model.Posting
	if err := json.Unmarshal(raw, &posting); err != nil {
		log.Printf("[ingest] Malformed posting: %v — skipping record", err)
		return
	}

	id := p.ids.Resolve(&posting)

	exists, err := p.store.JobExists(ctx, id)
	if err != nil {
		log.Printf("[ingest] Existence check for %s: %v — skipping record", id, err)
		return
	}
	if exists {
		stats.Skipped++
		return
	}

	employer := posting.EmployerName()

	status := triage.StatusNew
	if term, hit := p.blacklist.Match(posting.Title, employer); hit {
		status = triage.StatusAutoDenied
		stats.Blacklisted++
		log.Printf("[ingest] Blacklisted %s (term %q)", id, term)
	}

	title := posting.Title
	if title == "" {
		title = "Unknown"
	}
	city, region := posting.CityRegion()
	annual, display := NormalizePay(posting.BaseSalary)

	rec := model.JobRecord{
		ID:            id,
		Title:         title,
		Company:       model.TitleCase(employer),
		City:          city,
		Region:        region,
		FreshnessDays: Freshness(posting.DatePublished, p.now()),
		AnnualPay:     annual,
		PayDisplay:    display,
		Score:         50,
		RawPayload:    string(raw),
		Status:        string(status),
	}

	if err := p.store.InsertJob(ctx, rec); err != nil {
		log.Printf("[ingest] Insert %s failed: %v — skipping record", id, err)
		return
	}
	if status == triage.StatusNew {
		stats.New++
	}
}

// readBatch loads one batch file and returns its postings. Supported
// top-level shapes: a bare array, {"jobs": [...]}, {"results": [...]}.
// An object with neither key is an empty batch, not an error.
func readBatch(filename string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return decodeBatch(data)
}

func decodeBatch(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	switch trimmed[0] {
	case '[':
		var postings []json.RawMessage
		if err := json.Unmarshal(trimmed, &postings); err != nil {
			return nil, fmt.Errorf("parse array batch: %w", err)
		}
		return postings, nil
	case '{':
		var wrapper struct {
			Jobs    []json.RawMessage `json:"jobs"`
			Results []json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("parse object batch: %w", err)
		}
		if wrapper.Jobs != nil {
			return wrapper.Jobs, nil
		}
		return wrapper.Results, nil
	default:
		// Valid JSON of an unrecognized shape is an empty batch, not an error.
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("invalid JSON")
		}
		return nil, nil
	}
}
