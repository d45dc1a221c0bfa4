// Package scheduler wires up the cron job that periodically sweeps the
// scrape directory through the ingestion pipeline.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/m5trevino/trevino-war-room/internal/ingest"
)

// Scheduler wraps robfig/cron and manages the periodic ingest sweep.
// Re-ingesting already-imported files is safe: identity resolution makes the
// sweep idempotent, so no file bookkeeping is needed.
type Scheduler struct {
	cron     *cron.Cron
	pipeline *ingest.Pipeline
	dir      string
	spec     string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that sweeps dir every intervalHours hours.
func New(pipeline *ingest.Pipeline, dir string, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cron.DefaultLogger)),
		pipeline: pipeline,
		dir:      dir,
		spec:     fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so a fresh database is populated without waiting for the
// first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	go s.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runSweep ingests every JSON file currently in the scrape directory.
func (s *Scheduler) runSweep(ctx context.Context) {
	files, err := ListScrapes(s.dir)
	if err != nil {
		log.Printf("[scheduler] List scrapes error: %v", err)
		return
	}
	if len(files) == 0 {
		log.Println("[scheduler] No scrape files — nothing to ingest")
		return
	}

	stats, err := s.pipeline.Run(ctx, files)
	if err != nil {
		log.Printf("[scheduler] Sweep error: %v", err)
		return
	}
	log.Printf("[scheduler] Sweep complete — files=%d new=%d skipped=%d blacklisted=%d",
		stats.Files, stats.New, stats.Skipped, stats.Blacklisted)
}

// ListScrapes returns the sorted paths of all .json files in dir. A missing
// directory is an empty listing, not an error.
func ListScrapes(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read scrape dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
