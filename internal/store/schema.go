package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// createJobs is the full current schema, applied to fresh databases.
const createJobs = `
CREATE TABLE IF NOT EXISTS jobs (
	id             TEXT PRIMARY KEY,
	title          TEXT,
	company        TEXT,
	city           TEXT,
	region         TEXT,
	freshness_days INTEGER,
	annual_pay     INTEGER,
	pay_display    TEXT,
	score          INTEGER,
	raw_payload    TEXT,
	status         TEXT
)`

// addableColumns are the columns EnsureSchema adds to databases created by
// older revisions. id is excluded: ALTER TABLE cannot add a primary key, and
// a jobs table without id never existed.
var addableColumns = []struct {
	name string
	ddl  string
}{
	{"title", "title TEXT"},
	{"company", "company TEXT"},
	{"city", "city TEXT"},
	{"region", "region TEXT"},
	{"freshness_days", "freshness_days INTEGER"},
	{"annual_pay", "annual_pay INTEGER"},
	{"pay_display", "pay_display TEXT"},
	{"score", "score INTEGER"},
	{"raw_payload", "raw_payload TEXT"},
	{"status", "status TEXT"},
}

// EnsureSchema brings the jobs table up to the current shape without touching
// existing data. Missing columns are added one by one; a failed ALTER is
// logged and skipped so ingestion can continue in degraded form. Rows
// predating the score/status columns are backfilled with the creation
// defaults (50, NEW); populated values are never overwritten.
//
// Safe to run on every startup and before every ingestion pass.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createJobs); err != nil {
		return fmt.Errorf("create jobs table: %w", err)
	}

	existing, err := s.tableColumns(ctx, "jobs")
	if err != nil {
		return fmt.Errorf("inspect jobs table: %w", err)
	}

	for _, col := range addableColumns {
		if existing[col.name] {
			continue
		}
		if _, err := s.db.ExecContext(ctx, "ALTER TABLE jobs ADD COLUMN "+col.ddl); err != nil {
			log.Printf("[store] add column %s failed: %v (continuing)", col.name, err)
		}
	}

	// Backfill defaults only where the value is missing.
	backfills := []string{
		`UPDATE jobs SET score = 50 WHERE score IS NULL`,
		`UPDATE jobs SET status = 'NEW' WHERE status IS NULL OR status = ''`,
	}
	for _, q := range backfills {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			log.Printf("[store] backfill failed: %v (continuing)", err)
		}
	}

	return nil
}

// tableColumns returns the set of column names currently on table.
func (s *Store) tableColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid, notnull, pk int
			name, ctype      string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
