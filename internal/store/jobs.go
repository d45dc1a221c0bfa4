package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/m5trevino/trevino-war-room/internal/model"
)

// ErrNotFound is returned when a job id does not exist in the store.
var ErrNotFound = errors.New("job not found")

// selectCols coalesces every non-key column so rows written by older schema
// revisions (NULL in freshly added columns) still scan cleanly.
const selectCols = `
	id,
	COALESCE(title, '')          AS title,
	COALESCE(company, '')        AS company,
	COALESCE(city, '')           AS city,
	COALESCE(region, '')         AS region,
	COALESCE(freshness_days, 0)  AS freshness_days,
	COALESCE(annual_pay, 0)      AS annual_pay,
	COALESCE(pay_display, '-')   AS pay_display,
	COALESCE(score, 50)          AS score,
	COALESCE(status, '')         AS status`

// JobExists reports whether a record with the given id is already present.
func (s *Store) JobExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM jobs WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists check: %w", err)
	}
	return true, nil
}

// InsertJob creates a new record. It is the only write path used by
// ingestion; existing rows are never updated through it, so a concurrent
// reviewer's status decisions can never be clobbered.
func (s *Store) InsertJob(ctx context.Context, rec model.JobRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs
		   (id, title, company, city, region, freshness_days, annual_pay,
		    pay_display, score, raw_payload, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Title, rec.Company, rec.City, rec.Region,
		rec.FreshnessDays, rec.AnnualPay, rec.PayDisplay,
		rec.Score, rec.RawPayload, rec.Status,
	)
	if err != nil {
		return fmt.Errorf("insert job %s: %w", rec.ID, err)
	}
	return nil
}

// ListJobs returns the review queue for a status filter, ordered by score
// descending then freshness ascending (freshest first among equals).
//
// Filter mapping:
//
//	NEW       → status NULL/empty/'NEW'
//	APPROVED  → 'APPROVED'
//	DENIED    → 'DENIED' or 'AUTO_DENIED'
//	DELIVERED → 'DELIVERED'
//	anything else → all rows
func (s *Store) ListJobs(ctx context.Context, filter string) ([]model.JobRecord, error) {
	query := `SELECT ` + selectCols + ` FROM jobs WHERE 1=1`

	switch filter {
	case "NEW":
		query += ` AND (status IS NULL OR status = '' OR status = 'NEW')`
	case "APPROVED":
		query += ` AND status = 'APPROVED'`
	case "DENIED":
		query += ` AND (status = 'DENIED' OR status = 'AUTO_DENIED')`
	case "DELIVERED":
		query += ` AND status = 'DELIVERED'`
	}

	query += ` ORDER BY score DESC, freshness_days ASC`

	var recs []model.JobRecord
	if err := s.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return recs, nil
}

// GetJob returns a single record, including its raw payload.
func (s *Store) GetJob(ctx context.Context, id string) (*model.JobRecord, error) {
	var rec model.JobRecord
	err := s.db.GetContext(ctx, &rec,
		`SELECT `+selectCols+`, COALESCE(raw_payload, '') AS raw_payload
		 FROM jobs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return &rec, nil
}

// GetStatus returns the current status of a record, empty string for legacy
// rows without one.
func (s *Store) GetStatus(ctx context.Context, id string) (string, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(status, '') FROM jobs WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get status %s: %w", id, err)
	}
	return status, nil
}

// SetStatus overwrites the status of an existing record.
func (s *Store) SetStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set status %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetScore overwrites the review score of an existing record.
func (s *Store) SetScore(ctx context.Context, id string, score int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET score = ? WHERE id = ?`, score, id)
	if err != nil {
		return fmt.Errorf("set score %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AutoDenyMatching retro-denies every record whose title or company contains
// term (case-insensitive), sparing rows a human already approved or that were
// already delivered. Returns the number of rows denied.
func (s *Store) AutoDenyMatching(ctx context.Context, term string) (int64, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = 'AUTO_DENIED'
		 WHERE (lower(title) LIKE ? OR lower(company) LIKE ?)
		   AND COALESCE(status, '') NOT IN ('APPROVED', 'DELIVERED')`,
		pattern, pattern,
	)
	if err != nil {
		return 0, fmt.Errorf("auto-deny %q: %w", term, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
