package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m5trevino/trevino-war-room/internal/history"
	"github.com/m5trevino/trevino-war-room/internal/store"
)

// EventChannel is the redis pub/sub channel for review transitions.
const EventChannel = "EVENT_JOB_TRIAGED"

// Service applies review transitions against the record store. rdb may be
// nil, in which case event publishing is disabled.
type Service struct {
	store *store.Store
	rdb   *redis.Client
	hist  *history.Tracker
}

// NewService returns a configured Service.
func NewService(st *store.Store, rdb *redis.Client, hist *history.Tracker) *Service {
	return &Service{store: st, rdb: rdb, hist: hist}
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Approve moves a record to APPROVED.
func (s *Service) Approve(ctx context.Context, id string) error {
	if err := s.transition(ctx, id, StatusApproved); err != nil {
		return err
	}
	s.bump("approved")
	return nil
}

// Deny moves a record to DENIED.
func (s *Service) Deny(ctx context.Context, id string) error {
	if err := s.transition(ctx, id, StatusDenied); err != nil {
		return err
	}
	s.bump("denied")
	return nil
}

// Restore moves a record back to NEW from any non-terminal decided state.
func (s *Service) Restore(ctx context.Context, id string) error {
	return s.transition(ctx, id, StatusNew)
}

// MarkDelivered records that a resume artifact was produced for an approved
// posting. DELIVERED is terminal.
func (s *Service) MarkDelivered(ctx context.Context, id string) error {
	return s.transition(ctx, id, StatusDelivered)
}

// transition validates the state machine and writes the new status.
// Returns store.ErrNotFound for unknown ids and *ValidationError for
// forbidden transitions.
func (s *Service) transition(ctx context.Context, id string, to Status) error {
	currentStr, err := s.store.GetStatus(ctx, id)
	if err != nil {
		return err
	}

	current, err := ParseStatus(currentStr)
	if err != nil {
		// Unknown legacy value; treat as NEW so the record stays reviewable.
		current = StatusNew
	}

	if current == to {
		return nil
	}
	if !IsTransitionAllowed(current, to) {
		return &ValidationError{
			Msg: fmt.Sprintf("transition %s -> %s is not allowed", current, to),
		}
	}

	if err := s.store.SetStatus(ctx, id, string(to)); err != nil {
		return err
	}

	s.publish(ctx, id, current, to)
	return nil
}

// publish emits the transition event. Non-fatal: failures are logged only.
func (s *Service) publish(ctx context.Context, id string, from, to Status) {
	if s.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]string{
		"type":  EventChannel,
		"jobId": id,
		"from":  string(from),
		"to":    string(to),
		"at":    time.Now().UTC().Format(time.RFC3339),
	})
	if err := s.rdb.Publish(ctx, EventChannel, event).Err(); err != nil {
		slog.Warn("publish EVENT_JOB_TRIAGED failed", "jobId", id, "err", err)
	}
}

func (s *Service) bump(key string) {
	if s.hist == nil {
		return
	}
	if err := s.hist.Bump(key, 1); err != nil {
		slog.Warn("history bump failed", "key", key, "err", err)
	}
}
