// Package triage defines the review lifecycle for scraped job postings.
//
// Valid status graph:
//
//	NEW ──► APPROVED ──► DELIVERED
//	 │          │
//	 └──► DENIED│
//	            ▼
//	AUTO_DENIED, DENIED, APPROVED ──► NEW (restore)
//
// DELIVERED is terminal. Ingestion only ever creates records at NEW or
// AUTO_DENIED; everything after that is an explicit human action.
package triage

import "fmt"

// Status values mirror the status column of the jobs table. A NULL or empty
// column value is treated as NEW.
type Status string

const (
	StatusNew        Status = "NEW"
	StatusAutoDenied Status = "AUTO_DENIED"
	StatusApproved   Status = "APPROVED"
	StatusDenied     Status = "DENIED"
	StatusDelivered  Status = "DELIVERED"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusNew:        {StatusApproved, StatusDenied},
	StatusApproved:   {StatusDelivered, StatusNew},
	StatusDenied:     {StatusNew},
	StatusAutoDenied: {StatusNew},
	// DELIVERED is terminal — no outgoing transitions
}

// ParseStatus converts a raw column value to a Status. Empty input maps to
// NEW (legacy rows predating the status column); unknown values are errors.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusNew, nil
	}
	st := Status(s)
	switch st {
	case StatusNew, StatusAutoDenied, StatusApproved, StatusDenied, StatusDelivered:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state — no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true for statuses with no outgoing transitions.
func IsTerminal(s Status) bool {
	_, ok := validTransitions[s]
	return !ok
}
