// Package run defines the match run record and its status state machine.
//
// Valid status graph:
//
//	PENDING ──► RUNNING ──► COMPLETED
//	                 │
//	                 └─────► FAILED
//
// COMPLETED and FAILED are terminal states. Transitions are monotonic: a run
// can never move back to an earlier status, so a run that entered RUNNING
// always ends up in exactly one terminal state.
package run

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeShortTerm    Type = "SHORT_TERM"
	TypeWeeklyDigest Type = "WEEKLY_DIGEST"
)

// ParseType converts a raw string to a Type, rejecting unknown values.
func ParseType(s string) (Type, error) {
	t := Type(s)
	switch t {
	case TypeShortTerm, TypeWeeklyDigest:
		return t, nil
	}
	return "", fmt.Errorf("unknown match run type %q", s)
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusRunning, StatusFailed},
	StatusRunning: {StatusCompleted, StatusFailed},
	// COMPLETED and FAILED are terminal, with no outgoing transitions
}

// ParseStatus converts a raw string to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown match run status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state, no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true for COMPLETED and FAILED.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusFailed
}

// MatchRun is one execution of the matching engine. Created when a short-term
// job is published (SHORT_TERM, tied to that job) or when the digest
// scheduler fires (WEEKLY_DIGEST, tied to no single job).
type MatchRun struct {
	ID     uuid.UUID
	Type   Type
	Status Status

	// Set for SHORT_TERM runs only.
	JobID *uuid.UUID

	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time

	// Failure message, "" unless Status is FAILED.
	Error string

	ResultCount int
}

// MatchRunResult is the persisted form of one search result, tied to the run
// and job that produced it.
type MatchRunResult struct {
	RunID       uuid.UUID
	PhysicianID uuid.UUID
	JobID       uuid.UUID
	Score       float64
	Breakdown   map[string]float64
	ComputedAt  time.Time
}
