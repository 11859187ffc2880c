// Package pool defines the job-pool and application records and their
// status state machines.
//
// Valid pool status graph:
//
//	ACTIVE ◄──► PAUSED
//	   │           │
//	   ├──► COMPLETED (selection + payout, ACTIVE only)
//	   ├──► EXPIRED   (deadline sweep, ACTIVE only)
//	   └───┴──► CANCELLED (company close)
//
// COMPLETED, CANCELLED and EXPIRED are terminal.
package pool

import "fmt"

// Status values mirror the pool_status enum in PostgreSQL.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusPaused    Status = "PAUSED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusActive: {StatusPaused, StatusCompleted, StatusCancelled, StatusExpired},
	StatusPaused: {StatusActive, StatusCancelled},
	// COMPLETED, CANCELLED and EXPIRED are terminal — no outgoing transitions
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusActive, StatusPaused, StatusCompleted, StatusCancelled, StatusExpired:
		return st, nil
	}
	return "", fmt.Errorf("unknown pool status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by
// the state machine.
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

// IsTerminal returns true when no further pool transitions are allowed.
func (s Status) IsTerminal() bool {
	_, ok := validTransitions[s]
	return !ok
}

// ApplicationStatus values mirror the application_status enum in PostgreSQL.
// PENDING is the only non-terminal application state.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "PENDING"
	ApplicationAccepted  ApplicationStatus = "ACCEPTED"
	ApplicationRejected  ApplicationStatus = "REJECTED"
	ApplicationWithdrawn ApplicationStatus = "WITHDRAWN"
)

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected, ApplicationWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

func (s ApplicationStatus) IsTerminal() bool {
	return s != ApplicationPending
}
