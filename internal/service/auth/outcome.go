package auth

import (
	"time"

	"github.com/oshokin/teams-token-grabber/internal/token"
)

// State is a state of the acquisition controller.
type State uint8

// Controller states.
const (
	StateLaunching State = iota
	StatePolling
	StateRecovering
	StateSucceeded
	StateTimedOut
	StateSessionExpiredHeadless
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateLaunching:
		return "launching"
	case StatePolling:
		return "polling"
	case StateRecovering:
		return "recovering"
	case StateSucceeded:
		return "succeeded"
	case StateTimedOut:
		return "timed_out"
	case StateSessionExpiredHeadless:
		return "session_expired_headless"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run ends in s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateTimedOut || s == StateSessionExpiredHeadless
}

// Status is the terminal status of a run.
type Status uint8

// Run statuses.
const (
	// StatusSucceeded means every resource scope has a token.
	StatusSucceeded Status = iota + 1
	// StatusTimedOut means the deadline passed or the run was interrupted.
	StatusTimedOut
	// StatusSessionExpiredHeadless means a headless run needs an interactive sign-in.
	StatusSessionExpiredHeadless
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusTimedOut:
		return "timed_out"
	case StatusSessionExpiredHeadless:
		return "session_expired_headless"
	default:
		return "unknown"
	}
}

// statusOf maps a terminal state to its status.
func statusOf(state State) Status {
	switch state {
	case StateSucceeded:
		return StatusSucceeded
	case StateSessionExpiredHeadless:
		return StatusSessionExpiredHeadless
	default:
		return StatusTimedOut
	}
}

// Outcome is the result of one acquisition run.
type Outcome struct {
	// Status is the terminal status.
	Status Status
	// Tokens holds every captured token. It is complete only on success.
	Tokens token.Set
	// ExpiresIn is the time left before the earliest known expiry among Tokens, zero if unknown.
	ExpiresIn time.Duration
	// Interrupted is set when the run was cancelled before its deadline.
	Interrupted bool
	// Ticks is the number of polling ticks the run consumed.
	Ticks int
	// Recovered is set when staleness recovery fired.
	Recovered bool
}

// Succeeded reports whether the run produced a complete token set.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSucceeded
}
