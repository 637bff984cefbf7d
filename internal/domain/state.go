package domain

import (
	"fmt"
	"strings"
)

// ProcessingState represents the lifecycle state of an ingestion job.
// Values include StatePending, StateInProgress, StateCompleted,
// StateFailed, and StateCancelled.
type ProcessingState string

const (
	StatePending    ProcessingState = "pending"
	StateInProgress ProcessingState = "in_progress"
	StateCompleted  ProcessingState = "completed"
	StateFailed     ProcessingState = "failed"
	StateCancelled  ProcessingState = "cancelled"
)

// TransitionEvent names a requested state transition.
type TransitionEvent string

const (
	EventStart    TransitionEvent = "start"
	EventComplete TransitionEvent = "complete"
	EventFail     TransitionEvent = "fail"
	EventCancel   TransitionEvent = "cancel"
)

// InvalidStatusError reports a status string that did not normalize to a
// known ProcessingState.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q", e.Value)
}

// IllegalTransitionError reports a transition that is not legal from the
// job's current state. It indicates a caller defect, not an operational
// condition.
type IllegalTransitionError struct {
	From  ProcessingState
	Event TransitionEvent
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: cannot apply %q from state %q", e.Event, e.From)
}

// ParseState normalizes a status string (case-insensitive, surrounding
// whitespace ignored) into a ProcessingState.
// Parameters:
//   - s: raw status string.
// Returns:
//   - ProcessingState: normalized state.
//   - error: *InvalidStatusError naming the rejected value.
func ParseState(s string) (ProcessingState, error) {
	switch ProcessingState(strings.ToLower(strings.TrimSpace(s))) {
	case StatePending:
		return StatePending, nil
	case StateInProgress:
		return StateInProgress, nil
	case StateCompleted:
		return StateCompleted, nil
	case StateFailed:
		return StateFailed, nil
	case StateCancelled:
		return StateCancelled, nil
	default:
		return "", &InvalidStatusError{Value: s}
	}
}

// IsTerminal reports whether the state ends the job lifecycle.
func (s ProcessingState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	}
	return false
}

// CanStart reports whether the job may move to in_progress.
func (s ProcessingState) CanStart() bool {
	return s == StatePending
}

// CanComplete reports whether completion is legal. Completion is only
// legal from in_progress.
func (s ProcessingState) CanComplete() bool {
	return s == StateInProgress
}

// CanFail reports whether failure is legal. Failure is legal from
// pending or in_progress.
func (s ProcessingState) CanFail() bool {
	return s == StatePending || s == StateInProgress
}

// CanCancel reports whether cancellation is legal. Cancellation is legal
// from any non-terminal state.
func (s ProcessingState) CanCancel() bool {
	return !s.IsTerminal()
}

// Apply resolves a transition event against the current state.
// Parameters:
//   - ev: requested transition event.
// Returns:
//   - ProcessingState: the resulting state.
//   - error: *IllegalTransitionError if the guard rejects the event.
func (s ProcessingState) Apply(ev TransitionEvent) (ProcessingState, error) {
	switch ev {
	case EventStart:
		if s.CanStart() {
			return StateInProgress, nil
		}
	case EventComplete:
		if s.CanComplete() {
			return StateCompleted, nil
		}
	case EventFail:
		if s.CanFail() {
			return StateFailed, nil
		}
	case EventCancel:
		if s.CanCancel() {
			return StateCancelled, nil
		}
	}
	return "", &IllegalTransitionError{From: s, Event: ev}
}
