package domain

import (
	"errors"
	"testing"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ProcessingState
		wantErr bool
	}{
		{name: "lowercase", input: "pending", want: StatePending},
		{name: "uppercase", input: "COMPLETED", want: StateCompleted},
		{name: "mixed case", input: "In_Progress", want: StateInProgress},
		{name: "surrounding whitespace", input: "  failed  ", want: StateFailed},
		{name: "cancelled", input: "cancelled", want: StateCancelled},
		{name: "unknown value", input: "done", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseState(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got state %s", tc.input, got)
				}
				var invalid *InvalidStatusError
				if !errors.As(err, &invalid) {
					t.Errorf("expected *InvalidStatusError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseState(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestApplyTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    ProcessingState
		event   TransitionEvent
		want    ProcessingState
		wantErr bool
	}{
		{name: "start from pending", from: StatePending, event: EventStart, want: StateInProgress},
		{name: "complete from in_progress", from: StateInProgress, event: EventComplete, want: StateCompleted},
		{name: "fail from in_progress", from: StateInProgress, event: EventFail, want: StateFailed},
		{name: "fail from pending", from: StatePending, event: EventFail, want: StateFailed},
		{name: "cancel from pending", from: StatePending, event: EventCancel, want: StateCancelled},
		{name: "cancel from in_progress", from: StateInProgress, event: EventCancel, want: StateCancelled},
		// completion can only follow a start
		{name: "complete from pending", from: StatePending, event: EventComplete, wantErr: true},
		{name: "complete from failed", from: StateFailed, event: EventComplete, wantErr: true},
		{name: "start from completed", from: StateCompleted, event: EventStart, wantErr: true},
		{name: "start from in_progress", from: StateInProgress, event: EventStart, wantErr: true},
		{name: "fail from completed", from: StateCompleted, event: EventFail, wantErr: true},
		{name: "cancel from failed", from: StateFailed, event: EventCancel, wantErr: true},
		{name: "cancel from completed", from: StateCompleted, event: EventCancel, wantErr: true},
		{name: "cancel from cancelled", from: StateCancelled, event: EventCancel, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.from.Apply(tc.event)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error applying %s to %s, got %s", tc.event, tc.from, got)
				}
				var illegal *IllegalTransitionError
				if !errors.As(err, &illegal) {
					t.Fatalf("expected *IllegalTransitionError, got %T", err)
				}
				if illegal.From != tc.from || illegal.Event != tc.event {
					t.Errorf("error fields = (%s, %s), want (%s, %s)", illegal.From, illegal.Event, tc.from, tc.event)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("%s.Apply(%s) = %s, want %s", tc.from, tc.event, got, tc.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[ProcessingState]bool{
		StatePending:    false,
		StateInProgress: false,
		StateCompleted:  true,
		StateFailed:     true,
		StateCancelled:  true,
	}
	for state, want := range terminal {
		if got := state.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", state, got, want)
		}
	}
}
