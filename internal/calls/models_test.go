package calls

import (
	"testing"
	"time"
)

func TestCallState_IsTerminal(t *testing.T) {
	terminal := []CallState{CallStateNoAnswer, CallStateFailed, CallStateTerminated}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	open := []CallState{
		CallStateQueued, CallStateDialing, CallStateRinging, CallStateAnswered,
		CallStateAnsweredHuman, CallStateAnsweredMachine,
		CallStateTransferring, CallStateTransferConnected,
	}
	for _, s := range open {
		if s.IsTerminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

func TestDurationSeconds(t *testing.T) {
	answered := time.Unix(1700000000, 0)
	ended := answered.Add(95 * time.Second)

	c := &Call{AnsweredAt: &answered, TerminatedAt: &ended}
	if got := c.DurationSeconds(); got != 95 {
		t.Fatalf("expected 95, got %d", got)
	}

	// Never answered: no talk time regardless of termination.
	c = &Call{TerminatedAt: &ended}
	if got := c.DurationSeconds(); got != 0 {
		t.Fatalf("expected 0 for unanswered, got %d", got)
	}

	// Clock skew must not produce a negative duration.
	before := answered.Add(-time.Second)
	c = &Call{AnsweredAt: &answered, TerminatedAt: &before}
	if got := c.DurationSeconds(); got != 0 {
		t.Fatalf("expected 0 for skewed clocks, got %d", got)
	}
}
