package campaign

import (
	"context"
	"testing"
	"time"
)

// End-to-end runs through Start, with the real scheduler loop driving dials
// and webhook-style events driving terminations.

func TestScheduler_SequentialRunToCompletion(t *testing.T) {
	gw := &fakeGateway{}
	o, store, hist := newTestOrchestrator(gw)

	req := seqRequest("+1A", "+1B")
	req.Pacing = 2 * time.Millisecond
	if _, err := o.Start(context.Background(), req); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer o.Teardown(context.Background())

	waitFor(t, "first dial", func() bool { return store.Get("call-1") != nil })
	hangup(o, "call-1", "user_busy")

	waitFor(t, "second dial", func() bool { return store.Get("call-2") != nil })
	hangup(o, "call-2", "normal_clearing")

	waitFor(t, "campaign completed", func() bool { return o.Snapshot().Status == StatusCompleted })

	if got := gw.dialedNumbers(); len(got) != 2 || got[0] != "+1A" || got[1] != "+1B" {
		t.Fatalf("expected [A B] in order, got %v", got)
	}
	if got := len(hist.Records()); got != 2 {
		t.Fatalf("expected 2 history records, got %d", got)
	}
}

func TestScheduler_SimultaneousKeepsBatchFull(t *testing.T) {
	gw := &fakeGateway{}
	o, store, _ := newTestOrchestrator(gw)

	if _, err := o.Start(context.Background(), simRequest(2, "+1A", "+1B", "+1C")); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer o.Teardown(context.Background())

	waitFor(t, "initial batch", func() bool { return len(gw.dialedNumbers()) == 2 })
	if got := o.Snapshot().InFlight; got != 2 {
		t.Fatalf("expected 2 in flight, got %d", got)
	}

	// Terminating one call kicks the scheduler to refill without waiting for
	// the next tick.
	hangup(o, "call-1", "no_answer")
	waitFor(t, "refill dial", func() bool { return store.Get("call-3") != nil })

	hangup(o, "call-2", "no_answer")
	hangup(o, "call-3", "no_answer")
	waitFor(t, "campaign completed", func() bool { return o.Snapshot().Status == StatusCompleted })
}

func TestScheduler_StopHaltsDialing(t *testing.T) {
	gw := &fakeGateway{}
	o, store, _ := newTestOrchestrator(gw)

	req := seqRequest("+1A", "+1B", "+1C")
	req.Pacing = 2 * time.Millisecond
	id, err := o.Start(context.Background(), req)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	waitFor(t, "first dial", func() bool { return store.Get("call-1") != nil })
	if err := o.Stop(context.Background(), id); err != nil {
		t.Fatalf("stop: %v", err)
	}
	hangup(o, "call-1", "normal_clearing")

	time.Sleep(20 * time.Millisecond)
	if got := len(gw.dialedNumbers()); got != 1 {
		t.Fatalf("no dials may follow a stop, got %d", got)
	}
	if got := o.Snapshot().Status; got != StatusStopped {
		t.Fatalf("expected stopped, got %s", got)
	}
}
