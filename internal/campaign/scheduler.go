package campaign

import (
	"context"
	"time"
)

// scheduler is the background loop that turns the pending-number queue into
// paced dial attempts.
//
// Sequential mode ticks on the pacing interval and dials at most one number
// per tick. Simultaneous mode ticks fast and refills up to the batch size.
// A kick from the orchestrator (pause released, call terminated) triggers an
// immediate pass without waiting for the next tick.
//
// Cancellation is cooperative: the current pass finishes, future ticks are
// skipped.
type scheduler struct {
	o      *Orchestrator
	mode   Mode
	pacing time.Duration
	cap    int
}

// refillInterval bounds how long a simultaneous campaign waits before
// re-checking for free slots when no kick arrives.
const refillInterval = 250 * time.Millisecond

func newScheduler(o *Orchestrator, mode Mode, pacing time.Duration, cap int) *scheduler {
	return &scheduler{o: o, mode: mode, pacing: pacing, cap: cap}
}

func (s *scheduler) run(ctx context.Context) {
	interval := s.pacing
	if s.mode == ModeSimultaneous {
		interval = refillInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First pass immediately; the first number should not wait a full tick.
	s.pass(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pass(ctx)
		case <-s.o.kick:
			s.pass(ctx)
		}
	}
}

func (s *scheduler) pass(ctx context.Context) {
	if s.mode == ModeSequential {
		s.o.dialNext(ctx)
		return
	}
	// Refill every free slot in one pass.
	for i := 0; i < s.cap; i++ {
		if ctx.Err() != nil || !s.o.dialNext(ctx) {
			return
		}
	}
}
