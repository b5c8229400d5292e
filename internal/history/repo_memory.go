package history

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryRepo is an in-memory historical sink for tests and early development.
type MemoryRepo struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, rec Record) error {
	if rec.CallID == "" {
		return errors.New("history: call_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, campaignID string, from, to time.Time) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0)
	for _, rec := range r.records {
		if campaignID != "" && rec.CampaignID != campaignID {
			continue
		}
		if !from.IsZero() && rec.TerminatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !rec.TerminatedAt.Before(to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Records returns a copy of everything appended so far.
func (r *MemoryRepo) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}
