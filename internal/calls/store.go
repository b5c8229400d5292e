package calls

import (
	"sort"
	"sync"
)

// Store is the in-memory call record store: the single source of truth for
// every live and recently-finished call in the current session.
//
// The store only guards map integrity. Serializing mutations to one call is
// the orchestrator's job (single-writer-per-call); the store hands out one
// shared *Call per id and callers mutate it under that discipline.
type Store struct {
	mu    sync.RWMutex
	calls map[string]*Call
}

func NewStore() *Store {
	return &Store{calls: make(map[string]*Call)}
}

// Upsert registers a call under its vendor id. If a record already exists for
// the id, the existing record wins and is returned with created=false; this
// keeps one record per vendor id even when a webhook races the dial response.
func (s *Store) Upsert(c *Call) (call *Call, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.calls[c.CallID]; ok {
		return existing, false
	}
	s.calls[c.CallID] = c
	return c, true
}

// Get returns the call for a vendor id, or nil if unknown.
func (s *Store) Get(callID string) *Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[callID]
}

// ForCampaign returns all calls belonging to one campaign, ordered by dial time.
func (s *Store) ForCampaign(campaignID string) []*Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Call, 0, len(s.calls))
	for _, c := range s.calls {
		if c.CampaignID == campaignID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DialedAt.Before(out[j].DialedAt) })
	return out
}

// All returns every call in the store, ordered by dial time.
func (s *Store) All() []*Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Call, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DialedAt.Before(out[j].DialedAt) })
	return out
}

// Live returns calls that have not reached a terminal state.
func (s *Store) Live() []*Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Call, 0)
	for _, c := range s.calls {
		if !c.State.IsTerminal() {
			out = append(out, c)
		}
	}
	return out
}

// Reset drops all records. Used when a new campaign starts; terminated calls
// have already been flushed to the historical sink by then.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]*Call)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.calls)
}
