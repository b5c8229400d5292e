package history

import (
	"context"
	"testing"
	"time"

	"github.com/edsindustries1/my-outbound-dialer/internal/calls"
)

func TestMemoryRepo_AppendRequiresCallID(t *testing.T) {
	repo := NewMemoryRepo()
	if err := repo.Append(context.Background(), Record{}); err == nil {
		t.Fatalf("expected error")
	}
	if err := repo.Append(context.Background(), Record{CallID: "c1"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestMemoryRepo_ListFiltersByCampaignAndRange(t *testing.T) {
	repo := NewMemoryRepo()
	base := time.Unix(1700000000, 0).UTC()

	recs := []Record{
		{CallID: "a", CampaignID: "camp-1", TerminatedAt: base},
		{CallID: "b", CampaignID: "camp-1", TerminatedAt: base.Add(time.Hour)},
		{CallID: "c", CampaignID: "camp-2", TerminatedAt: base},
	}
	for _, r := range recs {
		if err := repo.Append(context.Background(), r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.List(context.Background(), "camp-1", base, base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].CallID != "a" {
		t.Fatalf("expected only record a, got %d", len(got))
	}

	// Empty campaign id aggregates across campaigns.
	got, err = repo.List(context.Background(), "", base, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected all 3 records, got %d", len(got))
	}
}

func TestRecordFromCall(t *testing.T) {
	dialed := time.Unix(1700000000, 0).UTC()
	answered := dialed.Add(10 * time.Second)
	ended := answered.Add(60 * time.Second)

	c := &calls.Call{
		CallID:       "c1",
		CampaignID:   "camp-1",
		To:           "+15551230001",
		Role:         calls.RolePrimary,
		State:        calls.CallStateTerminated,
		AMDResult:    calls.AMDHuman,
		HangupCause:  "normal_clearing",
		Transcript:   "hello there",
		DialedAt:     dialed,
		AnsweredAt:   &answered,
		TerminatedAt: &ended,
	}

	r := RecordFromCall(c)
	if r.CallID != "c1" || r.CampaignID != "camp-1" || r.Destination != "+15551230001" {
		t.Fatalf("identity fields not carried: %+v", r)
	}
	if r.DurationSeconds != 60 {
		t.Fatalf("expected 60s duration, got %d", r.DurationSeconds)
	}
	if r.FinalState != "terminated" || r.AMDResult != "human" {
		t.Fatalf("outcome fields not carried: %+v", r)
	}
	if !r.TerminatedAt.Equal(ended) {
		t.Fatalf("expected terminated_at carried")
	}
}
