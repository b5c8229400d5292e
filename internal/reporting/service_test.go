package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edsindustries1/my-outbound-dialer/internal/amd"
	"github.com/edsindustries1/my-outbound-dialer/internal/calls"
	"github.com/edsindustries1/my-outbound-dialer/internal/history"
)

func testRange() TimeRange {
	from := time.Unix(1700000000, 0).UTC()
	return TimeRange{From: from, To: from.Add(24 * time.Hour)}
}

func TestCampaignSummary_ValidatesRange(t *testing.T) {
	svc := NewService(history.NewMemoryRepo(), amd.DefaultPolicy())

	bad := []CampaignSummaryRequest{
		{},
		{Range: TimeRange{From: time.Unix(1700000000, 0)}},
		{Range: TimeRange{From: time.Unix(1700000000, 0), To: time.Unix(1700000000, 0)}}, // empty window
		{Range: TimeRange{From: time.Unix(1700003600, 0), To: time.Unix(1700000000, 0)}}, // inverted
	}
	for i, req := range bad {
		if _, err := svc.CampaignSummary(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("case %d: expected ErrInvalidRequest, got %v", i, err)
		}
	}
}

func TestCampaignSummary_Aggregates(t *testing.T) {
	repo := history.NewMemoryRepo()
	svc := NewService(repo, amd.DefaultPolicy())
	rng := testRange()
	at := rng.From.Add(time.Hour)
	answered := at.Add(-30 * time.Second)

	seed := []history.Record{
		{CallID: "p1", CampaignID: "camp-1", Role: "primary", AMDResult: "human", FinalState: "terminated", AnsweredAt: &answered, DurationSeconds: 30, Transcript: "hi", TerminatedAt: at},
		{CallID: "p2", CampaignID: "camp-1", Role: "primary", AMDResult: "machine", HangupCause: "voicemail_delivered", FinalState: "terminated", DurationSeconds: 20, TerminatedAt: at},
		{CallID: "p3", CampaignID: "camp-1", Role: "primary", AMDResult: "not_sure", HangupCause: "voicemail_delivered", FinalState: "terminated", DurationSeconds: 10, TerminatedAt: at},
		{CallID: "p4", CampaignID: "camp-1", Role: "primary", FinalState: "no_answer", TerminatedAt: at},
		{CallID: "p5", CampaignID: "camp-1", Role: "primary", FinalState: "failed", HangupCause: "user_busy", TerminatedAt: at},
		{CallID: "t1", CampaignID: "camp-1", Role: "transfer_leg", FinalState: "terminated", AnsweredAt: &answered, DurationSeconds: 40, TerminatedAt: at},
		{CallID: "x1", CampaignID: "camp-2", Role: "primary", AMDResult: "human", FinalState: "terminated", TerminatedAt: at},
	}
	for _, r := range seed {
		if err := repo.Append(context.Background(), r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := svc.CampaignSummary(context.Background(), CampaignSummaryRequest{CampaignID: "camp-1", Range: rng})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if got.TotalCalls != 6 || got.PrimaryCalls != 5 || got.TransferLegs != 1 {
		t.Fatalf("wrong counts: %+v", got)
	}
	if got.HumanAnswers != 1 {
		t.Fatalf("expected 1 human answer, got %d", got.HumanAnswers)
	}
	if got.MachineAnswers != 2 {
		t.Fatalf("expected not_sure folded into machine, got %d", got.MachineAnswers)
	}
	if got.NoAnswer != 1 || got.Failed != 1 {
		t.Fatalf("wrong no_answer/failed: %+v", got)
	}
	if got.VoicemailsDelivered != 2 {
		t.Fatalf("expected 2 voicemails, got %d", got.VoicemailsDelivered)
	}
	if got.TransfersConnected != 1 {
		t.Fatalf("expected 1 connected transfer, got %d", got.TransfersConnected)
	}
	if got.Transcribed != 1 {
		t.Fatalf("expected 1 transcribed, got %d", got.Transcribed)
	}
	if got.TotalDurationSeconds != 100 || got.AverageDurationSeconds != 16 {
		t.Fatalf("wrong durations: total=%d avg=%d", got.TotalDurationSeconds, got.AverageDurationSeconds)
	}
	if got.HumanRate != 0.2 {
		t.Fatalf("expected human rate 0.2, got %f", got.HumanRate)
	}
	if got.DeliveryRate != 0.4 {
		t.Fatalf("expected delivery rate 0.4, got %f", got.DeliveryRate)
	}
}

func TestCampaignSummary_HonorsAMDPolicy(t *testing.T) {
	repo := history.NewMemoryRepo()
	// Folds disabled: not_sure and timeout verdicts end in a hangup, so the
	// summary must not count them as machine answers.
	strict := amd.Policy{FallbackResult: calls.AMDHuman}
	svc := NewService(repo, strict)
	rng := testRange()
	at := rng.From.Add(time.Hour)

	seed := []history.Record{
		{CallID: "p1", CampaignID: "camp-1", Role: "primary", AMDResult: "machine", HangupCause: "voicemail_delivered", FinalState: "terminated", TerminatedAt: at},
		{CallID: "p2", CampaignID: "camp-1", Role: "primary", AMDResult: "not_sure", FinalState: "terminated", TerminatedAt: at},
		{CallID: "p3", CampaignID: "camp-1", Role: "primary", AMDResult: "timeout", FinalState: "terminated", TerminatedAt: at},
	}
	for _, r := range seed {
		if err := repo.Append(context.Background(), r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := svc.CampaignSummary(context.Background(), CampaignSummaryRequest{CampaignID: "camp-1", Range: rng})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.MachineAnswers != 1 {
		t.Fatalf("expected only the machine verdict counted, got %d", got.MachineAnswers)
	}
	if got.NoAnswer != 2 {
		t.Fatalf("expected hung-up verdicts in no_answer, got %d", got.NoAnswer)
	}
}

func TestCampaignSummary_EmptyWindow(t *testing.T) {
	svc := NewService(history.NewMemoryRepo(), amd.DefaultPolicy())
	got, err := svc.CampaignSummary(context.Background(), CampaignSummaryRequest{CampaignID: "camp-1", Range: testRange()})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.TotalCalls != 0 || got.HumanRate != 0 {
		t.Fatalf("expected zeroed summary, got %+v", got)
	}
}
