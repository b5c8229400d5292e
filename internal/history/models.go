package history

import (
	"context"
	"time"

	"github.com/edsindustries1/my-outbound-dialer/internal/calls"
)

// Record is the immutable historical entry written once per finished call.
//
// Invariants:
// - Records are never updated or deleted.
// - Exactly one record per terminal call.
//
// Storage recommendation (Postgres):
// - Table call_history with an INSERT-only policy.
// - Optional: partition by terminated_at for retention.

type Record struct {
	CallID     string `json:"call_id" db:"call_id"`
	CampaignID string `json:"campaign_id,omitempty" db:"campaign_id"`

	Destination string `json:"destination" db:"destination"`
	Role        string `json:"role" db:"role"`

	AMDResult   string `json:"amd_result,omitempty" db:"amd_result"`
	HangupCause string `json:"hangup_cause,omitempty" db:"hangup_cause"`
	FinalState  string `json:"final_state" db:"final_state"`

	DurationSeconds int `json:"duration_seconds" db:"duration_seconds"`

	Transcript string `json:"transcript,omitempty" db:"transcript"`

	DialedAt     time.Time  `json:"dialed_at" db:"dialed_at"`
	AnsweredAt   *time.Time `json:"answered_at,omitempty" db:"answered_at"`
	TerminatedAt time.Time  `json:"terminated_at" db:"terminated_at"`
}

// RecordFromCall builds the terminal record for a finished call.
func RecordFromCall(c *calls.Call) Record {
	r := Record{
		CallID:          c.CallID,
		CampaignID:      c.CampaignID,
		Destination:     c.To,
		Role:            string(c.Role),
		AMDResult:       string(c.AMDResult),
		HangupCause:     c.HangupCause,
		FinalState:      string(c.State),
		DurationSeconds: c.DurationSeconds(),
		Transcript:      c.Transcript,
		DialedAt:        c.DialedAt,
		AnsweredAt:      c.AnsweredAt,
	}
	if c.TerminatedAt != nil {
		r.TerminatedAt = *c.TerminatedAt
	}
	return r
}

// Repository is the persistence contract for the historical sink.
//
// It MUST be append-only. There are no Update/Delete methods.
type Repository interface {
	Append(ctx context.Context, r Record) error
	List(ctx context.Context, campaignID string, from, to time.Time) ([]Record, error)
}
