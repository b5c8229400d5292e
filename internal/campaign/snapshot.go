package campaign

import (
	"time"

	"github.com/edsindustries1/my-outbound-dialer/internal/calls"
)

// Snapshot is the read-only view polled by the dashboard. It never exposes
// internal orchestrator state directly.

type Snapshot struct {
	CampaignID  string `json:"campaign_id,omitempty"`
	Status      Status `json:"status"`
	Mode        Mode   `json:"mode,omitempty"`
	Total       int    `json:"total"`
	DialedCount int    `json:"dialed_count"`
	QueueDepth  int    `json:"queue_depth"`
	InFlight    int    `json:"in_flight"`

	// PausedForTransfers is the number of transfer legs currently holding
	// the campaign paused.
	PausedForTransfers int `json:"paused_for_transfers"`

	Calls []CallView `json:"calls"`
}

// CallView is the per-call display row.
type CallView struct {
	CallID      string `json:"call_id"`
	To          string `json:"to"`
	From        string `json:"from"`
	Role        string `json:"role"`
	State       string `json:"state"`
	AMDResult   string `json:"amd_result,omitempty"`
	HangupCause string `json:"hangup_cause,omitempty"`

	// RingSeconds is elapsed time since dial, frozen at termination.
	RingSeconds int `json:"ring_seconds"`
}

// Snapshot returns the current campaign status, queue depth, and every call
// tracked this session.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	camp := o.campaign
	queueDepth := len(o.queue)
	inFlight := len(o.inFlight)
	tokens := len(o.pauseTokens)
	o.mu.Unlock()

	snap := Snapshot{Status: StatusIdle}
	if camp != nil {
		snap.CampaignID = camp.ID
		snap.Status = camp.Status
		snap.Mode = camp.Mode
		snap.Total = camp.Total
		snap.DialedCount = camp.DialedCount
		snap.QueueDepth = queueDepth
		snap.InFlight = inFlight
		snap.PausedForTransfers = tokens
	}

	now := o.clock().UTC()
	for _, c := range o.store.All() {
		// Event handlers mutate call records under the per-call lock; read
		// under the same lock so a half-applied transition is never shown.
		l := o.lockForCall(c.CallID)
		l.Lock()
		v := callView(c, now)
		l.Unlock()
		snap.Calls = append(snap.Calls, v)
	}
	return snap
}

func callView(c *calls.Call, now time.Time) CallView {
	v := CallView{
		CallID:      c.CallID,
		To:          c.To,
		From:        c.From,
		Role:        string(c.Role),
		State:       string(c.State),
		AMDResult:   string(c.AMDResult),
		HangupCause: c.HangupCause,
	}
	if !c.DialedAt.IsZero() {
		end := now
		if c.TerminatedAt != nil {
			end = *c.TerminatedAt
		}
		if d := end.Sub(c.DialedAt); d > 0 {
			v.RingSeconds = int(d / time.Second)
		}
	}
	return v
}
