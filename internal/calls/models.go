package calls

import "time"

// Call represents one outbound call leg tracked by the orchestrator.
//
// The vendor-assigned call id is the primary key: a given vendor id maps to
// exactly one Call record for the lifetime of the process.
//
// NOTE: This is a domain model only. Vendor payloads never leak past the
// telephony adapters; everything here is provider-agnostic.

type Call struct {
	CallID     string `json:"call_id"`
	CampaignID string `json:"campaign_id,omitempty"`

	From string `json:"from"`
	To   string `json:"to"`

	Role  Role      `json:"role"`
	State CallState `json:"state"`

	// ParentCallID links a transfer leg back to the primary call that
	// spawned it. Empty for primary calls.
	ParentCallID string `json:"parent_call_id,omitempty"`

	AMDResult AMDResult `json:"amd_result,omitempty"`

	// AMDResolved and TransferTriggered are explicit idempotency guards.
	// The vendor may deliver answered/AMD notifications more than once and
	// in any order; these flags, not event arrival order, decide whether a
	// transition fires.
	AMDResolved       bool `json:"amd_resolved"`
	TransferTriggered bool `json:"transfer_triggered"`

	// VoicemailDropped is set once when playback of the voicemail message
	// is first triggered; beep-restarts do not re-set it.
	VoicemailDropped bool `json:"voicemail_dropped"`
	PlaybackStarted  bool `json:"playback_started"`

	HangupCause string `json:"hangup_cause,omitempty"`

	// Transcript is append-only; partial transcription events accumulate here.
	Transcript string `json:"transcript,omitempty"`

	DialedAt     time.Time  `json:"dialed_at"`
	AnsweredAt   *time.Time `json:"answered_at,omitempty"`
	TerminatedAt *time.Time `json:"terminated_at,omitempty"`
}

// IsTerminal reports whether the call has reached its final state.
func (c *Call) IsTerminal() bool {
	return c.State.IsTerminal()
}

// DurationSeconds is the answer-to-terminate duration, or zero if the call
// never answered or has not terminated.
func (c *Call) DurationSeconds() int {
	if c.AnsweredAt == nil || c.TerminatedAt == nil {
		return 0
	}
	d := c.TerminatedAt.Sub(*c.AnsweredAt)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

type Role string

const (
	RolePrimary     Role = "primary"
	RoleTransferLeg Role = "transfer_leg"
)

type CallState string

const (
	CallStateQueued  CallState = "queued"
	CallStateDialing CallState = "dialing"
	CallStateRinging CallState = "ringing"

	// CallStateAnswered is the window between the answer notification and
	// the AMD verdict.
	CallStateAnswered CallState = "answered"

	CallStateAnsweredHuman   CallState = "answered_human"
	CallStateAnsweredMachine CallState = "answered_machine"

	CallStateTransferring      CallState = "transferring"
	CallStateTransferConnected CallState = "transfer_connected"

	CallStateNoAnswer   CallState = "no_answer"
	CallStateFailed     CallState = "failed"
	CallStateTerminated CallState = "terminated"
)

func (s CallState) IsTerminal() bool {
	switch s {
	case CallStateNoAnswer, CallStateFailed, CallStateTerminated:
		return true
	default:
		return false
	}
}

// AMDResult is the answering machine detection verdict for a primary call.
type AMDResult string

const (
	AMDHuman   AMDResult = "human"
	AMDMachine AMDResult = "machine"
	AMDFax     AMDResult = "fax"
	AMDNotSure AMDResult = "not_sure"
	AMDTimeout AMDResult = "timeout"
)

// Hangup causes recorded by the orchestrator itself. Normal hangups carry
// whatever cause the vendor reported.
const (
	CauseDialFailed         = "dial_failed"
	CauseTransferFailed     = "transfer_failed"
	CausePlaybackFailed     = "playback_failed"
	CauseVoicemailDelivered = "voicemail_delivered"
	CauseShutdown           = "shutdown"
)
