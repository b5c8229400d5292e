package telephony

import (
	"context"
	"time"
)

// Gateway is the provider-agnostic interface for outbound call control.
//
// Rules:
//   - No provider SDK or HTTP calls outside telephony adapters.
//   - Every action is fallible and independent per call; the orchestrator treats
//     a failure as a terminal outcome for that call, never as a reason to halt
//     the campaign.
//   - Keep request/response types provider-agnostic.
type Gateway interface {
	Name() string

	// PlaceCall starts an outbound call with answering machine detection
	// enabled and returns the provider call id.
	PlaceCall(ctx context.Context, from, to string) (callID string, err error)

	// PlayAudio starts playback of an audio resource on a live call.
	PlayAudio(ctx context.Context, callID, audioRef string) error

	// StartTransfer dials the transfer destination and bridges it to the
	// call, returning the provider id of the new transfer leg.
	StartTransfer(ctx context.Context, callID, to string) (transferCallID string, err error)

	// StartTranscription begins live transcription on a call.
	StartTranscription(ctx context.Context, callID string) error

	// Hangup ends a live call.
	Hangup(ctx context.Context, callID string) error
}

// EventKind is the internal call-progress event vocabulary. Provider webhook
// payloads are normalized into these before anything downstream sees them.
type EventKind string

const (
	EventRinging           EventKind = "ringing"
	EventAnswered          EventKind = "answered"
	EventAMDResult         EventKind = "amd_result"
	EventGreetingEnded     EventKind = "greeting_ended"
	EventPlaybackStarted   EventKind = "playback_started"
	EventPlaybackEnded     EventKind = "playback_ended"
	EventTranscriptPartial EventKind = "transcript_partial"
	EventHangup            EventKind = "hangup"
)

// Well-known Event attribute keys.
const (
	AttrResult      = "result"       // AMD verdict or greeting outcome
	AttrTo          = "to"           // destination number
	AttrFrom        = "from"         // caller number
	AttrHangupCause = "hangup_cause" // provider hangup cause
	AttrTranscript  = "transcript"   // partial transcription text
)

// Event is a normalized call-progress notification.
type Event struct {
	CallID     string            `json:"call_id"`
	Kind       EventKind         `json:"kind"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Attr returns a single attribute, or empty string when absent.
func (e Event) Attr(key string) string {
	if e.Attributes == nil {
		return ""
	}
	return e.Attributes[key]
}

// EventSink consumes normalized events. Implemented by the campaign
// orchestrator; the webhook handler only depends on this contract.
type EventSink interface {
	OnEvent(ctx context.Context, ev Event)
}
