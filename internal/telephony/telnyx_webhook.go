package telephony

import (
	"encoding/json"
	"io"
	"time"
)

// TelnyxWebhook is the subset of the Telnyx webhook envelope we consume.
// Telnyx posts JSON with the event under "data".
//
// Keep it minimal and adapter-only; business logic never sees these fields.

type TelnyxWebhook struct {
	Data TelnyxEventData `json:"data"`
}

type TelnyxEventData struct {
	ID         string             `json:"id"`
	EventType  string             `json:"event_type"`
	OccurredAt time.Time          `json:"occurred_at"`
	Payload    TelnyxEventPayload `json:"payload"`
}

type TelnyxEventPayload struct {
	CallControlID string `json:"call_control_id"`
	To            string `json:"to"`
	From          string `json:"from"`

	// Result carries the AMD verdict (call.machine.detection.ended) or the
	// greeting outcome such as "beep_detected" (call.machine.greeting.ended).
	Result string `json:"result"`

	HangupCause  string `json:"hangup_cause"`
	HangupSource string `json:"hangup_source"`

	TranscriptionData struct {
		Transcript string `json:"transcript"`
	} `json:"transcription_data"`
}

// ParseTelnyxWebhook decodes a webhook request body.
func ParseTelnyxWebhook(r io.Reader) (TelnyxWebhook, error) {
	var w TelnyxWebhook
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return TelnyxWebhook{}, err
	}
	return w, nil
}

// Normalize maps the vendor event onto the internal vocabulary. The second
// return value is false for event types the orchestrator does not consume.
func (w TelnyxWebhook) Normalize() (Event, bool) {
	d := w.Data
	p := d.Payload
	ev := Event{
		CallID:     p.CallControlID,
		OccurredAt: d.OccurredAt,
		Attributes: map[string]string{},
	}
	if p.To != "" {
		ev.Attributes[AttrTo] = p.To
	}
	if p.From != "" {
		ev.Attributes[AttrFrom] = p.From
	}

	switch d.EventType {
	case "call.initiated":
		ev.Kind = EventRinging
	case "call.answered":
		ev.Kind = EventAnswered
	case "call.machine.detection.ended":
		ev.Kind = EventAMDResult
		ev.Attributes[AttrResult] = p.Result
	case "call.machine.greeting.ended", "call.machine.premium.greeting.ended":
		ev.Kind = EventGreetingEnded
		ev.Attributes[AttrResult] = p.Result
	case "call.playback.started":
		ev.Kind = EventPlaybackStarted
	case "call.playback.ended":
		ev.Kind = EventPlaybackEnded
	case "call.transcription":
		ev.Kind = EventTranscriptPartial
		ev.Attributes[AttrTranscript] = p.TranscriptionData.Transcript
	case "call.hangup":
		ev.Kind = EventHangup
		ev.Attributes[AttrHangupCause] = p.HangupCause
	default:
		return Event{}, false
	}

	if ev.CallID == "" {
		return Event{}, false
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	return ev, true
}
