package telephony

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type captureSink struct {
	events chan Event
}

func newCaptureSink() *captureSink {
	return &captureSink{events: make(chan Event, 16)}
}

func (s *captureSink) OnEvent(ctx context.Context, ev Event) {
	s.events <- ev
}

func postWebhook(h WebhookHandler, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhooks/telnyx", h.HandleTelnyx)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/telnyx", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleTelnyx_DispatchesNormalizedEvent(t *testing.T) {
	sink := newCaptureSink()
	h := WebhookHandler{Sink: sink}

	body := `{"data":{"id":"evt-1","event_type":"call.answered","occurred_at":"2023-11-14T22:13:20Z","payload":{"call_control_id":"cc-1","to":"+15551230001"}}}`
	if w := postWebhook(h, body); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	select {
	case ev := <-sink.events:
		if ev.Kind != EventAnswered || ev.CallID != "cc-1" {
			t.Fatalf("wrong event dispatched: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event never reached the sink")
	}
}

func TestHandleTelnyx_AlwaysAcknowledges(t *testing.T) {
	sink := newCaptureSink()
	h := WebhookHandler{Sink: sink}

	// Garbage bodies and irrelevant event types must still be acked so the
	// provider does not retry.
	for _, body := range []string{
		"not json at all",
		`{"data":{"event_type":"call.recording.saved","payload":{"call_control_id":"cc-1"}}}`,
		`{"data":{"event_type":"call.answered","payload":{}}}`,
	} {
		if w := postWebhook(h, body); w.Code != http.StatusOK {
			t.Fatalf("body %q: expected 200, got %d", body, w.Code)
		}
	}

	select {
	case ev := <-sink.events:
		t.Fatalf("nothing should reach the sink, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandleTelnyx_NilSinkStillAcks(t *testing.T) {
	h := WebhookHandler{}
	body := `{"data":{"event_type":"call.answered","payload":{"call_control_id":"cc-1"}}}`
	if w := postWebhook(h, body); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
