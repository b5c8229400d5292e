package telephony

import (
	"context"
	"net/http"
	"time"

	"github.com/edsindustries1/my-outbound-dialer/pkg/logger"
	"github.com/edsindustries1/my-outbound-dialer/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// WebhookHandler is the event ingress: it normalizes provider notifications
// and hands them to the orchestrator.
//
// Contract: every notification is acknowledged with 200 immediately and
// unconditionally, before and regardless of internal processing, so the
// provider never retries because of slow handling. Processing failures are
// logged, not surfaced to the sender.
//
// No business logic here.

type WebhookHandler struct {
	Sink EventSink

	// Dedupe suppresses redelivered notifications by vendor event id.
	// Optional; nil disables suppression (the orchestrator's own guards still
	// keep duplicates harmless).
	Dedupe *EventDeduper
}

func (h WebhookHandler) HandleTelnyx(c *gin.Context) {
	log := logger.FromGin(c)

	w, err := ParseTelnyxWebhook(c.Request.Body)
	if err != nil {
		log.Warn("telnyx webhook parse failed", "err", err)
		c.Status(http.StatusOK)
		return
	}

	ev, ok := w.Normalize()
	if !ok {
		log.Debug("telnyx webhook ignored", "event_type", w.Data.EventType)
		c.Status(http.StatusOK)
		return
	}

	if h.Dedupe != nil && w.Data.ID != "" {
		if seen, err := h.Dedupe.Seen(c.Request.Context(), w.Data.ID); err != nil {
			// Dedup is best-effort; fall through and let the orchestrator's
			// idempotency guards absorb any duplicate.
			log.Warn("event dedupe check failed", "err", err)
		} else if seen {
			log.Debug("duplicate webhook delivery suppressed", "event_id", w.Data.ID, "call_id", ev.CallID)
			c.Status(http.StatusOK)
			return
		}
	}

	if h.Sink != nil {
		// Detach from the request: the ack must not wait on processing.
		go h.Sink.OnEvent(context.WithoutCancel(c.Request.Context()), ev)
	}
	c.Status(http.StatusOK)
}

// EventDeduper remembers vendor event ids for a retention window so that
// provider delivery retries are dropped at the edge.
type EventDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewEventDeduper(rdb *redis.Client, ttl time.Duration) *EventDeduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &EventDeduper{rdb: rdb, ttl: ttl}
}

// Seen records the event id and reports whether it was already present.
func (d *EventDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	first, err := utils.DedupeOnce(ctx, d.rdb, "webhook:event:"+eventID, d.ttl)
	if err != nil {
		return false, err
	}
	return !first, nil
}
