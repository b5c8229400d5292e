package campaign

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/edsindustries1/my-outbound-dialer/internal/amd"
	"github.com/edsindustries1/my-outbound-dialer/internal/calls"
	"github.com/edsindustries1/my-outbound-dialer/internal/history"
	"github.com/edsindustries1/my-outbound-dialer/internal/telephony"
	"github.com/edsindustries1/my-outbound-dialer/pkg/logger"

	"github.com/google/uuid"
)

var (
	// ErrCampaignRunning is the conflict surfaced when Start is called while
	// a campaign is already active.
	ErrCampaignRunning = errors.New("campaign: a campaign is already running")
	ErrUnknownCampaign = errors.New("campaign: unknown campaign id")
	ErrNoCampaign      = errors.New("campaign: no campaign")
)

// Orchestrator owns the active campaign: the pending-number queue, the
// concurrency and pacing policy, the pause rule, and every call's lifecycle.
//
// Concurrency model:
//   - Mutations to one call are serialized by a per-call-id mutex
//     (single-writer-per-call); different calls proceed in parallel.
//   - Campaign-shared state (queue, pause tokens, in-flight set) is guarded
//     by o.mu. Lock order is call lock first, then o.mu; o.mu is never held
//     across a gateway round-trip.
//   - Gateway actions are fire-and-forget goroutines so one slow provider
//     request never blocks unrelated events.
type Orchestrator struct {
	log     *slog.Logger
	gateway telephony.Gateway
	store   *calls.Store
	history history.Repository
	policy  amd.Policy
	clock   func() time.Time

	fromNumber              string
	defaultPacing           time.Duration
	amdFallback             time.Duration
	allowDialDuringTransfer bool

	mu          sync.Mutex
	campaign    *Campaign
	queue       []string
	inFlight    map[string]struct{} // primary call ids (or dial reservations) not yet terminal
	pauseTokens map[string]struct{} // primary call ids with a transfer leg in flight
	amdTimers   map[string]*time.Timer
	cancelSched context.CancelFunc
	kick        chan struct{}

	lockMu    sync.Mutex
	callLocks map[string]*sync.Mutex
}

// Options configures the orchestrator. Gateway, Store and History are
// required; zero values elsewhere take defaults.
type Options struct {
	Log     *slog.Logger
	Gateway telephony.Gateway
	Store   *calls.Store
	History history.Repository
	Policy  amd.Policy

	// FromNumber is the caller id for every outbound leg.
	FromNumber string

	// DefaultPacing is the sequential-dial interval used when a start
	// request does not set one.
	DefaultPacing time.Duration

	// AMDFallback bounds how long an answered call may wait for an AMD
	// verdict before a synthetic one (Policy.FallbackResult) is injected.
	// Zero disables the fallback.
	AMDFallback time.Duration

	// AllowDialDuringTransfer lets simultaneous campaigns keep dialing while
	// transfer legs are in flight instead of pausing.
	AllowDialDuringTransfer bool

	// Clock is injectable for deterministic tests.
	Clock func() time.Time
}

func NewOrchestrator(opts Options) *Orchestrator {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	policy := opts.Policy
	if policy == (amd.Policy{}) {
		policy = amd.DefaultPolicy()
	}
	return &Orchestrator{
		log:                     log,
		gateway:                 opts.Gateway,
		store:                   opts.Store,
		history:                 opts.History,
		policy:                  policy,
		clock:                   clock,
		fromNumber:              opts.FromNumber,
		defaultPacing:           opts.DefaultPacing,
		amdFallback:             opts.AMDFallback,
		allowDialDuringTransfer: opts.AllowDialDuringTransfer,
		inFlight:                make(map[string]struct{}),
		pauseTokens:             make(map[string]struct{}),
		amdTimers:               make(map[string]*time.Timer),
		callLocks:               make(map[string]*sync.Mutex),
		kick:                    make(chan struct{}, 1),
	}
}

/* ===================== CAMPAIGN LIFECYCLE ===================== */

// Start initializes a campaign and launches the dial scheduler. It returns
// immediately; dialing happens in the background. Fails with
// ErrCampaignRunning while another campaign holds the single-active slot.
func (o *Orchestrator) Start(ctx context.Context, req StartRequest) (string, error) {
	numbers, err := req.normalize(o.defaultPacing)
	if err != nil {
		return "", err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.campaign != nil && o.campaign.Status.Active() {
		return "", ErrCampaignRunning
	}

	c := &Campaign{
		ID:             uuid.NewString(),
		Mode:           req.Mode,
		BatchSize:      req.BatchSize,
		Pacing:         req.Pacing,
		TransferNumber: req.TransferNumber,
		VoicemailAudio: req.VoicemailAudio,
		Status:         StatusRunning,
		Total:          len(numbers),
		StartedAt:      o.clock().UTC(),
	}

	o.campaign = c
	o.queue = numbers
	o.inFlight = make(map[string]struct{})
	o.pauseTokens = make(map[string]struct{})
	o.store.Reset()

	// The store was just flushed, so the per-call locks for the previous
	// campaign's ids have nothing left to guard.
	o.lockMu.Lock()
	o.callLocks = make(map[string]*sync.Mutex)
	o.lockMu.Unlock()

	schedCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.cancelSched = cancel
	sched := newScheduler(o, c.Mode, c.Pacing, c.cap())
	go sched.run(schedCtx)

	o.log.Info("campaign started",
		"campaign_id", c.ID,
		"mode", c.Mode,
		"numbers", c.Total,
		"transfer_to", c.TransferNumber,
	)
	return c.ID, nil
}

// Stop marks the campaign stopped. No new dials are issued; in-flight calls
// are allowed to terminate naturally. Idempotent.
func (o *Orchestrator) Stop(ctx context.Context, campaignID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.campaign == nil {
		return ErrNoCampaign
	}
	if o.campaign.ID != campaignID {
		return ErrUnknownCampaign
	}
	if !o.campaign.Status.Active() {
		return nil
	}
	o.campaign.Status = StatusStopped
	o.stopSchedulerLocked()
	o.log.Info("campaign stopped", "campaign_id", campaignID)
	return nil
}

// NextSlotAvailable reports whether the scheduler may issue a new primary
// dial right now.
func (o *Orchestrator) NextSlotAvailable() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nextSlotLocked()
}

func (o *Orchestrator) nextSlotLocked() bool {
	c := o.campaign
	if c == nil || c.Status != StatusRunning {
		return false
	}
	if len(o.pauseTokens) > 0 && !o.overlapAllowedLocked() {
		return false
	}
	return len(o.inFlight) < c.cap()
}

// overlapAllowedLocked is the policy choice from the design notes: only
// simultaneous campaigns may opt into dialing while transfers are in flight.
func (o *Orchestrator) overlapAllowedLocked() bool {
	return o.allowDialDuringTransfer && o.campaign != nil && o.campaign.Mode == ModeSimultaneous
}

// Teardown flushes every live call to the historical sink and releases the
// scheduler. Called once on process shutdown.
func (o *Orchestrator) Teardown(ctx context.Context) {
	o.mu.Lock()
	o.stopSchedulerLocked()
	for _, t := range o.amdTimers {
		t.Stop()
	}
	o.amdTimers = make(map[string]*time.Timer)
	o.mu.Unlock()

	for _, c := range o.store.Live() {
		l := o.lockForCall(c.CallID)
		l.Lock()
		if !c.IsTerminal() {
			now := o.clock().UTC()
			c.TerminatedAt = &now
			if c.HangupCause == "" {
				c.HangupCause = calls.CauseShutdown
			}
			c.State = calls.CallStateTerminated
			if err := o.history.Append(ctx, history.RecordFromCall(c)); err != nil {
				o.log.Error("teardown history flush failed", "call_id", c.CallID, "err", err)
			}
		}
		l.Unlock()
	}
}

func (o *Orchestrator) stopSchedulerLocked() {
	if o.cancelSched != nil {
		o.cancelSched()
		o.cancelSched = nil
	}
}

/* ===================== DIALING ===================== */

// dialNext pops one number and issues the dial. Returns false when no slot is
// available or the queue is empty. Called only by the scheduler.
func (o *Orchestrator) dialNext(ctx context.Context) bool {
	o.mu.Lock()
	if !o.nextSlotLocked() || len(o.queue) == 0 {
		o.completeIfDrainedLocked()
		o.mu.Unlock()
		return false
	}
	number := o.queue[0]
	o.queue = o.queue[1:]
	o.campaign.DialedCount++
	c := o.campaign

	// Reserve the concurrency slot for the duration of the gateway call so a
	// parallel tick cannot overshoot the cap.
	reservation := "dial:" + uuid.NewString()
	o.inFlight[reservation] = struct{}{}
	o.mu.Unlock()

	o.log.Info("dialing", "campaign_id", c.ID, "to", number, "dialed", c.DialedCount, "total", c.Total)

	callID, err := o.gateway.PlaceCall(ctx, o.fromNumber, number)
	if err != nil {
		o.log.Error("dial failed", "to", number, "err", err)
		o.recordDialFailure(ctx, c, number)
		o.mu.Lock()
		delete(o.inFlight, reservation)
		o.completeIfDrainedLocked()
		o.mu.Unlock()
		return true
	}

	now := o.clock().UTC()
	rec, created := o.store.Upsert(&calls.Call{
		CallID:     callID,
		CampaignID: c.ID,
		From:       o.fromNumber,
		To:         number,
		Role:       calls.RolePrimary,
		State:      calls.CallStateDialing,
		DialedAt:   now,
	})

	l := o.lockForCall(callID)
	l.Lock()
	if !created {
		// A webhook for this call arrived before the dial response and
		// auto-created the record; backfill what only we know.
		rec.CampaignID = c.ID
		rec.From = o.fromNumber
		if rec.DialedAt.IsZero() {
			rec.DialedAt = now
		}
	}
	terminal := rec.IsTerminal()
	l.Unlock()

	o.mu.Lock()
	delete(o.inFlight, reservation)
	if !terminal {
		o.inFlight[callID] = struct{}{}
	}
	o.completeIfDrainedLocked()
	o.mu.Unlock()
	return true
}

// recordDialFailure writes the terminal record for a number the gateway
// rejected. The number is recorded but not retried.
func (o *Orchestrator) recordDialFailure(ctx context.Context, c *Campaign, number string) {
	now := o.clock().UTC()
	failed := &calls.Call{
		CallID:       "failed:" + uuid.NewString(),
		CampaignID:   c.ID,
		From:         o.fromNumber,
		To:           number,
		Role:         calls.RolePrimary,
		State:        calls.CallStateFailed,
		HangupCause:  calls.CauseDialFailed,
		DialedAt:     now,
		TerminatedAt: &now,
	}
	o.store.Upsert(failed)
	if err := o.history.Append(ctx, history.RecordFromCall(failed)); err != nil {
		o.log.Error("history append failed", "call_id", failed.CallID, "err", err)
	}
}

// completeIfDrainedLocked marks the campaign completed once the queue is
// exhausted and nothing is in flight.
func (o *Orchestrator) completeIfDrainedLocked() {
	c := o.campaign
	if c == nil || c.Status != StatusRunning {
		return
	}
	if len(o.queue) == 0 && len(o.inFlight) == 0 {
		c.Status = StatusCompleted
		o.stopSchedulerLocked()
		o.log.Info("campaign completed", "campaign_id", c.ID, "dialed", c.DialedCount)
	}
}

// PlaceTestCall places one standalone call outside any campaign so operators
// can verify gateway credentials end to end.
func (o *Orchestrator) PlaceTestCall(ctx context.Context, number string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", ErrInvalidRequest
	}
	callID, err := o.gateway.PlaceCall(ctx, o.fromNumber, number)
	if err != nil {
		return "", err
	}
	o.store.Upsert(&calls.Call{
		CallID:   callID,
		From:     o.fromNumber,
		To:       number,
		Role:     calls.RolePrimary,
		State:    calls.CallStateDialing,
		DialedAt: o.clock().UTC(),
	})
	o.log.Info("test call placed", "to", number, "call_id", callID)
	return callID, nil
}

/* ===================== EVENT HANDLING ===================== */

// OnEvent is the sole mutation entry point driven by the event ingress. Safe
// for concurrent use across call ids; events for the same call id are
// serialized.
func (o *Orchestrator) OnEvent(ctx context.Context, ev telephony.Event) {
	if ev.CallID == "" {
		return
	}
	l := o.lockForCall(ev.CallID)
	l.Lock()
	defer l.Unlock()
	o.apply(ctx, ev)
}

func (o *Orchestrator) lockForCall(callID string) *sync.Mutex {
	o.lockMu.Lock()
	defer o.lockMu.Unlock()
	l, ok := o.callLocks[callID]
	if !ok {
		l = &sync.Mutex{}
		o.callLocks[callID] = l
	}
	return l
}

// apply advances one call's state machine. Caller holds the call lock.
func (o *Orchestrator) apply(ctx context.Context, ev telephony.Event) {
	c := o.store.Get(ev.CallID)
	if c == nil {
		c = o.adoptUnknownCall(ev)
		if c == nil {
			o.log.Warn("event for unknown call dropped", "call_id", ev.CallID, "kind", ev.Kind)
			return
		}
	}

	switch ev.Kind {
	case telephony.EventRinging:
		if c.State == calls.CallStateQueued || c.State == calls.CallStateDialing {
			c.State = calls.CallStateRinging
		}

	case telephony.EventAnswered:
		o.applyAnswered(c, ev)

	case telephony.EventAMDResult:
		o.applyAMDResult(ctx, c, ev)

	case telephony.EventGreetingEnded:
		// Machine greeting finished. If the message is already playing and
		// the beep was detected, restart it so it lands after the beep.
		if c.VoicemailDropped && !c.IsTerminal() && ev.Attr(telephony.AttrResult) == "beep_detected" {
			o.log.Info("beep detected, restarting voicemail", "call_id", c.CallID)
			o.playVoicemail(c.CallID)
		}

	case telephony.EventPlaybackStarted:
		c.PlaybackStarted = true

	case telephony.EventPlaybackEnded:
		if c.VoicemailDropped && !c.IsTerminal() {
			if c.HangupCause == "" {
				c.HangupCause = calls.CauseVoicemailDelivered
			}
			o.hangupAsync(c.CallID)
		}

	case telephony.EventTranscriptPartial:
		if text := ev.Attr(telephony.AttrTranscript); text != "" {
			if c.Transcript != "" {
				c.Transcript += " "
			}
			c.Transcript += text
		}

	case telephony.EventHangup:
		o.applyHangup(ctx, c, ev)

	default:
		o.log.Debug("unhandled event kind", "call_id", ev.CallID, "kind", ev.Kind)
	}
}

// adoptUnknownCall creates a record for an event that arrived before the dial
// response registered the call. Transfer legs are recognized by destination
// match against the campaign's transfer number.
func (o *Orchestrator) adoptUnknownCall(ev telephony.Event) *calls.Call {
	to := ev.Attr(telephony.AttrTo)
	if to == "" {
		return nil
	}

	o.mu.Lock()
	camp := o.campaign
	o.mu.Unlock()
	if camp == nil || !camp.Status.Active() {
		return nil
	}

	c := &calls.Call{
		CallID:     ev.CallID,
		CampaignID: camp.ID,
		From:       ev.Attr(telephony.AttrFrom),
		To:         to,
		Role:       calls.RolePrimary,
		State:      calls.CallStateDialing,
		DialedAt:   ev.OccurredAt,
	}
	if to == camp.TransferNumber {
		c.Role = calls.RoleTransferLeg
		c.ParentCallID = o.findPendingTransferParent()
	}
	rec, _ := o.store.Upsert(c)
	o.log.Info("auto-created call record from webhook", "call_id", ev.CallID, "to", to, "role", rec.Role)
	return rec
}

// findPendingTransferParent locates the primary call that triggered a
// transfer whose leg has not been linked yet.
func (o *Orchestrator) findPendingTransferParent() string {
	linked := make(map[string]bool)
	var candidates []*calls.Call
	for _, c := range o.store.All() {
		if c.Role == calls.RoleTransferLeg && c.ParentCallID != "" {
			linked[c.ParentCallID] = true
		}
		if c.Role == calls.RolePrimary && c.TransferTriggered {
			candidates = append(candidates, c)
		}
	}
	for _, c := range candidates {
		if !linked[c.CallID] {
			return c.CallID
		}
	}
	return ""
}

func (o *Orchestrator) applyAnswered(c *calls.Call, ev telephony.Event) {
	if c.IsTerminal() {
		return
	}
	if c.AnsweredAt == nil {
		at := ev.OccurredAt
		c.AnsweredAt = &at
	}

	if c.Role == calls.RoleTransferLeg {
		// Transfer legs bypass AMD entirely: answered means the agent picked
		// up and the caller is bridged.
		c.State = calls.CallStateTransferConnected
		o.log.Info("transfer leg connected", "call_id", c.CallID, "parent", c.ParentCallID)
		return
	}

	// Duplicate answered events after the AMD verdict (or after a transfer
	// already fired) are no-ops.
	if c.AMDResolved || c.TransferTriggered {
		return
	}
	c.State = calls.CallStateAnswered
	o.log.Info("call answered, awaiting AMD", "call_id", c.CallID)
	o.armAMDFallback(c.CallID)
}

// armAMDFallback schedules a synthetic AMD verdict in case the vendor never
// delivers one, so an answered call is not stranded in limbo.
func (o *Orchestrator) armAMDFallback(callID string) {
	if o.amdFallback <= 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.amdTimers[callID]; ok {
		return
	}
	o.amdTimers[callID] = time.AfterFunc(o.amdFallback, func() {
		o.mu.Lock()
		delete(o.amdTimers, callID)
		o.mu.Unlock()
		o.log.Warn("AMD verdict overdue, applying fallback", "call_id", callID, "fallback", string(o.policy.FallbackResult))
		o.OnEvent(context.Background(), telephony.Event{
			CallID:     callID,
			Kind:       telephony.EventAMDResult,
			Attributes: map[string]string{telephony.AttrResult: string(o.policy.FallbackResult)},
			OccurredAt: o.clock().UTC(),
		})
	})
}

func (o *Orchestrator) cancelAMDFallback(callID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if t, ok := o.amdTimers[callID]; ok {
		t.Stop()
		delete(o.amdTimers, callID)
	}
}

func (o *Orchestrator) applyAMDResult(ctx context.Context, c *calls.Call, ev telephony.Event) {
	// AMD never applies to transfer legs, even if the vendor includes AMD
	// fields in their events.
	if c.Role == calls.RoleTransferLeg {
		return
	}
	if c.IsTerminal() {
		// Hangup beat the AMD verdict; nothing left to do.
		return
	}
	if c.AMDResolved {
		// Duplicate delivery; the verdict is consumed exactly once.
		return
	}
	c.AMDResolved = true
	c.AMDResult = calls.AMDResult(ev.Attr(telephony.AttrResult))
	o.cancelAMDFallback(c.CallID)

	o.mu.Lock()
	camp := o.campaign
	o.mu.Unlock()

	disposition := o.policy.Decide(c.AMDResult)
	o.log.Info("AMD resolved", "call_id", c.CallID, "result", string(c.AMDResult), "disposition", string(disposition))

	// Calls outside any campaign (test calls) have no transfer destination or
	// voicemail message; they just hang up once classified.
	if c.CampaignID == "" || camp == nil || camp.ID != c.CampaignID {
		c.State = calls.CallStateAnswered
		o.hangupAsync(c.CallID)
		return
	}

	switch disposition {
	case amd.DispositionTransfer:
		if c.TransferTriggered {
			return
		}
		c.TransferTriggered = true
		c.State = calls.CallStateAnsweredHuman
		// Token goes in before the gateway round-trip so the scheduler cannot
		// dial into the gap while the transfer is being set up.
		o.addPauseToken(c.CallID)
		go o.startTransfer(c.CallID, camp)
		go o.startTranscription(c.CallID)

	case amd.DispositionVoicemail:
		c.State = calls.CallStateAnsweredMachine
		if !c.VoicemailDropped {
			c.VoicemailDropped = true
			o.playVoicemail(c.CallID)
		}

	case amd.DispositionHangup:
		o.hangupAsync(c.CallID)
	}
}

func (o *Orchestrator) applyHangup(ctx context.Context, c *calls.Call, ev telephony.Event) {
	o.cancelAMDFallback(c.CallID)
	if c.IsTerminal() {
		return
	}

	at := ev.OccurredAt
	c.TerminatedAt = &at
	if c.HangupCause == "" {
		if cause := ev.Attr(telephony.AttrHangupCause); cause != "" {
			c.HangupCause = cause
		} else {
			c.HangupCause = "unknown"
		}
	}
	c.State = terminalState(c)

	o.log.Info("call ended",
		"call_id", c.CallID,
		"role", string(c.Role),
		"state", string(c.State),
		"cause", c.HangupCause,
	)

	if err := o.history.Append(ctx, history.RecordFromCall(c)); err != nil {
		o.log.Error("history append failed", "call_id", c.CallID, "err", err)
	}

	o.mu.Lock()
	if c.Role == calls.RolePrimary {
		delete(o.inFlight, c.CallID)
	} else if c.ParentCallID != "" {
		o.removePauseTokenLocked(c.ParentCallID)
	}
	o.completeIfDrainedLocked()
	o.mu.Unlock()
	o.kickScheduler()
}

// terminalState maps a hung-up call onto its terminal state.
func terminalState(c *calls.Call) calls.CallState {
	if c.AnsweredAt != nil {
		return calls.CallStateTerminated
	}
	switch c.HangupCause {
	case "busy", "user_busy", "call_rejected", "invalid_number", "unallocated_number", calls.CauseDialFailed:
		return calls.CallStateFailed
	default:
		return calls.CallStateNoAnswer
	}
}

/* ===================== GATEWAY SIDE EFFECTS ===================== */

// startTransfer runs off the event path: it dials the transfer destination
// and registers the resulting leg.
func (o *Orchestrator) startTransfer(primaryID string, camp *Campaign) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	log := logger.WithCall(o.log, primaryID)

	legID, err := o.gateway.StartTransfer(ctx, primaryID, camp.TransferNumber)
	if err != nil {
		log.Error("transfer start failed", "err", err)
		o.mu.Lock()
		o.removePauseTokenLocked(primaryID)
		o.mu.Unlock()
		o.kickScheduler()
		o.failCall(primaryID, calls.CauseTransferFailed)
		return
	}

	l := o.lockForCall(primaryID)
	l.Lock()
	if p := o.store.Get(primaryID); p != nil && !p.IsTerminal() {
		p.State = calls.CallStateTransferring
	}
	l.Unlock()

	if legID == "" || legID == primaryID {
		// Provider bridged in place without a distinct leg id; key the leg
		// off a derived id so the pause token still has an owner.
		legID = primaryID + ":transfer"
	}

	now := o.clock().UTC()
	leg, _ := o.store.Upsert(&calls.Call{
		CallID:       legID,
		CampaignID:   camp.ID,
		From:         o.fromNumber,
		To:           camp.TransferNumber,
		Role:         calls.RoleTransferLeg,
		ParentCallID: primaryID,
		State:        calls.CallStateDialing,
		DialedAt:     now,
	})

	ll := o.lockForCall(legID)
	ll.Lock()
	if leg.ParentCallID == "" {
		// Webhook auto-created the leg first; link it now.
		leg.ParentCallID = primaryID
	}
	legDone := leg.IsTerminal()
	ll.Unlock()

	if legDone {
		// The leg hung up before we even registered it.
		o.mu.Lock()
		o.removePauseTokenLocked(primaryID)
		o.mu.Unlock()
		o.kickScheduler()
		return
	}
	log.Info("transfer leg started", "leg_id", legID, "to", camp.TransferNumber)
}

func (o *Orchestrator) startTranscription(callID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := o.gateway.StartTranscription(ctx, callID); err != nil {
		// Transcription is best-effort; the call proceeds without it.
		o.log.Warn("transcription start failed", "call_id", callID, "err", err)
	}
}

// playVoicemail starts (or restarts) playback of the campaign's voicemail
// message.
func (o *Orchestrator) playVoicemail(callID string) {
	o.mu.Lock()
	camp := o.campaign
	o.mu.Unlock()
	if camp == nil {
		return
	}
	audio := camp.VoicemailAudio
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := o.gateway.PlayAudio(ctx, callID, audio); err != nil {
			o.log.Error("voicemail playback failed", "call_id", callID, "err", err)
			o.failCall(callID, calls.CausePlaybackFailed)
		}
	}()
}

// failCall marks a call with a degraded-but-terminated outcome after a
// gateway action failed, and asks the provider to hang it up so nothing is
// left hanging.
func (o *Orchestrator) failCall(callID, cause string) {
	l := o.lockForCall(callID)
	l.Lock()
	if c := o.store.Get(callID); c != nil && !c.IsTerminal() && c.HangupCause == "" {
		c.HangupCause = cause
	}
	l.Unlock()
	o.hangupAsync(callID)
}

func (o *Orchestrator) hangupAsync(callID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := o.gateway.Hangup(ctx, callID); err != nil {
			o.log.Warn("hangup request failed", "call_id", callID, "err", err)
		}
	}()
}

/* ===================== PAUSE TOKENS ===================== */

func (o *Orchestrator) addPauseToken(primaryID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pauseTokens[primaryID] = struct{}{}
	if o.campaign != nil && o.campaign.Status == StatusRunning && !o.overlapAllowedLocked() {
		o.campaign.Status = StatusPaused
		o.log.Info("campaign paused for transfer", "primary_call_id", primaryID, "tokens", len(o.pauseTokens))
	}
}

func (o *Orchestrator) removePauseTokenLocked(primaryID string) {
	if _, ok := o.pauseTokens[primaryID]; !ok {
		return
	}
	delete(o.pauseTokens, primaryID)
	if len(o.pauseTokens) == 0 && o.campaign != nil && o.campaign.Status == StatusPaused {
		o.campaign.Status = StatusRunning
		o.log.Info("campaign resumed, all transfers finished")
	}
}

// kickScheduler asks the scheduler to consider the next number immediately
// instead of waiting for its tick.
func (o *Orchestrator) kickScheduler() {
	select {
	case o.kick <- struct{}{}:
	default:
	}
}
