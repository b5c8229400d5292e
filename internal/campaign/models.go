package campaign

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Campaign is a single run of dialing a list of numbers under one
// configuration. At most one campaign is active (running or paused) per
// process at a time.

type Campaign struct {
	ID string `json:"id"`

	Mode      Mode          `json:"mode"`
	BatchSize int           `json:"batch_size,omitempty"`
	Pacing    time.Duration `json:"pacing"`

	TransferNumber string `json:"transfer_number"`
	VoicemailAudio string `json:"voicemail_audio"`

	Status Status `json:"status"`

	// Total is the size of the original number list; dialed + pending +
	// in-flight never exceeds it.
	Total       int `json:"total"`
	DialedCount int `json:"dialed_count"`

	StartedAt time.Time `json:"started_at"`
}

type Mode string

const (
	// ModeSequential dials one number at a time on the pacing interval.
	ModeSequential Mode = "sequential"
	// ModeSimultaneous keeps up to BatchSize primary calls in flight.
	ModeSimultaneous Mode = "simultaneous"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusStopped   Status = "stopped"
)

// Active reports whether the campaign still owns the single-active slot.
func (s Status) Active() bool {
	return s == StatusRunning || s == StatusPaused
}

const (
	minBatchSize = 2
	maxBatchSize = 50

	defaultPacing = 2 * time.Second
)

// StartRequest is the public input to Orchestrator.Start.
type StartRequest struct {
	Numbers        []string      `json:"numbers"`
	Mode           Mode          `json:"mode"`
	BatchSize      int           `json:"batch_size"`
	Pacing         time.Duration `json:"pacing"`
	TransferNumber string        `json:"transfer_number"`
	VoicemailAudio string        `json:"voicemail_audio"`
}

var ErrInvalidRequest = errors.New("campaign: invalid request")

// normalize validates the request and fills defaults, returning the cleaned
// number list. fallbackPacing is the operator-configured pacing used when the
// request does not set one; zero falls back to the built-in default.
func (r *StartRequest) normalize(fallbackPacing time.Duration) ([]string, error) {
	numbers := make([]string, 0, len(r.Numbers))
	for _, n := range r.Numbers {
		n = strings.TrimSpace(n)
		if n != "" {
			numbers = append(numbers, n)
		}
	}
	if len(numbers) == 0 {
		return nil, fmt.Errorf("%w: no phone numbers", ErrInvalidRequest)
	}
	if r.TransferNumber = strings.TrimSpace(r.TransferNumber); r.TransferNumber == "" {
		return nil, fmt.Errorf("%w: transfer number is required", ErrInvalidRequest)
	}
	if r.VoicemailAudio = strings.TrimSpace(r.VoicemailAudio); r.VoicemailAudio == "" {
		return nil, fmt.Errorf("%w: voicemail audio is required", ErrInvalidRequest)
	}
	if r.Mode == "" {
		r.Mode = ModeSequential
	}
	switch r.Mode {
	case ModeSequential:
		r.BatchSize = 1
	case ModeSimultaneous:
		if r.BatchSize < minBatchSize || r.BatchSize > maxBatchSize {
			return nil, fmt.Errorf("%w: batch size must be %d-%d, got %d", ErrInvalidRequest, minBatchSize, maxBatchSize, r.BatchSize)
		}
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, r.Mode)
	}
	if r.Pacing <= 0 {
		r.Pacing = fallbackPacing
	}
	if r.Pacing <= 0 {
		r.Pacing = defaultPacing
	}
	return numbers, nil
}

// cap is the primary-call concurrency limit for the campaign's mode.
func (c *Campaign) cap() int {
	if c.Mode == ModeSimultaneous {
		return c.BatchSize
	}
	return 1
}
