package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTelnyxBaseURL = "https://api.telnyx.com/v2"

// TelnyxGateway drives the Telnyx Call Control REST API.
//
// All outbound call actions go through here. Requests use a bounded client
// timeout so a slow provider can never wedge the orchestrator; callers treat
// any error as terminal for that one action.
type TelnyxGateway struct {
	apiKey       string
	connectionID string
	webhookURL   string
	baseURL      string
	client       *http.Client
}

type TelnyxOptions struct {
	APIKey       string
	ConnectionID string

	// WebhookURL is where Telnyx delivers call-progress notifications.
	WebhookURL string

	// BaseURL overrides the API endpoint (tests point this at a test server).
	BaseURL string

	// Timeout bounds each API request. Defaults to 15s.
	Timeout time.Duration
}

func NewTelnyxGateway(opts TelnyxOptions) *TelnyxGateway {
	base := opts.BaseURL
	if base == "" {
		base = defaultTelnyxBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TelnyxGateway{
		apiKey:       opts.APIKey,
		connectionID: opts.ConnectionID,
		webhookURL:   opts.WebhookURL,
		baseURL:      base,
		client:       &http.Client{Timeout: timeout},
	}
}

func (g *TelnyxGateway) Name() string { return "telnyx" }

func (g *TelnyxGateway) PlaceCall(ctx context.Context, from, to string) (string, error) {
	body := map[string]any{
		"connection_id":               g.connectionID,
		"to":                          to,
		"from":                        from,
		"answering_machine_detection": "detect_beep",
		"webhook_url":                 g.webhookURL,
	}
	var out struct {
		Data struct {
			CallControlID string `json:"call_control_id"`
		} `json:"data"`
	}
	if err := g.post(ctx, "/calls", body, &out); err != nil {
		return "", fmt.Errorf("telnyx: place call to %s: %w", to, err)
	}
	if out.Data.CallControlID == "" {
		return "", fmt.Errorf("telnyx: place call to %s: no call_control_id in response", to)
	}
	return out.Data.CallControlID, nil
}

func (g *TelnyxGateway) PlayAudio(ctx context.Context, callID, audioRef string) error {
	body := map[string]any{"audio_url": audioRef}
	if err := g.post(ctx, "/calls/"+callID+"/actions/playback_start", body, nil); err != nil {
		return fmt.Errorf("telnyx: playback_start on %s: %w", callID, err)
	}
	return nil
}

func (g *TelnyxGateway) StartTransfer(ctx context.Context, callID, to string) (string, error) {
	body := map[string]any{"to": to, "webhook_url": g.webhookURL}
	var out struct {
		Data struct {
			CallControlID string `json:"call_control_id"`
		} `json:"data"`
	}
	if err := g.post(ctx, "/calls/"+callID+"/actions/transfer", body, &out); err != nil {
		return "", fmt.Errorf("telnyx: transfer %s to %s: %w", callID, to, err)
	}
	return out.Data.CallControlID, nil
}

func (g *TelnyxGateway) StartTranscription(ctx context.Context, callID string) error {
	body := map[string]any{"language": "en", "transcription_engine": "A"}
	if err := g.post(ctx, "/calls/"+callID+"/actions/transcription_start", body, nil); err != nil {
		return fmt.Errorf("telnyx: transcription_start on %s: %w", callID, err)
	}
	return nil
}

func (g *TelnyxGateway) Hangup(ctx context.Context, callID string) error {
	if err := g.post(ctx, "/calls/"+callID+"/actions/hangup", map[string]any{}, nil); err != nil {
		return fmt.Errorf("telnyx: hangup %s: %w", callID, err)
	}
	return nil
}

func (g *TelnyxGateway) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(snippet))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
