package reporting

import (
	"context"
	"errors"

	"github.com/edsindustries1/my-outbound-dialer/internal/amd"
	"github.com/edsindustries1/my-outbound-dialer/internal/calls"
	"github.com/edsindustries1/my-outbound-dialer/internal/history"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Service aggregates campaign outcomes from the immutable historical sink.
// It only ever reads; the sink is the source of truth for finished calls.
// Verdict buckets follow the same AMD policy the orchestrator dials with,
// so a verdict the policy folds into voicemail counts as a machine answer
// and one it hangs up on does not.
type Service struct {
	repo   history.Repository
	policy amd.Policy
}

func NewService(repo history.Repository, policy amd.Policy) *Service {
	return &Service{repo: repo, policy: policy}
}

func (s *Service) CampaignSummary(ctx context.Context, req CampaignSummaryRequest) (CampaignSummary, error) {
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return CampaignSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return CampaignSummary{}, errors.New("reporting: repository not configured")
	}

	records, err := s.repo.List(ctx, req.CampaignID, req.Range.From, req.Range.To)
	if err != nil {
		return CampaignSummary{}, err
	}

	out := CampaignSummary{CampaignID: req.CampaignID}
	for _, r := range records {
		out.TotalCalls++
		out.TotalDurationSeconds += r.DurationSeconds
		if r.Transcript != "" {
			out.Transcribed++
		}

		if r.Role == string(calls.RoleTransferLeg) {
			out.TransferLegs++
			if r.AnsweredAt != nil {
				out.TransfersConnected++
			}
			continue
		}
		out.PrimaryCalls++

		switch {
		case r.AMDResult == "":
			switch calls.CallState(r.FinalState) {
			case calls.CallStateFailed:
				out.Failed++
			default:
				out.NoAnswer++
			}
		default:
			switch s.policy.Decide(calls.AMDResult(r.AMDResult)) {
			case amd.DispositionTransfer:
				out.HumanAnswers++
			case amd.DispositionVoicemail:
				out.MachineAnswers++
			default:
				// Verdicts the policy hangs up on (fax, unfolded not_sure or
				// timeout) were answered but acted on by nobody.
				out.NoAnswer++
			}
		}
		if r.HangupCause == calls.CauseVoicemailDelivered {
			out.VoicemailsDelivered++
		}
	}

	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	if out.PrimaryCalls > 0 {
		out.HumanRate = float64(out.HumanAnswers) / float64(out.PrimaryCalls)
		out.DeliveryRate = float64(out.VoicemailsDelivered) / float64(out.PrimaryCalls)
	}
	return out, nil
}
