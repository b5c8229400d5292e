package amd

import "github.com/edsindustries1/my-outbound-dialer/internal/calls"

// Disposition is the provider-agnostic output of AMD classification.
//
// It carries *only* what the orchestrator needs to act; no vendor fields
// belong here.

type Disposition string

const (
	// DispositionTransfer bridges the answered human to the transfer number.
	DispositionTransfer Disposition = "transfer"
	// DispositionVoicemail drops the pre-recorded message on the machine.
	DispositionVoicemail Disposition = "voicemail"
	// DispositionHangup ends the call without further action.
	DispositionHangup Disposition = "hangup"
)

// Policy maps AMD verdicts to dispositions.
//
// The default mirrors observed production behavior: every machine-classified
// answer gets the voicemail drop, and the indeterminate verdicts (not_sure,
// timeout) are folded into machine so no answered call is left silent. Both
// folds are configurable because the right choice depends on how aggressive
// the campaign is allowed to be.
type Policy struct {
	// TreatNotSureAsMachine folds AMD "not_sure" into the voicemail drop.
	TreatNotSureAsMachine bool
	// TreatTimeoutAsMachine folds AMD "timeout" into the voicemail drop.
	TreatTimeoutAsMachine bool
	// FallbackResult is the synthetic verdict injected when the vendor never
	// delivers an AMD event after answer (see the orchestrator's fallback
	// timer). The field exists here so the whole AMD policy lives in one place.
	FallbackResult calls.AMDResult
}

// DefaultPolicy returns the production default.
func DefaultPolicy() Policy {
	return Policy{
		TreatNotSureAsMachine: true,
		TreatTimeoutAsMachine: true,
		FallbackResult:        calls.AMDHuman,
	}
}

// Decide maps an AMD verdict to its disposition under this policy.
func (p Policy) Decide(result calls.AMDResult) Disposition {
	switch result {
	case calls.AMDHuman:
		return DispositionTransfer
	case calls.AMDMachine:
		return DispositionVoicemail
	case calls.AMDNotSure:
		if p.TreatNotSureAsMachine {
			return DispositionVoicemail
		}
		return DispositionHangup
	case calls.AMDTimeout:
		if p.TreatTimeoutAsMachine {
			return DispositionVoicemail
		}
		return DispositionHangup
	case calls.AMDFax:
		return DispositionHangup
	default:
		// Unknown verdicts end the call rather than guessing.
		return DispositionHangup
	}
}
