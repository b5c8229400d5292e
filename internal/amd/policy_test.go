package amd

import (
	"testing"

	"github.com/edsindustries1/my-outbound-dialer/internal/calls"
)

func TestDefaultPolicy_Decide(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		result calls.AMDResult
		want   Disposition
	}{
		{calls.AMDHuman, DispositionTransfer},
		{calls.AMDMachine, DispositionVoicemail},
		{calls.AMDNotSure, DispositionVoicemail},
		{calls.AMDTimeout, DispositionVoicemail},
		{calls.AMDFax, DispositionHangup},
		{calls.AMDResult("garbage"), DispositionHangup},
		{calls.AMDResult(""), DispositionHangup},
	}
	for _, tc := range cases {
		if got := p.Decide(tc.result); got != tc.want {
			t.Fatalf("Decide(%q) = %q, want %q", tc.result, got, tc.want)
		}
	}
}

func TestStrictPolicy_HangsUpOnIndeterminate(t *testing.T) {
	p := Policy{FallbackResult: calls.AMDHuman}

	if got := p.Decide(calls.AMDNotSure); got != DispositionHangup {
		t.Fatalf("not_sure under strict policy = %q, want hangup", got)
	}
	if got := p.Decide(calls.AMDTimeout); got != DispositionHangup {
		t.Fatalf("timeout under strict policy = %q, want hangup", got)
	}
	// Definite verdicts are unaffected by the folds.
	if got := p.Decide(calls.AMDHuman); got != DispositionTransfer {
		t.Fatalf("human = %q, want transfer", got)
	}
	if got := p.Decide(calls.AMDMachine); got != DispositionVoicemail {
		t.Fatalf("machine = %q, want voicemail", got)
	}
}
