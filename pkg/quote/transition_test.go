package quote

import (
	"testing"

	"quote-engine/pkg/notify"
)

func TestEvaluateTransition(t *testing.T) {
	cases := []struct {
		name          string
		prev, next    Status
		refusal       RefusalKind
		wantNotify    notify.Kind
		wantRecipient Recipient
		wantAward     bool
	}{
		{"draft to sent notifies client", StatusDraft, StatusSent, "", notify.KindQuoteReceived, RecipientClient, false},
		{"sent to accepted awards", StatusSent, StatusAccepted, "", notify.KindQuoteAccepted, RecipientProvider, true},
		{"draft to accepted awards", StatusDraft, StatusAccepted, "", notify.KindQuoteAccepted, RecipientProvider, true},
		{"refused with revision requested", StatusSent, StatusRefused, RefusalRevisionRequested, notify.KindQuoteRevisionRequested, RecipientProvider, false},
		{"refused terminal", StatusSent, StatusRefused, RefusalTerminal, notify.KindQuoteRefused, RecipientProvider, false},
		{"refused provider blocked", StatusSent, StatusRefused, RefusalProviderBlocked, notify.KindQuoteRefused, RecipientProvider, false},
		{"refused variant rejected", StatusDraft, StatusRefused, RefusalVariantRejected, notify.KindQuoteRefused, RecipientProvider, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eff := EvaluateTransition(tc.prev, tc.next, tc.refusal)
			if eff.Notify != tc.wantNotify {
				t.Errorf("notify = %q, want %q", eff.Notify, tc.wantNotify)
			}
			if eff.Recipient != tc.wantRecipient {
				t.Errorf("recipient = %q, want %q", eff.Recipient, tc.wantRecipient)
			}
			if eff.Award != tc.wantAward {
				t.Errorf("award = %v, want %v", eff.Award, tc.wantAward)
			}
		})
	}
}

func TestEvaluateTransitionOutsideTable(t *testing.T) {
	cases := []struct {
		name       string
		prev, next Status
	}{
		{"unchanged status", StatusSent, StatusSent},
		{"sent back to draft", StatusSent, StatusDraft},
		{"accepted back to sent", StatusAccepted, StatusSent},
		{"refused back to sent", StatusRefused, StatusSent},
		{"refused to draft", StatusRefused, StatusDraft},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eff := EvaluateTransition(tc.prev, tc.next, "")
			if eff != (TransitionEffect{}) {
				t.Errorf("EvaluateTransition(%s, %s) = %+v, want zero effect", tc.prev, tc.next, eff)
			}
		})
	}
}
