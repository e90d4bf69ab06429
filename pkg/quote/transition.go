package quote

import "quote-engine/pkg/notify"

// Recipient selects who a transition notification is addressed to.
type Recipient string

const (
	RecipientClient   Recipient = "client"
	RecipientProvider Recipient = "provider"
)

// TransitionEffect is the outcome of a quote status change: at most one
// notification and at most one request-side side effect.
type TransitionEffect struct {
	Notify    notify.Kind
	Recipient Recipient
	Award     bool
}

// EvaluateTransition maps a (previous status, new status, refusal kind) triple
// to its effect. Transitions outside the table produce a zero effect, as does
// an update that did not change the status at all.
func EvaluateTransition(prev, next Status, refusal RefusalKind) TransitionEffect {
	if prev == next {
		return TransitionEffect{}
	}
	switch {
	case prev == StatusDraft && next == StatusSent:
		return TransitionEffect{Notify: notify.KindQuoteReceived, Recipient: RecipientClient}
	case next == StatusAccepted:
		return TransitionEffect{Notify: notify.KindQuoteAccepted, Recipient: RecipientProvider, Award: true}
	case next == StatusRefused && refusal == RefusalRevisionRequested:
		return TransitionEffect{Notify: notify.KindQuoteRevisionRequested, Recipient: RecipientProvider}
	case next == StatusRefused:
		return TransitionEffect{Notify: notify.KindQuoteRefused, Recipient: RecipientProvider}
	}
	return TransitionEffect{}
}
