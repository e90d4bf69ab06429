package notify

import (
	"fmt"
	"time"
)

// Kind discriminates notification templates.
type Kind string

const (
	KindQuoteReceived          Kind = "quote_received"
	KindQuoteAccepted          Kind = "quote_accepted"
	KindQuoteRevisionRequested Kind = "quote_revision_requested"
	KindQuoteRefused           Kind = "quote_refused"
	KindQuotaWarning           Kind = "quota_warning"
	KindQuotaReached           Kind = "quota_reached"
)

// Notification is an intent record. Delivery (push, email, in-app) is handled
// by a downstream consumer; this engine only creates the record. Duplicate
// intents from redelivered trigger events are expected and tolerated.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipientId"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	DeepLink    string    `json:"deepLink"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Payload carries the variable parts a template can reference.
type Payload struct {
	RequestID   string
	QuoteID     string
	RefusalKind string
	Count       int
	QuotaMax    int
}

func build(kind Kind, p Payload) (title, body, link string) {
	quoteLink := "/requests/" + p.RequestID + "/quotes/" + p.QuoteID
	requestLink := "/requests/" + p.RequestID

	switch kind {
	case KindQuoteReceived:
		return "New quote received",
			"A provider sent a quote for your request. Open it to compare offers.",
			quoteLink
	case KindQuoteAccepted:
		return "Quote accepted",
			"The client accepted your quote. You got the job.",
			quoteLink
	case KindQuoteRevisionRequested:
		return "Revision requested",
			"The client asked for changes to your quote. Update it and send it again.",
			quoteLink
	case KindQuoteRefused:
		switch p.RefusalKind {
		case "provider_blocked":
			body = "The client declined your quote and closed the conversation."
		case "variant_rejected":
			body = "The client declined this variant of your quote."
		default:
			body = "The client declined your quote."
		}
		return "Quote declined", body, quoteLink
	case KindQuotaWarning:
		return "Your request is almost full",
			fmt.Sprintf("You received %d of %d quotes. The request closes automatically at %d.", p.Count, p.QuotaMax, p.QuotaMax),
			requestLink
	case KindQuotaReached:
		return "Quote limit reached",
			fmt.Sprintf("Your request reached the maximum of %d quotes and is now closed to new offers.", p.QuotaMax),
			requestLink
	}
	return "", "", ""
}
