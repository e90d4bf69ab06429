package quote

import "time"

type Status string
type RefusalKind string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

const (
	RefusalTerminal          RefusalKind = "terminal"
	RefusalRevisionRequested RefusalKind = "revision_requested"
	RefusalProviderBlocked   RefusalKind = "provider_blocked"
	RefusalVariantRejected   RefusalKind = "variant_rejected"
)

// Quote is a provider's offer against a request. A refused quote still counts
// toward the request's quota until it is deleted.
type Quote struct {
	ID          string      `json:"id"`
	RequestID   string      `json:"requestId"`
	ProviderID  string      `json:"providerId"`
	ClientID    string      `json:"clientId"`
	Status      Status      `json:"status"`
	RefusalKind RefusalKind `json:"refusalKind,omitempty"`
	PriceCents  int64       `json:"priceCents"`
	Message     string      `json:"message"`
	DeletedAt   *time.Time  `json:"deletedAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
