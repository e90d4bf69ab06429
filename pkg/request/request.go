package request

import "time"

type Kind string
type Status string

const (
	// KindDirect requests target a single provider and carry no quota semantics.
	KindDirect Kind = "direct"
	// KindOpen requests are broadcast to providers and quota-limited.
	KindOpen Kind = "open"
)

const (
	StatusDraft        Status = "draft"
	StatusPublished    Status = "published"
	StatusMatched      Status = "matched"
	StatusQuotaReached Status = "quota_reached"
	StatusAwarded      Status = "awarded"
)

type Request struct {
	ID                string     `json:"id"`
	ClientID          string     `json:"clientId"`
	Kind              Kind       `json:"kind"`
	Status            Status     `json:"status"`
	QuoteCount        int        `json:"quoteCount"`
	AwardedProviderID string     `json:"awardedProviderId,omitempty"`
	ClosedAt          *time.Time `json:"closedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Awardable reports whether accepting a quote may transition the request to
// awarded. A request that is already awarded keeps its original provider.
func (s Status) Awardable() bool {
	switch s {
	case StatusPublished, StatusMatched, StatusQuotaReached:
		return true
	}
	return false
}
