package quote

type EventType string

const (
	EventCreated EventType = "quote.created"
	EventDeleted EventType = "quote.deleted"
	EventUpdated EventType = "quote.updated"
)

// Event is the change-feed payload for a quote mutation. Created and deleted
// events carry the quote itself; updated events carry both sides of the change.
type Event struct {
	Type   EventType `json:"type"`
	Quote  *Quote    `json:"quote,omitempty"`
	Before *Quote    `json:"before,omitempty"`
	After  *Quote    `json:"after,omitempty"`
}

// EventTypes lists every event kind the feed can carry, in topology order.
func EventTypes() []EventType {
	return []EventType{EventCreated, EventDeleted, EventUpdated}
}
