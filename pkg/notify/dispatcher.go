package notify

import (
	"context"
	"log/slog"
	"time"

	"quote-engine/pkg/observability"

	"github.com/google/uuid"
)

// Creator is the single store primitive the dispatcher needs.
type Creator interface {
	CreateNotification(ctx context.Context, n *Notification) error
}

type Dispatcher struct {
	store Creator
	log   *slog.Logger
}

func NewDispatcher(store Creator, log *slog.Logger) *Dispatcher {
	return &Dispatcher{store: store, log: log}
}

// Dispatch builds one notification intent and inserts it. Creation is
// best-effort: a failure is logged and swallowed so it can never roll back or
// retry the counter mutation that preceded it.
func (d *Dispatcher) Dispatch(ctx context.Context, recipientID string, kind Kind, p Payload) {
	title, body, link := build(kind, p)
	n := &Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Kind:        kind,
		Title:       title,
		Body:        body,
		DeepLink:    link,
		CreatedAt:   time.Now().UTC(),
	}
	if err := d.store.CreateNotification(ctx, n); err != nil {
		d.log.Error("failed to create notification", "kind", string(kind), "recipient_id", recipientID, "error", err)
		return
	}
	observability.NotificationsCreated.WithLabelValues(string(kind)).Inc()
}
