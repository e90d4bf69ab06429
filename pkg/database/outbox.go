package database

import (
	"context"
	"encoding/json"
	"time"

	"quote-engine/pkg/quote"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OutboxEvent is a change event waiting to be published to the feed.
type OutboxEvent struct {
	ID        string
	EventType string
	QuoteID   string
	Payload   []byte
	CreatedAt time.Time
}

func insertOutboxEvent(ctx context.Context, tx pgx.Tx, evt *quote.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	quoteID := ""
	switch {
	case evt.Quote != nil:
		quoteID = evt.Quote.ID
	case evt.After != nil:
		quoteID = evt.After.ID
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO quote_outbox (id, event_type, quote_id, payload) VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), string(evt.Type), quoteID, payload)
	return err
}

// FetchOutboxEvents retrieves up to limit pending events ordered by creation
// time.
func (c *Client) FetchOutboxEvents(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT id, event_type, quote_id, payload, created_at FROM quote_outbox ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []OutboxEvent{}
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.EventType, &e.QuoteID, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteOutboxEvent removes an event after a successful publish. A crash
// between publish and delete replays the event, which the handlers tolerate.
func (c *Client) DeleteOutboxEvent(ctx context.Context, id string) error {
	_, err := c.pool.Exec(ctx, `DELETE FROM quote_outbox WHERE id = $1`, id)
	return err
}
