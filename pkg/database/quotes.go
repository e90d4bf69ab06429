package database

import (
	"context"
	"database/sql"
	"errors"

	"quote-engine/pkg/quote"

	"github.com/jackc/pgx/v5"
)

const quoteColumns = `id, request_id, provider_id, client_id, status, refusal_kind, price_cents, message, deleted_at, created_at, updated_at`

func scanQuote(row pgx.Row) (*quote.Quote, error) {
	q := &quote.Quote{}
	var refusal sql.NullString
	err := row.Scan(
		&q.ID, &q.RequestID, &q.ProviderID, &q.ClientID, &q.Status,
		&refusal, &q.PriceCents, &q.Message, &q.DeletedAt, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if refusal.Valid {
		q.RefusalKind = quote.RefusalKind(refusal.String)
	}
	return q, nil
}

func (c *Client) GetQuote(ctx context.Context, id string) (*quote.Quote, error) {
	q, err := scanQuote(c.pool.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quote WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuoteNotFound
	}
	return q, err
}

// CountActiveQuotes returns the true non-deleted quote cardinality for a
// request, straight from the quote table.
func (c *Client) CountActiveQuotes(ctx context.Context, requestID string) (int, error) {
	var count int
	err := c.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quote WHERE request_id = $1 AND deleted_at IS NULL`, requestID).
		Scan(&count)
	return count, err
}

// CreateQuoteAndOutboxEvent inserts the quote and its quote.created change
// event in a single transaction, so a committed quote always has an event on
// the way to the feed and a failed insert leaves neither behind.
func (c *Client) CreateQuoteAndOutboxEvent(ctx context.Context, q *quote.Quote) error {
	return c.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO quote (`+quoteColumns+`) VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::quote_refusal, $7, $8, $9, $10, $11)`,
			q.ID, q.RequestID, q.ProviderID, q.ClientID, q.Status,
			string(q.RefusalKind), q.PriceCents, q.Message, q.DeletedAt, q.CreatedAt, q.UpdatedAt)
		if err != nil {
			return err
		}
		return insertOutboxEvent(ctx, tx, &quote.Event{Type: quote.EventCreated, Quote: q})
	})
}

// UpdateQuoteStatusAndOutboxEvent moves a quote to a new status and records a
// quote.updated event carrying both sides of the change. Returns the before
// and after images.
func (c *Client) UpdateQuoteStatusAndOutboxEvent(ctx context.Context, quoteID string, status quote.Status, refusal quote.RefusalKind) (*quote.Quote, *quote.Quote, error) {
	var before, after *quote.Quote
	err := c.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		before, err = scanQuote(tx.QueryRow(ctx,
			`SELECT `+quoteColumns+` FROM quote WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, quoteID))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrQuoteNotFound
		}
		if err != nil {
			return err
		}

		after, err = scanQuote(tx.QueryRow(ctx,
			`UPDATE quote SET status = $2, refusal_kind = NULLIF($3, '')::quote_refusal, updated_at = NOW()
			 WHERE id = $1 RETURNING `+quoteColumns, quoteID, status, string(refusal)))
		if err != nil {
			return err
		}
		return insertOutboxEvent(ctx, tx, &quote.Event{Type: quote.EventUpdated, Before: before, After: after})
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// SoftDeleteQuoteAndOutboxEvent stamps deleted_at and records a quote.deleted
// event. Deleting an already-deleted quote returns ErrQuoteNotFound, which
// keeps the compensating decrement from running twice.
func (c *Client) SoftDeleteQuoteAndOutboxEvent(ctx context.Context, quoteID string) (*quote.Quote, error) {
	var deleted *quote.Quote
	err := c.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		deleted, err = scanQuote(tx.QueryRow(ctx,
			`UPDATE quote SET deleted_at = NOW(), updated_at = NOW()
			 WHERE id = $1 AND deleted_at IS NULL RETURNING `+quoteColumns, quoteID))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrQuoteNotFound
		}
		if err != nil {
			return err
		}
		return insertOutboxEvent(ctx, tx, &quote.Event{Type: quote.EventDeleted, Quote: deleted})
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
