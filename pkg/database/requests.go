package database

import (
	"context"
	"database/sql"
	"errors"

	"quote-engine/pkg/engine"
	"quote-engine/pkg/request"

	"github.com/jackc/pgx/v5"
)

func (c *Client) CreateRequest(ctx context.Context, r *request.Request) error {
	query := `INSERT INTO request (id, client_id, kind, status, quote_count, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := c.pool.Exec(ctx, query, r.ID, r.ClientID, r.Kind, r.Status, r.QuoteCount, r.CreatedAt)
	return err
}

func (c *Client) GetRequest(ctx context.Context, id string) (*request.Request, error) {
	r := &request.Request{}
	var awardedProvider sql.NullString
	query := `SELECT id, client_id, kind, status, quote_count, awarded_provider_id, closed_at, created_at
	          FROM request WHERE id = $1`
	err := c.pool.QueryRow(ctx, query, id).Scan(
		&r.ID, &r.ClientID, &r.Kind, &r.Status, &r.QuoteCount,
		&awardedProvider, &r.ClosedAt, &r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, engine.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if awardedProvider.Valid {
		r.AwardedProviderID = awardedProvider.String
	}
	return r, nil
}

// IncrementQuoteCount adds one to the request's counter inside a row-locked
// transaction. When the new count reaches quotaMax while the request is still
// open, the same transaction flips it to quota_reached and stamps closed_at,
// so two providers racing for the last slot can never both observe an open
// request at quotaMax-1 and both leave it open.
func (c *Client) IncrementQuoteCount(ctx context.Context, requestID string, quotaMax int) (engine.IncrementResult, error) {
	var res engine.IncrementResult
	err := c.WithTx(ctx, func(tx pgx.Tx) error {
		res = engine.IncrementResult{}
		var status request.Status
		var count int
		err := tx.QueryRow(ctx, `SELECT status, quote_count FROM request WHERE id = $1 FOR UPDATE`, requestID).
			Scan(&status, &count)
		if errors.Is(err, pgx.ErrNoRows) {
			return engine.ErrRequestNotFound
		}
		if err != nil {
			return err
		}

		count++
		res.NewCount = count
		if count >= quotaMax && status != request.StatusQuotaReached && status != request.StatusAwarded {
			res.Closed = true
			_, err = tx.Exec(ctx,
				`UPDATE request SET quote_count = $2, status = $3, closed_at = NOW() WHERE id = $1`,
				requestID, count, request.StatusQuotaReached)
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE request SET quote_count = $2 WHERE id = $1`, requestID, count)
		return err
	})
	if err != nil {
		return engine.IncrementResult{}, err
	}
	return res, nil
}

// DecrementQuoteCount subtracts one from the counter, clamped at zero, and
// reopens a quota_reached request that dropped back below the max.
func (c *Client) DecrementQuoteCount(ctx context.Context, requestID string, quotaMax int) (engine.DecrementResult, error) {
	var res engine.DecrementResult
	err := c.WithTx(ctx, func(tx pgx.Tx) error {
		res = engine.DecrementResult{}
		var status request.Status
		var count int
		err := tx.QueryRow(ctx, `SELECT status, quote_count FROM request WHERE id = $1 FOR UPDATE`, requestID).
			Scan(&status, &count)
		if errors.Is(err, pgx.ErrNoRows) {
			return engine.ErrRequestNotFound
		}
		if err != nil {
			return err
		}

		count--
		if count < 0 {
			count = 0
			res.Clamped = true
		}
		res.NewCount = count
		if request.ShouldReopen(status, count, quotaMax) {
			res.Reopened = true
			_, err = tx.Exec(ctx,
				`UPDATE request SET quote_count = $2, status = $3, closed_at = NULL WHERE id = $1`,
				requestID, count, request.StatusPublished)
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE request SET quote_count = $2 WHERE id = $1`, requestID, count)
		return err
	})
	if err != nil {
		return engine.DecrementResult{}, err
	}
	return res, nil
}

// AwardRequest marks the request awarded, guarded so it only applies while the
// request is in an awardable status. Returns false if the guard held, which
// includes the request already being awarded to someone else.
func (c *Client) AwardRequest(ctx context.Context, requestID, providerID string) (bool, error) {
	ct, err := c.pool.Exec(ctx,
		`UPDATE request SET status = $3, awarded_provider_id = $2
		 WHERE id = $1 AND status IN ('published', 'matched', 'quota_reached')`,
		requestID, providerID, request.StatusAwarded)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// SetQuoteCount overwrites the stored counter. Reconciliation only; the live
// paths always go through the increment/decrement transactions.
func (c *Client) SetQuoteCount(ctx context.Context, requestID string, count int) error {
	ct, err := c.pool.Exec(ctx, `UPDATE request SET quote_count = $2 WHERE id = $1`, requestID, count)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return engine.ErrRequestNotFound
	}
	return nil
}
