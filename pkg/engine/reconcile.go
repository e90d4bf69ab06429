package engine

import (
	"context"
	"fmt"

	"quote-engine/pkg/observability"
)

// ReconcileResult reports what a reconciliation run found and changed.
type ReconcileResult struct {
	Old   int `json:"old"`
	New   int `json:"new"`
	Delta int `json:"delta"`
}

// ReconcileQuoteCount recomputes a request's true non-deleted quote count and
// overwrites the stored counter if it drifted. This is a maintenance
// operation: it fires no notifications and writes non-transactionally, so it
// is safe to call concurrently with live traffic. A legitimate increment that
// lands between the count query and the write shows up in the verification
// re-read, which logs a warning rather than looping.
func (e *Engine) ReconcileQuoteCount(ctx context.Context, requestID string) (ReconcileResult, error) {
	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return ReconcileResult{}, err
	}

	truth, err := e.store.CountActiveQuotes(ctx, requestID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("count quotes for request %s: %w", requestID, err)
	}

	res := ReconcileResult{Old: req.QuoteCount, New: truth, Delta: truth - req.QuoteCount}
	if res.Delta == 0 {
		observability.ReconciliationRuns.WithLabelValues("clean").Inc()
		return res, nil
	}

	if err := e.store.SetQuoteCount(ctx, requestID, truth); err != nil {
		return ReconcileResult{}, fmt.Errorf("write reconciled count for request %s: %w", requestID, err)
	}
	observability.ReconciliationRuns.WithLabelValues("corrected").Inc()
	e.log.Info("reconciled quote count", "request_id", requestID, "old", res.Old, "new", res.New)

	if fresh, err := e.store.CountActiveQuotes(ctx, requestID); err == nil {
		if check, err := e.store.GetRequest(ctx, requestID); err == nil && check.QuoteCount != fresh {
			e.log.Warn("quote count drifted again immediately after reconciliation",
				"request_id", requestID, "stored", check.QuoteCount, "actual", fresh)
		}
	}
	return res, nil
}
