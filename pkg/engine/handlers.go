package engine

import (
	"context"
	"errors"
	"fmt"

	"quote-engine/pkg/notify"
	"quote-engine/pkg/observability"
	"quote-engine/pkg/quote"
	"quote-engine/pkg/request"
)

// HandleQuoteCreated increments the parent request's quote count and applies
// the quota signal. Direct requests are exempt from quotas and skip the
// counter entirely. A missing parent is logged and acked; only transient store
// failures propagate so the platform retries the delivery.
func (e *Engine) HandleQuoteCreated(ctx context.Context, q *quote.Quote) error {
	req, err := e.store.GetRequest(ctx, q.RequestID)
	if errors.Is(err, ErrRequestNotFound) {
		e.log.Warn("quote created for missing request, skipping", "quote_id", q.ID, "request_id", q.RequestID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch request %s: %w", q.RequestID, err)
	}
	if req.Kind == request.KindDirect {
		return nil
	}

	res, err := e.store.IncrementQuoteCount(ctx, q.RequestID, e.quotaMax)
	if errors.Is(err, ErrRequestNotFound) {
		e.log.Warn("request vanished before counter increment, skipping", "quote_id", q.ID, "request_id", q.RequestID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("increment quote count for request %s: %w", q.RequestID, err)
	}

	// The close decision comes from the same transaction that performed the
	// increment; res.Closed is true exactly once per quota crossing, so a
	// redelivered event or an over-quota straggler cannot re-close or
	// re-notify here.
	switch request.EvaluateQuota(res.NewCount, e.quotaMax, e.warnAt) {
	case request.SignalClose:
		if res.Closed {
			observability.QuotaClosures.Inc()
			e.log.Info("request reached quote quota, closed", "request_id", req.ID, "quote_count", res.NewCount)
			e.dispatcher.Dispatch(ctx, req.ClientID, notify.KindQuotaReached, notify.Payload{
				RequestID: req.ID,
				Count:     res.NewCount,
				QuotaMax:  e.quotaMax,
			})
		}
	case request.SignalWarn:
		e.dispatcher.Dispatch(ctx, req.ClientID, notify.KindQuotaWarning, notify.Payload{
			RequestID: req.ID,
			Count:     res.NewCount,
			QuotaMax:  e.quotaMax,
		})
	}
	return nil
}

// HandleQuoteDeleted is the compensating path for administrative quote
// removal: it decrements the counter (clamped at zero) and reopens a
// quota-closed request that dropped back below the max.
func (e *Engine) HandleQuoteDeleted(ctx context.Context, q *quote.Quote) error {
	req, err := e.store.GetRequest(ctx, q.RequestID)
	if errors.Is(err, ErrRequestNotFound) {
		e.log.Warn("quote deleted for missing request, skipping", "quote_id", q.ID, "request_id", q.RequestID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch request %s: %w", q.RequestID, err)
	}
	if req.Kind == request.KindDirect {
		return nil
	}

	res, err := e.store.DecrementQuoteCount(ctx, q.RequestID, e.quotaMax)
	if errors.Is(err, ErrRequestNotFound) {
		e.log.Warn("request vanished before counter decrement, skipping", "quote_id", q.ID, "request_id", q.RequestID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("decrement quote count for request %s: %w", q.RequestID, err)
	}

	if res.Clamped {
		// A decrement below zero means the counter was already wrong. Clamp,
		// record it, and keep going; failing the deletion would not fix the
		// count and would loop the delivery forever.
		observability.CounterClamps.Inc()
		e.log.Warn("quote count would go negative, clamped to zero", "request_id", req.ID, "quote_id", q.ID)
	}
	if res.Reopened {
		observability.RequestReopens.Inc()
		e.log.Info("request reopened after quote deletion", "request_id", req.ID, "quote_count", res.NewCount)
	}
	return nil
}

// HandleQuoteUpdated applies the transition table to a status change. Updates
// that do not move the status are no-ops.
func (e *Engine) HandleQuoteUpdated(ctx context.Context, before, after *quote.Quote) error {
	if before.Status == after.Status {
		return nil
	}
	eff := quote.EvaluateTransition(before.Status, after.Status, after.RefusalKind)
	if eff.Notify == "" && !eff.Award {
		return nil
	}

	req, err := e.store.GetRequest(ctx, after.RequestID)
	if errors.Is(err, ErrRequestNotFound) {
		e.log.Warn("quote updated for missing request, skipping", "quote_id", after.ID, "request_id", after.RequestID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch request %s: %w", after.RequestID, err)
	}

	if eff.Award {
		awarded, err := e.store.AwardRequest(ctx, req.ID, after.ProviderID)
		if err != nil {
			return fmt.Errorf("award request %s: %w", req.ID, err)
		}
		if awarded {
			e.log.Info("request awarded", "request_id", req.ID, "provider_id", after.ProviderID)
		} else {
			// Guard held: the request is already awarded or not in an
			// awardable status. Never overwrite an existing award.
			e.log.Info("award skipped, request not awardable", "request_id", req.ID, "status", string(req.Status))
		}
	}

	if eff.Notify != "" {
		recipient := req.ClientID
		if eff.Recipient == quote.RecipientProvider {
			recipient = after.ProviderID
		}
		e.dispatcher.Dispatch(ctx, recipient, eff.Notify, notify.Payload{
			RequestID:   req.ID,
			QuoteID:     after.ID,
			RefusalKind: string(after.RefusalKind),
		})
	}
	return nil
}
