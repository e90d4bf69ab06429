// Package engine reacts to quote mutations: it keeps every request's quote
// count exactly consistent under concurrent writers, closes requests when the
// quota is reached, drives the quote transition table, and creates
// notification intents. Handlers are invoked with at-least-once, unordered
// delivery; every counter mutation runs through the store's transactional
// read-modify-write so replays and races cannot lose or double-count quotes.
package engine

import (
	"context"
	"errors"
	"log/slog"

	"quote-engine/pkg/notify"
	"quote-engine/pkg/request"
)

// ErrRequestNotFound marks a missing parent request. Handlers treat it as
// non-retryable: they log and report success so the delivery is acked instead
// of poisoning the queue.
var ErrRequestNotFound = errors.New("request not found")

// IncrementResult is the outcome of one transactional counter increment.
type IncrementResult struct {
	NewCount int
	// Closed is true only when this transaction performed the quota_reached
	// transition. A replay or an over-quota straggler sees Closed=false.
	Closed bool
}

// DecrementResult is the outcome of one transactional counter decrement.
type DecrementResult struct {
	NewCount int
	Reopened bool
	Clamped  bool
}

// Store is the transactional surface the engine mutates. The request's
// counter and status fields are the only shared mutable state in the
// subsystem; every writer funnels through these methods and no caller may
// cache the counter outside the store.
type Store interface {
	GetRequest(ctx context.Context, id string) (*request.Request, error)
	IncrementQuoteCount(ctx context.Context, requestID string, quotaMax int) (IncrementResult, error)
	DecrementQuoteCount(ctx context.Context, requestID string, quotaMax int) (DecrementResult, error)
	AwardRequest(ctx context.Context, requestID, providerID string) (bool, error)
	CountActiveQuotes(ctx context.Context, requestID string) (int, error)
	SetQuoteCount(ctx context.Context, requestID string, count int) error
}

type Engine struct {
	store      Store
	dispatcher *notify.Dispatcher
	quotaMax   int
	warnAt     int
	log        *slog.Logger
}

func New(store Store, dispatcher *notify.Dispatcher, quotaMax, warnThreshold int, log *slog.Logger) *Engine {
	if quotaMax <= 0 {
		quotaMax = request.DefaultQuotaMax
	}
	if warnThreshold <= 0 {
		warnThreshold = request.DefaultWarnThreshold
	}
	return &Engine{
		store:      store,
		dispatcher: dispatcher,
		quotaMax:   quotaMax,
		warnAt:     warnThreshold,
		log:        log,
	}
}
