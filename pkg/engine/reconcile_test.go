package engine

import (
	"context"
	"errors"
	"testing"

	"quote-engine/pkg/request"
)

func TestReconcileCorrectsDrift(t *testing.T) {
	store := newMemStore()
	store.addRequest(&request.Request{ID: "req-1", ClientID: "client-1", Kind: request.KindOpen, Status: request.StatusPublished, QuoteCount: 5})
	store.trueCounts["req-1"] = 3
	eng := newTestEngine(store)

	res, err := eng.ReconcileQuoteCount(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("ReconcileQuoteCount: %v", err)
	}
	if res.Old != 5 || res.New != 3 || res.Delta != -2 {
		t.Errorf("result = %+v, want {Old:5 New:3 Delta:-2}", res)
	}
	if r := store.request("req-1"); r.QuoteCount != 3 {
		t.Errorf("stored count = %d, want 3", r.QuoteCount)
	}
	// Maintenance only: no business notifications.
	if len(store.notifications) != 0 {
		t.Errorf("got %d notifications, want 0", len(store.notifications))
	}
}

func TestReconcileCleanRun(t *testing.T) {
	store := newMemStore()
	store.addRequest(&request.Request{ID: "req-1", ClientID: "client-1", Kind: request.KindOpen, Status: request.StatusPublished, QuoteCount: 4})
	store.trueCounts["req-1"] = 4
	eng := newTestEngine(store)

	res, err := eng.ReconcileQuoteCount(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("ReconcileQuoteCount: %v", err)
	}
	if res.Delta != 0 {
		t.Errorf("delta = %d, want 0", res.Delta)
	}
	if r := store.request("req-1"); r.QuoteCount != 4 {
		t.Errorf("stored count = %d, want 4 (untouched)", r.QuoteCount)
	}
}

func TestReconcileMissingRequest(t *testing.T) {
	store := newMemStore()
	eng := newTestEngine(store)

	_, err := eng.ReconcileQuoteCount(context.Background(), "gone")
	if !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("err = %v, want ErrRequestNotFound", err)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	store := newMemStore()
	store.addRequest(&request.Request{ID: "req-1", ClientID: "client-1", Kind: request.KindOpen, Status: request.StatusPublished, QuoteCount: 9})
	store.trueCounts["req-1"] = 2
	eng := newTestEngine(store)

	if _, err := eng.ReconcileQuoteCount(context.Background(), "req-1"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	res, err := eng.ReconcileQuoteCount(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Old != 2 || res.New != 2 || res.Delta != 0 {
		t.Errorf("second run = %+v, want {Old:2 New:2 Delta:0}", res)
	}
}
