package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

type fakeCreator struct {
	created []*Notification
	err     error
}

func (f *fakeCreator) CreateNotification(_ context.Context, n *Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, n)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatchBuildsIntent(t *testing.T) {
	store := &fakeCreator{}
	d := NewDispatcher(store, testLogger())

	d.Dispatch(context.Background(), "client-1", KindQuotaWarning, Payload{
		RequestID: "req-1",
		Count:     8,
		QuotaMax:  10,
	})

	if len(store.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(store.created))
	}
	n := store.created[0]
	if n.ID == "" {
		t.Error("notification id is empty")
	}
	if n.RecipientID != "client-1" {
		t.Errorf("recipient = %q, want client-1", n.RecipientID)
	}
	if n.Kind != KindQuotaWarning {
		t.Errorf("kind = %q, want %q", n.Kind, KindQuotaWarning)
	}
	if !strings.Contains(n.Body, "8 of 10") {
		t.Errorf("body %q should carry the count and the max", n.Body)
	}
	if n.Read {
		t.Error("notification should start unread")
	}
	if n.DeepLink != "/requests/req-1" {
		t.Errorf("deep link = %q, want /requests/req-1", n.DeepLink)
	}
	if n.CreatedAt.IsZero() {
		t.Error("created_at is zero")
	}
}

func TestDispatchTemplates(t *testing.T) {
	cases := []struct {
		kind     Kind
		payload  Payload
		wantBody string
		wantLink string
	}{
		{KindQuoteReceived, Payload{RequestID: "r", QuoteID: "q"}, "sent a quote", "/requests/r/quotes/q"},
		{KindQuoteAccepted, Payload{RequestID: "r", QuoteID: "q"}, "accepted your quote", "/requests/r/quotes/q"},
		{KindQuoteRevisionRequested, Payload{RequestID: "r", QuoteID: "q"}, "asked for changes", "/requests/r/quotes/q"},
		{KindQuoteRefused, Payload{RequestID: "r", QuoteID: "q", RefusalKind: "terminal"}, "declined your quote", "/requests/r/quotes/q"},
		{KindQuoteRefused, Payload{RequestID: "r", QuoteID: "q", RefusalKind: "provider_blocked"}, "closed the conversation", "/requests/r/quotes/q"},
		{KindQuoteRefused, Payload{RequestID: "r", QuoteID: "q", RefusalKind: "variant_rejected"}, "declined this variant", "/requests/r/quotes/q"},
		{KindQuotaReached, Payload{RequestID: "r", QuotaMax: 10}, "maximum of 10 quotes", "/requests/r"},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind)+"/"+tc.payload.RefusalKind, func(t *testing.T) {
			store := &fakeCreator{}
			d := NewDispatcher(store, testLogger())
			d.Dispatch(context.Background(), "u", tc.kind, tc.payload)

			if len(store.created) != 1 {
				t.Fatalf("created %d notifications, want 1", len(store.created))
			}
			n := store.created[0]
			if n.Title == "" {
				t.Error("title is empty")
			}
			if !strings.Contains(n.Body, tc.wantBody) {
				t.Errorf("body %q should contain %q", n.Body, tc.wantBody)
			}
			if n.DeepLink != tc.wantLink {
				t.Errorf("deep link = %q, want %q", n.DeepLink, tc.wantLink)
			}
		})
	}
}

func TestDispatchSwallowsStoreFailure(t *testing.T) {
	store := &fakeCreator{err: errors.New("insert failed")}
	d := NewDispatcher(store, testLogger())

	// Must not panic or propagate: notification creation is best-effort.
	d.Dispatch(context.Background(), "client-1", KindQuotaReached, Payload{RequestID: "r", QuotaMax: 10})

	if len(store.created) != 0 {
		t.Fatalf("created %d notifications, want 0", len(store.created))
	}
}
