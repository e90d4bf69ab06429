package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"quote-engine/pkg/database"
	"quote-engine/pkg/engine"
	"quote-engine/pkg/quote"
	"quote-engine/pkg/request"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// server exposes the quote mutation ingress and the reconciliation endpoint.
// The ingress is the change-capture boundary: every mutation writes the record
// and its outbox event in one transaction, and the relay takes it from there.
type server struct {
	db       *database.Client
	engine   *engine.Engine
	validate *validator.Validate
	log      *slog.Logger
}

func (s *server) registerRoutes(r *mux.Router) {
	r.HandleFunc("/api/ping", s.ping).Methods(http.MethodGet)
	r.HandleFunc("/api/requests", s.createRequest).Methods(http.MethodPost)
	r.HandleFunc("/api/requests/{requestId}/reconcile", s.reconcile).Methods(http.MethodPost)
	r.HandleFunc("/api/quotes", s.createQuote).Methods(http.MethodPost)
	r.HandleFunc("/api/quotes/{quoteId}/status", s.updateQuoteStatus).Methods(http.MethodPut)
	r.HandleFunc("/api/quotes/{quoteId}", s.deleteQuote).Methods(http.MethodDelete)
}

func (s *server) ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type createRequestPayload struct {
	ClientID string `json:"clientId" validate:"required,uuid"`
	Kind     string `json:"kind" validate:"omitempty,oneof=direct open"`
}

func (s *server) createRequest(w http.ResponseWriter, r *http.Request) {
	var p createRequestPayload
	if !s.decode(w, r, &p) {
		return
	}

	kind := request.Kind(p.Kind)
	if kind == "" {
		kind = request.KindOpen
	}
	req := &request.Request{
		ID:        uuid.New().String(),
		ClientID:  p.ClientID,
		Kind:      kind,
		Status:    request.StatusPublished,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.CreateRequest(r.Context(), req); err != nil {
		s.log.Error("failed to create request", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

type createQuotePayload struct {
	RequestID  string `json:"requestId" validate:"required,uuid"`
	ProviderID string `json:"providerId" validate:"required,uuid"`
	ClientID   string `json:"clientId" validate:"required,uuid"`
	Status     string `json:"status" validate:"omitempty,oneof=draft sent"`
	PriceCents int64  `json:"priceCents" validate:"gte=0"`
	Message    string `json:"message"`
}

func (s *server) createQuote(w http.ResponseWriter, r *http.Request) {
	var p createQuotePayload
	if !s.decode(w, r, &p) {
		return
	}

	status := quote.Status(p.Status)
	if status == "" {
		status = quote.StatusDraft
	}
	now := time.Now().UTC()
	q := &quote.Quote{
		ID:         uuid.New().String(),
		RequestID:  p.RequestID,
		ProviderID: p.ProviderID,
		ClientID:   p.ClientID,
		Status:     status,
		PriceCents: p.PriceCents,
		Message:    p.Message,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.CreateQuoteAndOutboxEvent(r.Context(), q); err != nil {
		if database.IsForeignKeyViolation(err) {
			errorJSON(w, http.StatusNotFound, "request not found")
			return
		}
		s.log.Error("failed to create quote", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

type updateQuoteStatusPayload struct {
	Status      string `json:"status" validate:"required,oneof=draft sent accepted refused"`
	RefusalKind string `json:"refusalKind" validate:"omitempty,oneof=terminal revision_requested provider_blocked variant_rejected"`
}

func (s *server) updateQuoteStatus(w http.ResponseWriter, r *http.Request) {
	quoteID := mux.Vars(r)["quoteId"]
	var p updateQuoteStatusPayload
	if !s.decode(w, r, &p) {
		return
	}
	if p.Status == string(quote.StatusRefused) && p.RefusalKind == "" {
		errorJSON(w, http.StatusBadRequest, "refusalKind is required when refusing a quote")
		return
	}

	_, after, err := s.db.UpdateQuoteStatusAndOutboxEvent(r.Context(), quoteID, quote.Status(p.Status), quote.RefusalKind(p.RefusalKind))
	if errors.Is(err, database.ErrQuoteNotFound) {
		errorJSON(w, http.StatusNotFound, "quote not found")
		return
	}
	if err != nil {
		s.log.Error("failed to update quote status", "quote_id", quoteID, "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, after)
}

func (s *server) deleteQuote(w http.ResponseWriter, r *http.Request) {
	quoteID := mux.Vars(r)["quoteId"]

	deleted, err := s.db.SoftDeleteQuoteAndOutboxEvent(r.Context(), quoteID)
	if errors.Is(err, database.ErrQuoteNotFound) {
		errorJSON(w, http.StatusNotFound, "quote not found")
		return
	}
	if err != nil {
		s.log.Error("failed to delete quote", "quote_id", quoteID, "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

func (s *server) reconcile(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["requestId"]

	res, err := s.engine.ReconcileQuoteCount(r.Context(), requestID)
	if errors.Is(err, engine.ErrRequestNotFound) {
		errorJSON(w, http.StatusNotFound, "request not found")
		return
	}
	if err != nil {
		s.log.Error("reconciliation failed", "request_id", requestID, "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decode unmarshals and validates a JSON body, replying 400 on failure.
func (s *server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func errorJSON(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, map[string]string{"reason": reason})
}
