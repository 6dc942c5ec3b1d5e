package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smdiabate/wallet-ledger/internal/models"
	"github.com/smdiabate/wallet-ledger/internal/service"
)

type PaymentRequestHandler struct {
	requests *service.PaymentRequestService
}

func NewPaymentRequestHandler(requests *service.PaymentRequestService) *PaymentRequestHandler {
	return &PaymentRequestHandler{requests: requests}
}

// Create records a pending request for money from another user.
func (h *PaymentRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	var req struct {
		FromUserID  string         `json:"from_user_id"`
		Amount      string         `json:"amount"`
		Description string         `json:"description"`
		Notes       string         `json:"notes"`
		Metadata    map[string]any `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	debtorID, err := uuid.Parse(req.FromUserID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-user-id", "Invalid from_user_id")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-amount", "Invalid amount")
		return
	}

	entry, err := h.requests.Create(r.Context(), actorID, debtorID, amount, service.RequestMeta{
		Description: req.Description,
		Notes:       req.Notes,
		Metadata:    req.Metadata,
	})
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("create payment request failed",
			zap.Error(err),
			zap.String("requester_user_id", actorID.String()),
		)
		RespondError(w, r, http.StatusInternalServerError, "payment-request/create-failed", "Failed to create payment request")
		return
	}

	RespondJSON(w, http.StatusCreated, entry)
}

// Accept settles a pending request; only the debtor may call it.
func (h *PaymentRequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.requests.Accept, "accept payment request failed")
}

// Cancel voids a pending request; either party may call it.
func (h *PaymentRequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.requests.Cancel, "cancel payment request failed")
}

func (h *PaymentRequestHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, entryID, actingUserID uuid.UUID) (*models.LedgerEntry, error), logMsg string) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-id", "Invalid payment request id")
		return
	}

	entry, err := op(r.Context(), entryID, actorID)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error(logMsg,
			zap.Error(err),
			zap.String("entry_id", entryID.String()),
			zap.String("acting_user_id", actorID.String()),
		)
		RespondError(w, r, http.StatusInternalServerError, "payment-request/transition-failed", "Failed to update payment request")
		return
	}

	RespondJSON(w, http.StatusOK, entry)
}
