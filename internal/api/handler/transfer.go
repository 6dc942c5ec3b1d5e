package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smdiabate/wallet-ledger/internal/service"
)

type TransferHandler struct {
	transfers *service.TransferService
	directory *service.DirectoryService
}

func NewTransferHandler(transfers *service.TransferService, directory *service.DirectoryService) *TransferHandler {
	return &TransferHandler{transfers: transfers, directory: directory}
}

type transferRequest struct {
	ToUserID    string         `json:"to_user_id"`
	Phone       string         `json:"phone"`
	Amount      string         `json:"amount"`
	Description string         `json:"description"`
	Notes       string         `json:"notes"`
	Reference   string         `json:"reference"`
	Metadata    map[string]any `json:"metadata"`
}

// Send moves money from the authenticated user to a recipient addressed
// by user id.
func (h *TransferHandler) Send(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	toUserID, err := uuid.Parse(req.ToUserID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-user-id", "Invalid to_user_id")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-amount", "Invalid amount")
		return
	}

	entry, err := h.transfers.Transfer(r.Context(), actorID, toUserID, amount, service.TransferMeta{
		Reference:   req.Reference,
		Description: req.Description,
		Notes:       req.Notes,
		Metadata:    req.Metadata,
	})
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("transfer failed",
			zap.Error(err),
			zap.String("from_user_id", actorID.String()),
			zap.String("to_user_id", toUserID.String()),
		)
		RespondError(w, r, http.StatusInternalServerError, "transfer/failed", "Transfer failed")
		return
	}

	RespondJSON(w, http.StatusCreated, entry)
}

// SendByPhone resolves the recipient through the phone directory first,
// then runs the same transfer path.
func (h *TransferHandler) SendByPhone(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	if req.Phone == "" {
		RespondError(w, r, http.StatusBadRequest, "request/missing-phone", "phone is required")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-amount", "Invalid amount")
		return
	}

	recipient, err := h.directory.FindUserByPhone(r.Context(), req.Phone)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("phone lookup failed", zap.Error(err))
		RespondError(w, r, http.StatusInternalServerError, "transfer/lookup-failed", "Failed to resolve recipient")
		return
	}

	entry, err := h.transfers.Transfer(r.Context(), actorID, recipient.ID, amount, service.TransferMeta{
		Reference:   req.Reference,
		Description: req.Description,
		Notes:       req.Notes,
		Metadata:    req.Metadata,
	})
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("transfer by phone failed",
			zap.Error(err),
			zap.String("from_user_id", actorID.String()),
			zap.String("to_user_id", recipient.ID.String()),
		)
		RespondError(w, r, http.StatusInternalServerError, "transfer/failed", "Transfer failed")
		return
	}

	RespondJSON(w, http.StatusCreated, map[string]any{
		"transaction": entry,
		"recipient":   recipient,
	})
}
