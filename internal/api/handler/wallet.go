package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smdiabate/wallet-ledger/internal/service"
)

type WalletHandler struct {
	wallets *service.WalletService
	funding *service.FundingService
}

func NewWalletHandler(wallets *service.WalletService, funding *service.FundingService) *WalletHandler {
	return &WalletHandler{wallets: wallets, funding: funding}
}

type fundingRequest struct {
	Amount      string         `json:"amount"`
	Description string         `json:"description"`
	Reference   string         `json:"reference"`
	Metadata    map[string]any `json:"metadata"`
}

// GetBalance reports the authenticated user's balance. A user who never
// received money reads as zero rather than missing.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	balance, err := h.wallets.GetBalance(r.Context(), actorID)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("get balance failed", zap.Error(err), zap.String("user_id", actorID.String()))
		RespondError(w, r, http.StatusInternalServerError, "wallet/balance-read-failed", "Failed to get balance")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"user_id":  actorID,
		"balance":  balance,
		"currency": h.wallets.Currency(),
	})
}

func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	var req fundingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-amount", "Invalid amount")
		return
	}

	entry, err := h.funding.Deposit(r.Context(), actorID, amount, service.FundingMeta{
		Reference:   req.Reference,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("deposit failed", zap.Error(err), zap.String("user_id", actorID.String()))
		RespondError(w, r, http.StatusInternalServerError, "wallet/deposit-failed", "Failed to record deposit")
		return
	}

	RespondJSON(w, http.StatusCreated, entry)
}

func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	var req fundingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-amount", "Invalid amount")
		return
	}

	entry, err := h.funding.Withdraw(r.Context(), actorID, amount, service.FundingMeta{
		Reference:   req.Reference,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("withdrawal failed", zap.Error(err), zap.String("user_id", actorID.String()))
		RespondError(w, r, http.StatusInternalServerError, "wallet/withdrawal-failed", "Failed to record withdrawal")
		return
	}

	RespondJSON(w, http.StatusCreated, entry)
}
