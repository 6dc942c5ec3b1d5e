package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/smdiabate/wallet-ledger/internal/service"
)

type HistoryHandler struct {
	history *service.HistoryService
}

func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List returns the authenticated user's transactions newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.history.History(r.Context(), actorID, int32(limit), int32(offset))
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("list transactions failed", zap.Error(err), zap.String("user_id", actorID.String()))
		RespondError(w, r, http.StatusInternalServerError, "history/list-failed", "Failed to list transactions")
		return
	}

	RespondJSON(w, http.StatusOK, entries)
}

// Stats returns balance plus aggregates over completed money movements.
func (h *HistoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	stats, err := h.history.Stats(r.Context(), actorID)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("stats failed", zap.Error(err), zap.String("user_id", actorID.String()))
		RespondError(w, r, http.StatusInternalServerError, "history/stats-failed", "Failed to compute stats")
		return
	}

	RespondJSON(w, http.StatusOK, stats)
}
