package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/smdiabate/wallet-ledger/internal/models"
	"github.com/smdiabate/wallet-ledger/internal/repository"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryService is the read side over committed ledger entries.
type HistoryService struct {
	store   QueryStore
	wallets *WalletService
}

func NewHistoryService(store QueryStore, wallets *WalletService) *HistoryService {
	return &HistoryService{store: store, wallets: wallets}
}

// History returns the user's entries newest first. Pending requests are
// included; only committed writes are visible.
func (s *HistoryService) History(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]models.LedgerEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.store.Queries().ListLedgerEntriesByUser(ctx, repository.ListLedgerEntriesByUserParams{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, wrapStoreErr(fmt.Errorf("list ledger entries: %w", err))
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	return entries, nil
}

// Stats aggregates the user's completed entries together with the
// current balance.
func (s *HistoryService) Stats(ctx context.Context, userID uuid.UUID) (*models.WalletStats, error) {
	balance, err := s.wallets.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	row, err := s.store.Queries().GetUserLedgerStats(ctx, userID)
	if err != nil {
		return nil, wrapStoreErr(fmt.Errorf("aggregate ledger stats: %w", err))
	}
	return &models.WalletStats{
		Balance:          balance,
		TotalSent:        row.TotalSent,
		TotalReceived:    row.TotalReceived,
		TransactionCount: row.TransactionCount,
	}, nil
}
