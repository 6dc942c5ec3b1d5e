package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/smdiabate/wallet-ledger/internal/observability"
)

// ReconciliationService verifies ledger integrity: every wallet's
// balance must equal the net of its completed ledger entries.
type ReconciliationService struct {
	store QueryStore
}

func NewReconciliationService(store QueryStore) *ReconciliationService {
	return &ReconciliationService{store: store}
}

// Run reports every wallet whose balance diverged from its ledger net.
// Divergence is never repaired automatically; it means an invariant was
// broken and needs a human.
func (s *ReconciliationService) Run(ctx context.Context) error {
	imbalances, err := s.store.Queries().GetWalletImbalances(ctx)
	if err != nil {
		return fmt.Errorf("run wallet imbalance query: %w", err)
	}

	if len(imbalances) == 0 {
		zap.L().Info("wallet ledger consistent")
		return nil
	}

	for _, row := range imbalances {
		observability.IncrementWalletImbalance(row.Currency)
		zap.L().Error("CRITICAL: wallet balance diverged from ledger",
			zap.String("wallet_id", row.WalletID.String()),
			zap.String("user_id", row.UserID.String()),
			zap.String("currency", row.Currency),
			zap.String("balance", row.Balance.String()),
			zap.String("ledger_net", row.LedgerNet.String()),
		)
	}
	return nil
}
