package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smdiabate/wallet-ledger/internal/repository"
)

func TestReconciliationRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	store := repository.NewStore(db)
	queries := repository.New(db)
	funding := newFundingService(store)
	transfers := NewTransferService(store)
	reconcile := NewReconciliationService(store)

	// Build state purely through the ledger so balances and entries agree.
	aminata := seedUserWithoutWallet(t, db, "rec-a")
	moussa := seedUserWithoutWallet(t, db, "rec-b")

	_, err := funding.Deposit(ctx, aminata.ID, decimal.NewFromInt(1000), FundingMeta{})
	require.NoError(t, err)
	_, err = funding.Deposit(ctx, moussa.ID, decimal.NewFromInt(500), FundingMeta{})
	require.NoError(t, err)
	_, err = transfers.Transfer(ctx, aminata.ID, moussa.ID, decimal.NewFromInt(250), TransferMeta{})
	require.NoError(t, err)
	_, err = funding.Withdraw(ctx, moussa.ID, decimal.NewFromInt(100), FundingMeta{})
	require.NoError(t, err)

	require.NoError(t, reconcile.Run(ctx))
	imbalances, err := queries.GetWalletImbalances(ctx)
	require.NoError(t, err)
	assert.Empty(t, imbalances)

	// Corrupt a balance behind the ledger's back.
	_, err = db.Exec(ctx, "UPDATE wallets SET balance = balance + 1 WHERE user_id = $1", aminata.ID)
	require.NoError(t, err)

	require.NoError(t, reconcile.Run(ctx))
	imbalances, err = queries.GetWalletImbalances(ctx)
	require.NoError(t, err)
	require.Len(t, imbalances, 1)
	assert.Equal(t, aminata.ID, imbalances[0].UserID)
	assert.True(t, imbalances[0].Balance.Sub(imbalances[0].LedgerNet).Equal(decimal.NewFromInt(1)))
}
