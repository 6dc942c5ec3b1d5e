package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smdiabate/wallet-ledger/internal/repository"
)

func TestHistoryOrderingAndPaging(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	store := repository.NewStore(db)
	transfers := NewTransferService(store)
	history := NewHistoryService(store, NewWalletService(store, "XOF"))

	aminata := seedUser(t, db, "aminata", decimal.NewFromInt(10000))
	moussa := seedUser(t, db, "moussa", decimal.Zero)

	for i := 1; i <= 5; i++ {
		_, err := transfers.Transfer(ctx, aminata.ID, moussa.ID, decimal.NewFromInt(int64(i)), TransferMeta{})
		require.NoError(t, err)
	}

	entries, err := history.History(ctx, aminata.ID, 3, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first: amounts 5, 4, 3.
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(5)))
	assert.True(t, entries[1].Amount.Equal(decimal.NewFromInt(4)))
	assert.True(t, entries[2].Amount.Equal(decimal.NewFromInt(3)))

	rest, err := history.History(ctx, aminata.ID, 3, 3)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.True(t, rest[0].Amount.Equal(decimal.NewFromInt(2)))

	// Both parties see the same entries.
	theirs, err := history.History(ctx, moussa.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, theirs, 5)

	// Strangers see nothing, as an empty slice.
	outsider := seedUser(t, db, "oumar", decimal.Zero)
	none, err := history.History(ctx, outsider.ID, 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Len(t, none, 0)
}

func TestHistoryLimitClamp(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	store := repository.NewStore(db)
	history := NewHistoryService(store, NewWalletService(store, "XOF"))

	aminata := seedUser(t, db, "aminata", decimal.Zero)

	// Out-of-range inputs fall back to defaults instead of failing.
	_, err := history.History(ctx, aminata.ID, -5, -10)
	require.NoError(t, err)
	_, err = history.History(ctx, aminata.ID, 10_000, 0)
	require.NoError(t, err)
}

func TestStats(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	store := repository.NewStore(db)
	transfers := NewTransferService(store)
	requests := NewPaymentRequestService(store, transfers)
	funding := newFundingService(store)
	history := NewHistoryService(store, NewWalletService(store, "XOF"))

	aminata := seedUser(t, db, "aminata", decimal.NewFromInt(1000))
	moussa := seedUser(t, db, "moussa", decimal.NewFromInt(1000))

	_, err := transfers.Transfer(ctx, aminata.ID, moussa.ID, decimal.NewFromInt(200), TransferMeta{})
	require.NoError(t, err)
	_, err = funding.Deposit(ctx, aminata.ID, decimal.NewFromInt(50), FundingMeta{})
	require.NoError(t, err)
	_, err = funding.Withdraw(ctx, aminata.ID, decimal.NewFromInt(30), FundingMeta{})
	require.NoError(t, err)

	// A pending request must not count toward any aggregate.
	_, err = requests.Create(ctx, aminata.ID, moussa.ID, decimal.NewFromInt(999), RequestMeta{})
	require.NoError(t, err)

	stats, err := history.Stats(ctx, aminata.ID)
	require.NoError(t, err)

	assert.True(t, stats.Balance.Equal(decimal.NewFromInt(820)), "balance was %s", stats.Balance)
	assert.True(t, stats.TotalSent.Equal(decimal.NewFromInt(230)), "total sent was %s", stats.TotalSent)
	assert.True(t, stats.TotalReceived.Equal(decimal.NewFromInt(50)), "total received was %s", stats.TotalReceived)
	assert.Equal(t, int64(3), stats.TransactionCount)
}
