package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smdiabate/wallet-ledger/internal/domain"
	"github.com/smdiabate/wallet-ledger/internal/models"
	"github.com/smdiabate/wallet-ledger/internal/repository"
)

func newFundingService(store *repository.Store) *FundingService {
	return NewFundingService(store, NewWalletService(store, "XOF"))
}

func TestDepositCreatesWalletLazily(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := newFundingService(repository.NewStore(db))

	user := seedUserWithoutWallet(t, db, "aminata")

	entry, err := svc.Deposit(ctx, user.ID, decimal.NewFromInt(7500), FundingMeta{Description: "cash in"})
	require.NoError(t, err)

	assert.Equal(t, domain.EntryTypeDeposit, entry.Type)
	assert.Equal(t, domain.EntryStatusCompleted, entry.Status)
	assert.NotNil(t, entry.ToWalletID)
	assert.Nil(t, entry.FromWalletID)

	assert.True(t, walletBalance(t, db, user.ID).Equal(decimal.NewFromInt(7500)))
}

func TestDepositIdempotentByReference(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := newFundingService(repository.NewStore(db))

	user := seedUser(t, db, "aminata", decimal.Zero)

	meta := FundingMeta{Reference: "TXN-DEP-REPLAY-001"}
	first, err := svc.Deposit(ctx, user.ID, decimal.NewFromInt(100), meta)
	require.NoError(t, err)

	second, err := svc.Deposit(ctx, user.ID, decimal.NewFromInt(100), meta)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	assert.True(t, walletBalance(t, db, user.ID).Equal(decimal.NewFromInt(100)))
}

func TestWithdraw(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := newFundingService(repository.NewStore(db))

	user := seedUser(t, db, "aminata", decimal.NewFromInt(900))

	entry, err := svc.Withdraw(ctx, user.ID, decimal.NewFromInt(400), FundingMeta{Description: "cash out"})
	require.NoError(t, err)

	assert.Equal(t, domain.EntryTypeWithdrawal, entry.Type)
	assert.NotNil(t, entry.FromWalletID)
	assert.Nil(t, entry.ToWalletID)
	assert.True(t, walletBalance(t, db, user.ID).Equal(decimal.NewFromInt(500)))
}

func TestWithdrawGuards(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := newFundingService(repository.NewStore(db))

	user := seedUser(t, db, "aminata", decimal.NewFromInt(100))

	_, err := svc.Withdraw(ctx, user.ID, decimal.NewFromInt(150), FundingMeta{})
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	_, err = svc.Withdraw(ctx, user.ID, decimal.NewFromInt(-1), FundingMeta{})
	require.ErrorIs(t, err, models.ErrInvalidAmount)

	// No wallet, no withdrawal.
	ghost := seedUserWithoutWallet(t, db, "ghost")
	_, err = svc.Withdraw(ctx, ghost.ID, decimal.NewFromInt(10), FundingMeta{})
	require.ErrorIs(t, err, models.ErrWalletNotFound)

	assert.True(t, walletBalance(t, db, user.ID).Equal(decimal.NewFromInt(100)))
}

func TestWalletGetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := NewWalletService(repository.NewStore(db), "XOF")

	user := seedUserWithoutWallet(t, db, "aminata")

	created, err := svc.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, created.Balance.IsZero())
	assert.Equal(t, "XOF", created.Currency)

	again, err := svc.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	// Balance reads zero for users with no wallet at all.
	ghost := seedUserWithoutWallet(t, db, "ghost")
	balance, err := svc.GetBalance(ctx, ghost.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}
