package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smdiabate/wallet-ledger/internal/domain"
	"github.com/smdiabate/wallet-ledger/internal/models"
	"github.com/smdiabate/wallet-ledger/internal/repository"
)

func TestTransfer(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	store := repository.NewStore(db)
	svc := NewTransferService(store)

	aminata := seedUser(t, db, "aminata", decimal.NewFromInt(10000))
	moussa := seedUser(t, db, "moussa", decimal.Zero)

	entry, err := svc.Transfer(ctx, aminata.ID, moussa.ID, decimal.NewFromInt(2500), TransferMeta{Description: "lunch"})
	require.NoError(t, err)

	assert.Equal(t, domain.EntryTypeTransferSent, entry.Type)
	assert.Equal(t, domain.EntryStatusCompleted, entry.Status)
	assert.NotEmpty(t, entry.Reference)
	assert.NotNil(t, entry.CompletedAt)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(2500)))

	assert.True(t, walletBalance(t, db, aminata.ID).Equal(decimal.NewFromInt(7500)))
	assert.True(t, walletBalance(t, db, moussa.ID).Equal(decimal.NewFromInt(2500)))

	// Exactly one ledger entry for the movement.
	var count int
	require.NoError(t, db.QueryRow(ctx, "SELECT COUNT(*) FROM ledger_entries").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestTransferInsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := NewTransferService(repository.NewStore(db))

	aminata := seedUser(t, db, "aminata", decimal.NewFromInt(100))
	moussa := seedUser(t, db, "moussa", decimal.Zero)

	_, err := svc.Transfer(ctx, aminata.ID, moussa.ID, decimal.NewFromInt(500), TransferMeta{})
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	// Nothing moved, nothing recorded.
	assert.True(t, walletBalance(t, db, aminata.ID).Equal(decimal.NewFromInt(100)))
	assert.True(t, walletBalance(t, db, moussa.ID).Equal(decimal.Zero))

	var count int
	require.NoError(t, db.QueryRow(ctx, "SELECT COUNT(*) FROM ledger_entries").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestTransferValidation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := NewTransferService(repository.NewStore(db))

	aminata := seedUser(t, db, "aminata", decimal.NewFromInt(100))

	_, err := svc.Transfer(ctx, aminata.ID, aminata.ID, decimal.NewFromInt(10), TransferMeta{})
	require.ErrorIs(t, err, models.ErrSelfTransfer)

	moussa := seedUser(t, db, "moussa", decimal.Zero)
	_, err = svc.Transfer(ctx, aminata.ID, moussa.ID, decimal.Zero, TransferMeta{})
	require.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = svc.Transfer(ctx, aminata.ID, moussa.ID, decimal.NewFromInt(-5), TransferMeta{})
	require.ErrorIs(t, err, models.ErrInvalidAmount)
}

func TestTransferUnknownRecipient(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := NewTransferService(repository.NewStore(db))

	aminata := seedUser(t, db, "aminata", decimal.NewFromInt(100))
	ghost := seedUserWithoutWallet(t, db, "ghost")

	_, err := svc.Transfer(ctx, aminata.ID, ghost.ID, decimal.NewFromInt(10), TransferMeta{})
	require.ErrorIs(t, err, models.ErrWalletNotFound)

	assert.True(t, walletBalance(t, db, aminata.ID).Equal(decimal.NewFromInt(100)))
}

func TestTransferIdempotentReference(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := NewTransferService(repository.NewStore(db))

	aminata := seedUser(t, db, "aminata", decimal.NewFromInt(1000))
	moussa := seedUser(t, db, "moussa", decimal.Zero)

	meta := TransferMeta{Reference: "TXN-REPLAY-TEST-001"}
	first, err := svc.Transfer(ctx, aminata.ID, moussa.ID, decimal.NewFromInt(300), meta)
	require.NoError(t, err)

	second, err := svc.Transfer(ctx, aminata.ID, moussa.ID, decimal.NewFromInt(300), meta)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// The debit happened once.
	assert.True(t, walletBalance(t, db, aminata.ID).Equal(decimal.NewFromInt(700)))
}

func TestTransferOppositeDirectionsNoDeadlock(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := NewTransferService(repository.NewStore(db))

	aminata := seedUser(t, db, "aminata", decimal.NewFromInt(1000))
	moussa := seedUser(t, db, "moussa", decimal.NewFromInt(1000))

	n := 10
	amount := decimal.NewFromInt(10)
	errs := make(chan error, n*2)

	for i := 0; i < n; i++ {
		go func() {
			_, err := svc.Transfer(ctx, aminata.ID, moussa.ID, amount, TransferMeta{Reference: "A-" + uuid.NewString()})
			errs <- err
		}()
		go func() {
			_, err := svc.Transfer(ctx, moussa.ID, aminata.ID, amount, TransferMeta{Reference: "B-" + uuid.NewString()})
			errs <- err
		}()
	}

	for i := 0; i < n*2; i++ {
		assert.NoError(t, <-errs)
	}

	// Equal traffic both ways leaves the balances untouched.
	assert.True(t, walletBalance(t, db, aminata.ID).Equal(decimal.NewFromInt(1000)))
	assert.True(t, walletBalance(t, db, moussa.ID).Equal(decimal.NewFromInt(1000)))
}

func TestTransferConcurrentOverdraw(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := NewTransferService(repository.NewStore(db))

	// Balance 50, ten concurrent sends of 20: only two can succeed.
	aminata := seedUser(t, db, "aminata", decimal.NewFromInt(50))
	moussa := seedUser(t, db, "moussa", decimal.Zero)

	n := 10
	amount := decimal.NewFromInt(20)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := svc.Transfer(ctx, aminata.ID, moussa.ID, amount, TransferMeta{Reference: "OD-" + uuid.NewString()})
			errs <- err
		}()
	}

	succeeded := 0
	for i := 0; i < n; i++ {
		err := <-errs
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, models.ErrInsufficientFunds)
	}

	assert.Equal(t, 2, succeeded)
	assert.True(t, walletBalance(t, db, aminata.ID).Equal(decimal.NewFromInt(10)))
	assert.True(t, walletBalance(t, db, moussa.ID).Equal(decimal.NewFromInt(40)))
}
