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

func newRequestService(db *repository.Store) *PaymentRequestService {
	return NewPaymentRequestService(db, NewTransferService(db))
}

func TestPaymentRequestLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	store := repository.NewStore(db)
	svc := newRequestService(store)

	requester := seedUser(t, db, "fatou", decimal.Zero)
	debtor := seedUser(t, db, "ibrahim", decimal.NewFromInt(5000))

	request, err := svc.Create(ctx, requester.ID, debtor.ID, decimal.NewFromInt(1200), RequestMeta{Description: "rent share"})
	require.NoError(t, err)

	assert.Equal(t, domain.EntryTypePaymentRequestSent, request.Type)
	assert.Equal(t, domain.EntryStatusPending, request.Status)
	assert.Equal(t, debtor.ID, request.FromUserID)
	assert.Equal(t, requester.ID, request.ToUserID)
	assert.Nil(t, request.FromWalletID)
	assert.Nil(t, request.CompletedAt)

	// No money moves while pending.
	assert.True(t, walletBalance(t, db, debtor.ID).Equal(decimal.NewFromInt(5000)))

	accepted, err := svc.Accept(ctx, request.ID, debtor.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryStatusCompleted, accepted.Status)
	assert.NotNil(t, accepted.CompletedAt)
	assert.NotNil(t, accepted.FromWalletID)
	assert.NotNil(t, accepted.ToWalletID)

	assert.True(t, walletBalance(t, db, debtor.ID).Equal(decimal.NewFromInt(3800)))
	assert.True(t, walletBalance(t, db, requester.ID).Equal(decimal.NewFromInt(1200)))

	// Settlement wrote its own completed transfer entry.
	var transfers int
	require.NoError(t, db.QueryRow(ctx,
		"SELECT COUNT(*) FROM ledger_entries WHERE type = $1 AND status = $2",
		domain.EntryTypeTransferSent, domain.EntryStatusCompleted).Scan(&transfers))
	assert.Equal(t, 1, transfers)

	// Audit trail covers creation and acceptance.
	var audits int
	require.NoError(t, db.QueryRow(ctx,
		"SELECT COUNT(*) FROM audit_log WHERE entity_id = $1", request.ID).Scan(&audits))
	assert.Equal(t, 2, audits)
}

func TestPaymentRequestAcceptOnlyDebtor(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := newRequestService(repository.NewStore(db))

	requester := seedUser(t, db, "fatou", decimal.Zero)
	debtor := seedUser(t, db, "ibrahim", decimal.NewFromInt(5000))
	outsider := seedUser(t, db, "oumar", decimal.Zero)

	request, err := svc.Create(ctx, requester.ID, debtor.ID, decimal.NewFromInt(100), RequestMeta{})
	require.NoError(t, err)

	// Neither the requester nor a third party may accept.
	_, err = svc.Accept(ctx, request.ID, requester.ID)
	require.ErrorIs(t, err, models.ErrUnauthorized)
	_, err = svc.Accept(ctx, request.ID, outsider.ID)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	assert.True(t, walletBalance(t, db, debtor.ID).Equal(decimal.NewFromInt(5000)))
}

func TestPaymentRequestDoubleAccept(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := newRequestService(repository.NewStore(db))

	requester := seedUser(t, db, "fatou", decimal.Zero)
	debtor := seedUser(t, db, "ibrahim", decimal.NewFromInt(1000))

	request, err := svc.Create(ctx, requester.ID, debtor.ID, decimal.NewFromInt(400), RequestMeta{})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, request.ID, debtor.ID)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, request.ID, debtor.ID)
	require.ErrorIs(t, err, models.ErrIllegalTransition)

	// The second accept moved nothing.
	assert.True(t, walletBalance(t, db, debtor.ID).Equal(decimal.NewFromInt(600)))
	assert.True(t, walletBalance(t, db, requester.ID).Equal(decimal.NewFromInt(400)))
}

func TestPaymentRequestAcceptInsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := newRequestService(repository.NewStore(db))

	requester := seedUser(t, db, "fatou", decimal.Zero)
	debtor := seedUser(t, db, "ibrahim", decimal.NewFromInt(50))

	request, err := svc.Create(ctx, requester.ID, debtor.ID, decimal.NewFromInt(500), RequestMeta{})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, request.ID, debtor.ID)
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	// The failed accept rolled everything back; the request is still pending.
	reloaded, err := repository.New(db).GetLedgerEntry(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryStatusPending, reloaded.Status)
	assert.True(t, walletBalance(t, db, debtor.ID).Equal(decimal.NewFromInt(50)))
}

func TestPaymentRequestCancel(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := newRequestService(repository.NewStore(db))

	requester := seedUser(t, db, "fatou", decimal.Zero)
	debtor := seedUser(t, db, "ibrahim", decimal.NewFromInt(1000))
	outsider := seedUser(t, db, "oumar", decimal.Zero)

	request, err := svc.Create(ctx, requester.ID, debtor.ID, decimal.NewFromInt(100), RequestMeta{})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, request.ID, outsider.ID)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	cancelled, err := svc.Cancel(ctx, request.ID, requester.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryStatusCancelled, cancelled.Status)

	// Cancelled is terminal.
	_, err = svc.Accept(ctx, request.ID, debtor.ID)
	require.ErrorIs(t, err, models.ErrIllegalTransition)
	_, err = svc.Cancel(ctx, request.ID, debtor.ID)
	require.ErrorIs(t, err, models.ErrIllegalTransition)

	assert.True(t, walletBalance(t, db, debtor.ID).Equal(decimal.NewFromInt(1000)))
}

func TestPaymentRequestNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	store := repository.NewStore(db)
	svc := newRequestService(store)

	debtor := seedUser(t, db, "ibrahim", decimal.NewFromInt(1000))
	moussa := seedUser(t, db, "moussa", decimal.Zero)

	// A plain transfer entry is not addressable as a payment request.
	transfer, err := NewTransferService(store).Transfer(ctx, debtor.ID, moussa.ID, decimal.NewFromInt(10), TransferMeta{})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, transfer.ID, debtor.ID)
	require.ErrorIs(t, err, models.ErrTransactionNotFound)
}
