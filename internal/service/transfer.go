package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smdiabate/wallet-ledger/internal/domain"
	"github.com/smdiabate/wallet-ledger/internal/models"
	"github.com/smdiabate/wallet-ledger/internal/observability"
	"github.com/smdiabate/wallet-ledger/internal/repository"
)

// referenceInsertAttempts bounds how often a ledger insert is retried
// with a fresh reference after a uniqueness collision.
const referenceInsertAttempts = 3

// TransferService moves money between two wallets atomically. It is the
// only writer of wallet balances besides the funding path.
type TransferService struct {
	store QueryStore
}

func NewTransferService(store QueryStore) *TransferService {
	return &TransferService{store: store}
}

// TransferMeta carries the optional caller-supplied fields of a transfer.
type TransferMeta struct {
	// Reference, when set, makes the operation idempotent: a resubmit
	// with the same reference returns the already-committed entry.
	Reference   string
	Description string
	Notes       string
	Metadata    map[string]any
}

// Transfer debits the sender and credits the receiver in one
// transaction and records a single completed ledger entry. Any failure
// rolls the whole unit back; no partial balance change is observable.
func (s *TransferService) Transfer(ctx context.Context, fromUserID, toUserID uuid.UUID, amount decimal.Decimal, meta TransferMeta) (*models.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	if fromUserID == toUserID {
		return nil, models.ErrSelfTransfer
	}

	if meta.Reference != "" {
		existing, err := s.store.Queries().GetLedgerEntryByReference(ctx, meta.Reference)
		if err == nil {
			observability.IncrementTransfer("replayed")
			zap.L().Info("transfer replayed",
				zap.String("reference", meta.Reference),
				zap.String("from_user_id", fromUserID.String()),
				zap.String("to_user_id", toUserID.String()),
			)
			return existing, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, wrapStoreErr(fmt.Errorf("check reference: %w", err))
		}
	}

	var entry *models.LedgerEntry
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		var txErr error
		entry, txErr = s.transferTx(ctx, q, fromUserID, toUserID, amount, meta)
		return txErr
	})
	if err != nil {
		observability.IncrementTransfer(transferOutcome(err))
		zap.L().Warn("transfer failed",
			zap.Error(err),
			zap.String("from_user_id", fromUserID.String()),
			zap.String("to_user_id", toUserID.String()),
			zap.String("amount", amount.String()),
		)
		return nil, wrapStoreErr(err)
	}

	observability.IncrementTransfer("completed")
	zap.L().Info("transfer completed",
		zap.String("reference", entry.Reference),
		zap.String("from_user_id", fromUserID.String()),
		zap.String("to_user_id", toUserID.String()),
		zap.String("amount", entry.Amount.String()),
	)
	return entry, nil
}

// transferTx performs the balance swap inside a caller-owned
// transaction. The payment request workflow composes with it so the
// transfer and the request status flip commit or roll back together.
func (s *TransferService) transferTx(ctx context.Context, q *repository.Queries, fromUserID, toUserID uuid.UUID, amount decimal.Decimal, meta TransferMeta) (*models.LedgerEntry, error) {
	fromWalletID, err := q.GetWalletIDByUser(ctx, fromUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sender: %w", models.ErrWalletNotFound)
		}
		return nil, fmt.Errorf("resolve sender wallet: %w", err)
	}
	// Transfers never provision the receiver: a typo'd recipient must
	// fail loudly instead of silently gaining a ghost wallet.
	toWalletID, err := q.GetWalletIDByUser(ctx, toUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("receiver: %w", models.ErrWalletNotFound)
		}
		return nil, fmt.Errorf("resolve receiver wallet: %w", err)
	}

	// Lock both rows in ascending wallet-id order so two
	// opposite-direction transfers can never deadlock each other.
	first, second := fromWalletID, toWalletID
	if bytes.Compare(first[:], second[:]) > 0 {
		first, second = second, first
	}
	if err := q.LockWallet(ctx, first); err != nil {
		return nil, fmt.Errorf("lock wallet %s: %w", first, err)
	}
	if err := q.LockWallet(ctx, second); err != nil {
		return nil, fmt.Errorf("lock wallet %s: %w", second, err)
	}

	sender, err := q.GetWallet(ctx, fromWalletID)
	if err != nil {
		return nil, fmt.Errorf("fetch sender wallet: %w", err)
	}
	if sender.Balance.LessThan(amount) {
		return nil, models.ErrInsufficientFunds
	}
	receiver, err := q.GetWallet(ctx, toWalletID)
	if err != nil {
		return nil, fmt.Errorf("fetch receiver wallet: %w", err)
	}
	if sender.Currency != receiver.Currency {
		return nil, fmt.Errorf("currency mismatch: sender is %s, receiver is %s", sender.Currency, receiver.Currency)
	}

	rows, err := q.DebitWallet(ctx, repository.DebitWalletParams{Amount: amount, ID: fromWalletID})
	if err != nil {
		return nil, fmt.Errorf("debit sender: %w", err)
	}
	if rows == 0 {
		return nil, models.ErrInsufficientFunds
	}
	rows, err = q.CreditWallet(ctx, repository.CreditWalletParams{Amount: amount, ID: toWalletID})
	if err != nil {
		return nil, fmt.Errorf("credit receiver: %w", err)
	}
	if err := requireExactlyOne(rows, "credit receiver"); err != nil {
		return nil, err
	}

	metadata, err := metadataJSON(meta.Metadata)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return insertEntryWithReferenceRetry(ctx, q, repository.InsertLedgerEntryParams{
		ID:           uuid.New(),
		Reference:    meta.Reference,
		FromWalletID: &fromWalletID,
		ToWalletID:   &toWalletID,
		FromUserID:   fromUserID,
		ToUserID:     toUserID,
		Amount:       amount,
		Currency:     sender.Currency,
		Type:         domain.EntryTypeTransferSent,
		Status:       domain.EntryStatusCompleted,
		Description:  meta.Description,
		Notes:        meta.Notes,
		Metadata:     metadata,
		CompletedAt:  &now,
	})
}

// insertEntryWithReferenceRetry inserts a ledger entry inside a
// savepoint so a reference collision aborts only the insert, not the
// surrounding balance updates. An auto-generated reference is replaced
// and retried a bounded number of times; a caller-supplied one is not
// (the collision then means a concurrent duplicate of the same logical
// operation, which the caller-level idempotency check resolves).
func insertEntryWithReferenceRetry(ctx context.Context, q *repository.Queries, arg repository.InsertLedgerEntryParams) (*models.LedgerEntry, error) {
	regenerate := arg.Reference == ""
	if regenerate {
		arg.Reference = domain.NewReference()
	}

	for attempt := 0; attempt < referenceInsertAttempts; attempt++ {
		var entry *models.LedgerEntry
		err := q.WithSavepoint(ctx, func(sq *repository.Queries) error {
			var insertErr error
			entry, insertErr = sq.InsertLedgerEntry(ctx, arg)
			return insertErr
		})
		if err == nil {
			return entry, nil
		}
		if regenerate && repository.IsUniqueViolation(err, "ledger_entries_reference_key") {
			zap.L().Warn("ledger reference collision, regenerating", zap.String("reference", arg.Reference))
			arg.Reference = domain.NewReference()
			continue
		}
		return nil, fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil, fmt.Errorf("reference generation exhausted after %d attempts: %w", referenceInsertAttempts, models.ErrTransientStore)
}

func transferOutcome(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, models.ErrWalletNotFound):
		return "wallet_not_found"
	case errors.Is(err, models.ErrTransientStore), repository.IsTransient(err):
		return "transient_error"
	default:
		return "failed"
	}
}
