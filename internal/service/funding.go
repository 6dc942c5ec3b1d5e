package service

import (
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

// FundingService moves money across the system boundary: deposits
// credit a wallet from outside, withdrawals debit it. The mobile-money
// side of these flows lives outside this service; only the ledger
// effect is recorded here.
type FundingService struct {
	store   QueryStore
	wallets *WalletService
	audit   *AuditService
}

func NewFundingService(store QueryStore, wallets *WalletService) *FundingService {
	return &FundingService{
		store:   store,
		wallets: wallets,
		audit:   NewAuditService(store),
	}
}

// FundingMeta carries the optional fields of a deposit or withdrawal.
type FundingMeta struct {
	Reference   string
	Description string
	Metadata    map[string]any
}

// Deposit credits the user's wallet, creating it on first credit. This
// is the one path that lazily provisions wallets.
func (s *FundingService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, meta FundingMeta) (*models.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	if entry, done, err := s.replay(ctx, meta.Reference); done {
		return entry, err
	}

	metadata, err := metadataJSON(meta.Metadata)
	if err != nil {
		return nil, err
	}

	var entry *models.LedgerEntry
	err = s.store.RunInTx(ctx, func(q *repository.Queries) error {
		wallet, err := s.wallets.getOrCreateTx(ctx, q, userID)
		if err != nil {
			return err
		}

		rows, err := q.CreditWallet(ctx, repository.CreditWalletParams{Amount: amount, ID: wallet.ID})
		if err != nil {
			return fmt.Errorf("credit wallet: %w", err)
		}
		if err := requireExactlyOne(rows, "credit wallet"); err != nil {
			return err
		}

		now := time.Now().UTC()
		entry, err = insertEntryWithReferenceRetry(ctx, q, repository.InsertLedgerEntryParams{
			ID:          uuid.New(),
			Reference:   meta.Reference,
			ToWalletID:  &wallet.ID,
			FromUserID:  userID,
			ToUserID:    userID,
			Amount:      amount,
			Currency:    wallet.Currency,
			Type:        domain.EntryTypeDeposit,
			Status:      domain.EntryStatusCompleted,
			Description: meta.Description,
			Metadata:    metadata,
			CompletedAt: &now,
		})
		return err
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	zap.L().Info("deposit completed",
		zap.String("reference", entry.Reference),
		zap.String("user_id", userID.String()),
		zap.String("amount", amount.String()),
	)
	return entry, nil
}

// Withdraw debits the user's wallet. Unlike deposits it never creates a
// wallet: withdrawing from nothing is an error.
func (s *FundingService) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, meta FundingMeta) (*models.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	if entry, done, err := s.replay(ctx, meta.Reference); done {
		return entry, err
	}

	metadata, err := metadataJSON(meta.Metadata)
	if err != nil {
		return nil, err
	}

	var entry *models.LedgerEntry
	err = s.store.RunInTx(ctx, func(q *repository.Queries) error {
		wallet, err := q.GetWalletByUserForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return models.ErrWalletNotFound
			}
			return fmt.Errorf("lock wallet: %w", err)
		}
		if wallet.Balance.LessThan(amount) {
			return models.ErrInsufficientFunds
		}

		rows, err := q.DebitWallet(ctx, repository.DebitWalletParams{Amount: amount, ID: wallet.ID})
		if err != nil {
			return fmt.Errorf("debit wallet: %w", err)
		}
		if rows == 0 {
			return models.ErrInsufficientFunds
		}

		now := time.Now().UTC()
		entry, err = insertEntryWithReferenceRetry(ctx, q, repository.InsertLedgerEntryParams{
			ID:           uuid.New(),
			Reference:    meta.Reference,
			FromWalletID: &wallet.ID,
			FromUserID:   userID,
			ToUserID:     userID,
			Amount:       amount,
			Currency:     wallet.Currency,
			Type:         domain.EntryTypeWithdrawal,
			Status:       domain.EntryStatusCompleted,
			Description:  meta.Description,
			Metadata:     metadata,
			CompletedAt:  &now,
		})
		return err
	})
	if err != nil {
		observability.IncrementTransfer(transferOutcome(err))
		return nil, wrapStoreErr(err)
	}

	zap.L().Info("withdrawal completed",
		zap.String("reference", entry.Reference),
		zap.String("user_id", userID.String()),
		zap.String("amount", amount.String()),
	)
	return entry, nil
}

// replay resolves a caller-supplied reference to its already-committed
// entry, making funding operations idempotent under retry.
func (s *FundingService) replay(ctx context.Context, reference string) (*models.LedgerEntry, bool, error) {
	if reference == "" {
		return nil, false, nil
	}
	existing, err := s.store.Queries().GetLedgerEntryByReference(ctx, reference)
	if err == nil {
		return existing, true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	return nil, true, wrapStoreErr(fmt.Errorf("check reference: %w", err))
}
