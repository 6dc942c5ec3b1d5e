package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smdiabate/wallet-ledger/internal/domain"
	"github.com/smdiabate/wallet-ledger/internal/models"
	"github.com/smdiabate/wallet-ledger/internal/repository"
)

// WalletService owns wallet rows. Balances are only ever mutated by the
// transfer and funding paths inside their transactions; this service
// covers lookup and provisioning.
type WalletService struct {
	store    QueryStore
	currency string
}

func NewWalletService(store QueryStore, currency string) *WalletService {
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return &WalletService{store: store, currency: currency}
}

// Currency reports the currency new wallets are provisioned in.
func (s *WalletService) Currency() string {
	return s.currency
}

// GetOrCreate returns the user's wallet, creating a zero-balance wallet
// in the default currency when none exists yet.
func (s *WalletService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	queries := s.store.Queries()

	wallet, err := queries.GetWalletByUser(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrapStoreErr(fmt.Errorf("get wallet: %w", err))
	}

	wallet = &models.Wallet{
		ID:       uuid.New(),
		UserID:   userID,
		Balance:  decimal.Zero,
		Currency: s.currency,
		Active:   true,
	}
	if err := queries.CreateWallet(ctx, wallet); err != nil {
		// Two concurrent first credits can race on the one-wallet-per-user
		// constraint; the loser adopts the winner's row.
		if repository.IsUniqueViolation(err, "wallets_user_id_key") {
			return queries.GetWalletByUser(ctx, userID)
		}
		return nil, wrapStoreErr(fmt.Errorf("create wallet: %w", err))
	}
	zap.L().Info("wallet created",
		zap.String("wallet_id", wallet.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("currency", wallet.Currency),
	)
	return wallet, nil
}

// GetBalance is the read-only convenience: zero when no wallet exists,
// and never creates one.
func (s *WalletService) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	wallet, err := s.store.Queries().GetWalletByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, wrapStoreErr(fmt.Errorf("get balance: %w", err))
	}
	return wallet.Balance, nil
}

// GetByUser is the strict lookup used by transfer validation.
func (s *WalletService) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	wallet, err := s.store.Queries().GetWalletByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrWalletNotFound
		}
		return nil, wrapStoreErr(fmt.Errorf("get wallet: %w", err))
	}
	return wallet, nil
}

// getOrCreateTx provisions the wallet inside an existing transaction,
// taking the row lock when the wallet already exists. Used by deposits.
func (s *WalletService) getOrCreateTx(ctx context.Context, q *repository.Queries, userID uuid.UUID) (*models.Wallet, error) {
	wallet, err := q.GetWalletByUserForUpdate(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}

	wallet = &models.Wallet{
		ID:       uuid.New(),
		UserID:   userID,
		Balance:  decimal.Zero,
		Currency: s.currency,
		Active:   true,
	}
	if err := q.CreateWallet(ctx, wallet); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	return wallet, nil
}
