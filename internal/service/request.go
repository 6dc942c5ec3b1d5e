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

// PaymentRequestService runs the request -> accept/cancel workflow on
// top of the transfer engine. A request is a pending ledger entry; no
// funds move until the debtor accepts.
type PaymentRequestService struct {
	store     QueryStore
	transfers *TransferService
	audit     *AuditService
}

func NewPaymentRequestService(store QueryStore, transfers *TransferService) *PaymentRequestService {
	return &PaymentRequestService{
		store:     store,
		transfers: transfers,
		audit:     NewAuditService(store),
	}
}

// RequestMeta carries the optional fields of a payment request.
type RequestMeta struct {
	Description string
	Notes       string
	Metadata    map[string]any
}

// Create records a pending payment request from requester to debtor.
// The entry's from side is the debtor: that is where the money would
// come from on acceptance. Wallet links stay empty until then.
func (s *PaymentRequestService) Create(ctx context.Context, requesterID, debtorID uuid.UUID, amount decimal.Decimal, meta RequestMeta) (*models.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	if requesterID == debtorID {
		return nil, models.ErrSelfTransfer
	}

	metadata, err := metadataJSON(meta.Metadata)
	if err != nil {
		return nil, err
	}

	var entry *models.LedgerEntry
	err = s.store.RunInTx(ctx, func(q *repository.Queries) error {
		var txErr error
		entry, txErr = insertEntryWithReferenceRetry(ctx, q, repository.InsertLedgerEntryParams{
			ID:          uuid.New(),
			FromUserID:  debtorID,
			ToUserID:    requesterID,
			Amount:      amount,
			Currency:    domain.DefaultCurrency,
			Type:        domain.EntryTypePaymentRequestSent,
			Status:      domain.EntryStatusPending,
			Description: meta.Description,
			Notes:       meta.Notes,
			Metadata:    metadata,
		})
		if txErr != nil {
			return txErr
		}
		return s.audit.Write(ctx, q, "ledger_entry", entry.ID, &requesterID, "request_created", "", domain.EntryStatusPending, metadata)
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	observability.IncrementRequestTransition("created")
	zap.L().Info("payment request created",
		zap.String("reference", entry.Reference),
		zap.String("requester_user_id", requesterID.String()),
		zap.String("debtor_user_id", debtorID.String()),
		zap.String("amount", amount.String()),
	)
	return entry, nil
}

// Accept moves the requested funds from the debtor to the requester and
// flips the request to completed, both in one transaction. Only the
// debtor may accept, and only while the request is still pending.
func (s *PaymentRequestService) Accept(ctx context.Context, entryID, actingUserID uuid.UUID) (*models.LedgerEntry, error) {
	var request *models.LedgerEntry
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		entry, err := s.lockRequest(ctx, q, entryID)
		if err != nil {
			return err
		}
		if !canTransition(entry.Status, domain.EntryStatusCompleted) {
			return models.ErrIllegalTransition
		}
		if entry.FromUserID != actingUserID {
			return models.ErrUnauthorized
		}

		transfer, err := s.transfers.transferTx(ctx, q, entry.FromUserID, entry.ToUserID, entry.Amount, TransferMeta{
			Description: entry.Description,
			Notes:       fmt.Sprintf("settles payment request %s", entry.Reference),
			Metadata:    map[string]any{"payment_request_id": entry.ID.String()},
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		rows, err := q.CompletePaymentRequest(ctx, repository.CompletePaymentRequestParams{
			ID:           entry.ID,
			FromWalletID: *transfer.FromWalletID,
			ToWalletID:   *transfer.ToWalletID,
			CompletedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("complete payment request: %w", err)
		}
		if err := requireExactlyOne(rows, "complete payment request"); err != nil {
			return err
		}

		settleMeta, err := metadataJSON(map[string]any{"transfer_reference": transfer.Reference})
		if err != nil {
			return err
		}
		if err := s.audit.Write(ctx, q, "ledger_entry", entry.ID, &actingUserID, "request_accepted", domain.EntryStatusPending, domain.EntryStatusCompleted, settleMeta); err != nil {
			return err
		}

		request, err = q.GetLedgerEntry(ctx, entry.ID)
		if err != nil {
			return fmt.Errorf("reload payment request: %w", err)
		}
		zap.L().Info("payment request accepted",
			zap.String("reference", entry.Reference),
			zap.String("transfer_reference", transfer.Reference),
			zap.String("debtor_user_id", entry.FromUserID.String()),
			zap.String("requester_user_id", entry.ToUserID.String()),
		)
		return nil
	})
	if err != nil {
		observability.IncrementRequestTransition("accept_failed")
		return nil, wrapStoreErr(err)
	}

	observability.IncrementRequestTransition("accepted")
	return request, nil
}

// Cancel voids a pending request without moving funds. Either party may
// cancel; anyone else is rejected.
func (s *PaymentRequestService) Cancel(ctx context.Context, entryID, actingUserID uuid.UUID) (*models.LedgerEntry, error) {
	var request *models.LedgerEntry
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		entry, err := s.lockRequest(ctx, q, entryID)
		if err != nil {
			return err
		}
		if !canTransition(entry.Status, domain.EntryStatusCancelled) {
			return models.ErrIllegalTransition
		}
		if entry.FromUserID != actingUserID && entry.ToUserID != actingUserID {
			return models.ErrUnauthorized
		}

		rows, err := q.SetEntryStatus(ctx, repository.SetEntryStatusParams{
			ID:     entry.ID,
			Status: domain.EntryStatusCancelled,
		})
		if err != nil {
			return fmt.Errorf("cancel payment request: %w", err)
		}
		if err := requireExactlyOne(rows, "cancel payment request"); err != nil {
			return err
		}

		if err := s.audit.Write(ctx, q, "ledger_entry", entry.ID, &actingUserID, "request_cancelled", domain.EntryStatusPending, domain.EntryStatusCancelled, nil); err != nil {
			return err
		}

		request, err = q.GetLedgerEntry(ctx, entry.ID)
		if err != nil {
			return fmt.Errorf("reload payment request: %w", err)
		}
		zap.L().Info("payment request cancelled",
			zap.String("reference", entry.Reference),
			zap.String("acting_user_id", actingUserID.String()),
		)
		return nil
	})
	if err != nil {
		observability.IncrementRequestTransition("cancel_failed")
		return nil, wrapStoreErr(err)
	}

	observability.IncrementRequestTransition("cancelled")
	return request, nil
}

func (s *PaymentRequestService) lockRequest(ctx context.Context, q *repository.Queries, entryID uuid.UUID) (*models.LedgerEntry, error) {
	entry, err := q.GetLedgerEntryForUpdate(ctx, entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("lock payment request: %w", err)
	}
	if entry.Type != domain.EntryTypePaymentRequestSent {
		return nil, models.ErrTransactionNotFound
	}
	return entry, nil
}
