package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Wallet holds a single user's balance. One wallet per user, balance
// never negative at any committed state.
type Wallet struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	MerchantID *uuid.UUID      `json:"merchant_id,omitempty"`
	Balance    decimal.Decimal `json:"balance"`
	Currency   string          `json:"currency"`
	Active     bool            `json:"active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// LedgerEntry is an immutable record of a money movement or a request
// for one. Entries are append-only; only the status moves forward.
type LedgerEntry struct {
	ID           uuid.UUID       `json:"id"`
	Reference    string          `json:"reference"`
	FromWalletID *uuid.UUID      `json:"from_wallet_id,omitempty"`
	ToWalletID   *uuid.UUID      `json:"to_wallet_id,omitempty"`
	FromUserID   uuid.UUID       `json:"from_user_id"`
	ToUserID     uuid.UUID       `json:"to_user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Description  string          `json:"description,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// WalletStats is the aggregate view over a user's completed entries.
type WalletStats struct {
	Balance          decimal.Decimal `json:"balance"`
	TotalSent        decimal.Decimal `json:"total_sent"`
	TotalReceived    decimal.Decimal `json:"total_received"`
	TransactionCount int64           `json:"transaction_count"`
}
