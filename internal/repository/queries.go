package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/smdiabate/wallet-ledger/internal/models"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so every query can
// run either standalone or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries bundles all hand-written SQL against the wallet schema.
type Queries struct {
	db DBTX
	tx pgx.Tx
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a query set bound to the given transaction.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx, tx: tx}
}

// --- users ---

func (q *Queries) CreateUser(ctx context.Context, user *models.User) error {
	const sql = `INSERT INTO users (id, username, email, phone, role, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING created_at`
	return q.db.QueryRow(ctx, sql, user.ID, user.Username, user.Email, nullableText(user.Phone), user.Role).
		Scan(&user.CreatedAt)
}

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const sql = `SELECT id, username, email, COALESCE(phone, ''), role, created_at FROM users WHERE id = $1`
	user := &models.User{}
	err := q.db.QueryRow(ctx, sql, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.Phone, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (q *Queries) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	const sql = `SELECT id, username, email, COALESCE(phone, ''), role, created_at FROM users WHERE phone = $1`
	user := &models.User{}
	err := q.db.QueryRow(ctx, sql, phone).
		Scan(&user.ID, &user.Username, &user.Email, &user.Phone, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// --- wallets ---

const walletColumns = `id, user_id, merchant_id, balance, currency, active, created_at, updated_at`

func scanWallet(row pgx.Row) (*models.Wallet, error) {
	w := &models.Wallet{}
	err := row.Scan(&w.ID, &w.UserID, &w.MerchantID, &w.Balance, &w.Currency, &w.Active, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (q *Queries) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	const sql = `INSERT INTO wallets (id, user_id, merchant_id, balance, currency, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING created_at, updated_at`
	return q.db.QueryRow(ctx, sql, wallet.ID, wallet.UserID, wallet.MerchantID, wallet.Balance, wallet.Currency, wallet.Active).
		Scan(&wallet.CreatedAt, &wallet.UpdatedAt)
}

func (q *Queries) GetWalletByUser(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return scanWallet(q.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID))
}

func (q *Queries) GetWalletByUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return scanWallet(q.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 FOR UPDATE`, userID))
}

func (q *Queries) GetWalletIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, `SELECT id FROM wallets WHERE user_id = $1`, userID).Scan(&id)
	return id, err
}

// LockWallet takes the row lock used to linearize balance mutations.
// Callers must lock wallets in ascending id order.
func (q *Queries) LockWallet(ctx context.Context, id uuid.UUID) error {
	var locked uuid.UUID
	return q.db.QueryRow(ctx, `SELECT id FROM wallets WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
}

func (q *Queries) GetWallet(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	return scanWallet(q.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id))
}

type CreditWalletParams struct {
	Amount decimal.Decimal
	ID     uuid.UUID
}

func (q *Queries) CreditWallet(ctx context.Context, arg CreditWalletParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `UPDATE wallets SET balance = balance + $1, updated_at = NOW() WHERE id = $2`, arg.Amount, arg.ID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type DebitWalletParams struct {
	Amount decimal.Decimal
	ID     uuid.UUID
}

// DebitWallet refuses to take a balance below zero; the balance >= $1
// predicate backs up the CHECK constraint so an insufficient debit
// affects zero rows instead of aborting the transaction.
func (q *Queries) DebitWallet(ctx context.Context, arg DebitWalletParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `UPDATE wallets SET balance = balance - $1, updated_at = NOW() WHERE id = $2 AND balance >= $1`, arg.Amount, arg.ID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// --- ledger entries ---

const entryColumns = `id, reference, from_wallet_id, to_wallet_id, from_user_id, to_user_id,
	amount, currency, type, status, description, notes, metadata, completed_at, created_at, updated_at`

func scanEntry(row pgx.Row) (*models.LedgerEntry, error) {
	e := &models.LedgerEntry{}
	err := row.Scan(
		&e.ID, &e.Reference, &e.FromWalletID, &e.ToWalletID, &e.FromUserID, &e.ToUserID,
		&e.Amount, &e.Currency, &e.Type, &e.Status, &e.Description, &e.Notes, &e.Metadata,
		&e.CompletedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

type InsertLedgerEntryParams struct {
	ID           uuid.UUID
	Reference    string
	FromWalletID *uuid.UUID
	ToWalletID   *uuid.UUID
	FromUserID   uuid.UUID
	ToUserID     uuid.UUID
	Amount       decimal.Decimal
	Currency     string
	Type         string
	Status       string
	Description  string
	Notes        string
	Metadata     []byte
	CompletedAt  *time.Time
}

func (q *Queries) InsertLedgerEntry(ctx context.Context, arg InsertLedgerEntryParams) (*models.LedgerEntry, error) {
	const sql = `INSERT INTO ledger_entries
		(id, reference, from_wallet_id, to_wallet_id, from_user_id, to_user_id,
		 amount, currency, type, status, description, notes, metadata, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING ` + entryColumns
	return scanEntry(q.db.QueryRow(ctx, sql,
		arg.ID, arg.Reference, arg.FromWalletID, arg.ToWalletID, arg.FromUserID, arg.ToUserID,
		arg.Amount, arg.Currency, arg.Type, arg.Status, arg.Description, arg.Notes, arg.Metadata, arg.CompletedAt,
	))
}

func (q *Queries) GetLedgerEntry(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	return scanEntry(q.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE id = $1`, id))
}

func (q *Queries) GetLedgerEntryForUpdate(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	return scanEntry(q.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE id = $1 FOR UPDATE`, id))
}

func (q *Queries) GetLedgerEntryByReference(ctx context.Context, reference string) (*models.LedgerEntry, error) {
	return scanEntry(q.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE reference = $1`, reference))
}

type SetEntryStatusParams struct {
	ID          uuid.UUID
	Status      string
	CompletedAt *time.Time
}

func (q *Queries) SetEntryStatus(ctx context.Context, arg SetEntryStatusParams) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE ledger_entries SET status = $2, completed_at = $3, updated_at = NOW() WHERE id = $1`,
		arg.ID, arg.Status, arg.CompletedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type CompletePaymentRequestParams struct {
	ID           uuid.UUID
	FromWalletID uuid.UUID
	ToWalletID   uuid.UUID
	CompletedAt  time.Time
}

// CompletePaymentRequest flips the original request row to completed and
// links the wallets that existed by the time the debtor accepted.
func (q *Queries) CompletePaymentRequest(ctx context.Context, arg CompletePaymentRequestParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `UPDATE ledger_entries
		SET status = 'completed', from_wallet_id = $2, to_wallet_id = $3, completed_at = $4, updated_at = NOW()
		WHERE id = $1`,
		arg.ID, arg.FromWalletID, arg.ToWalletID, arg.CompletedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type ListLedgerEntriesByUserParams struct {
	UserID uuid.UUID
	Limit  int32
	Offset int32
}

func (q *Queries) ListLedgerEntriesByUser(ctx context.Context, arg ListLedgerEntriesByUserParams) ([]models.LedgerEntry, error) {
	const sql = `SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := q.db.Query(ctx, sql, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

type UserLedgerStatsRow struct {
	TotalSent        decimal.Decimal
	TotalReceived    decimal.Decimal
	TransactionCount int64
}

// GetUserLedgerStats aggregates completed money-moving entries only.
// Payment request rows are markers, not movements, and are excluded.
func (q *Queries) GetUserLedgerStats(ctx context.Context, userID uuid.UUID) (UserLedgerStatsRow, error) {
	const sql = `SELECT
		COALESCE(SUM(amount) FILTER (WHERE from_user_id = $1 AND type IN ('transfer_sent', 'withdrawal')), 0),
		COALESCE(SUM(amount) FILTER (WHERE to_user_id = $1 AND type IN ('transfer_sent', 'deposit')), 0),
		COUNT(*)
		FROM ledger_entries
		WHERE status = 'completed'
		  AND type IN ('transfer_sent', 'deposit', 'withdrawal')
		  AND (from_user_id = $1 OR to_user_id = $1)`
	var row UserLedgerStatsRow
	err := q.db.QueryRow(ctx, sql, userID).Scan(&row.TotalSent, &row.TotalReceived, &row.TransactionCount)
	return row, err
}

// --- reconciliation ---

type WalletImbalanceRow struct {
	WalletID  uuid.UUID
	UserID    uuid.UUID
	Currency  string
	Balance   decimal.Decimal
	LedgerNet decimal.Decimal
}

// GetWalletImbalances returns wallets whose balance diverged from the
// net of their completed ledger entries. An empty result means the
// ledger is consistent.
func (q *Queries) GetWalletImbalances(ctx context.Context) ([]WalletImbalanceRow, error) {
	const sql = `SELECT w.id, w.user_id, w.currency, w.balance, COALESCE(l.net, 0)
		FROM wallets w
		LEFT JOIN (
			SELECT wallet_id, SUM(delta) AS net FROM (
				SELECT to_wallet_id AS wallet_id, amount AS delta
				FROM ledger_entries
				WHERE status = 'completed' AND to_wallet_id IS NOT NULL AND type IN ('transfer_sent', 'deposit')
				UNION ALL
				SELECT from_wallet_id, -amount
				FROM ledger_entries
				WHERE status = 'completed' AND from_wallet_id IS NOT NULL AND type IN ('transfer_sent', 'withdrawal')
			) deltas
			GROUP BY wallet_id
		) l ON l.wallet_id = w.id
		WHERE w.balance <> COALESCE(l.net, 0)`
	rows, err := q.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WalletImbalanceRow
	for rows.Next() {
		var r WalletImbalanceRow
		if err := rows.Scan(&r.WalletID, &r.UserID, &r.Currency, &r.Balance, &r.LedgerNet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- idempotency keys ---

type IdempotencyKeyRow struct {
	IdempotencyKey string
	RequestHash    string
	ResponseStatus int32
	ResponseBody   []byte
	ContentType    string
	InProgress     bool
}

func (q *Queries) GetIdempotencyKey(ctx context.Context, key string) (IdempotencyKeyRow, error) {
	const sql = `SELECT idempotency_key, request_hash, response_status, response_body, content_type, in_progress
		FROM idempotency_keys WHERE idempotency_key = $1`
	var row IdempotencyKeyRow
	err := q.db.QueryRow(ctx, sql, key).
		Scan(&row.IdempotencyKey, &row.RequestHash, &row.ResponseStatus, &row.ResponseBody, &row.ContentType, &row.InProgress)
	return row, err
}

type ReserveIdempotencyKeyParams struct {
	IdempotencyKey string
	RequestHash    string
	Method         string
	Path           string
}

// ReserveIdempotencyKey claims a key for the current request. Returns
// pgx.ErrNoRows when another request already holds it.
func (q *Queries) ReserveIdempotencyKey(ctx context.Context, arg ReserveIdempotencyKeyParams) (string, error) {
	const sql = `INSERT INTO idempotency_keys (idempotency_key, request_hash, method, path, in_progress, created_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW())
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING idempotency_key`
	var key string
	err := q.db.QueryRow(ctx, sql, arg.IdempotencyKey, arg.RequestHash, arg.Method, arg.Path).Scan(&key)
	return key, err
}

type FinalizeIdempotencyKeyParams struct {
	ResponseStatus int32
	ResponseBody   []byte
	ContentType    string
	IdempotencyKey string
	RequestHash    string
}

func (q *Queries) FinalizeIdempotencyKey(ctx context.Context, arg FinalizeIdempotencyKeyParams) (IdempotencyKeyRow, error) {
	const sql = `UPDATE idempotency_keys
		SET response_status = $1, response_body = $2, content_type = $3, in_progress = FALSE
		WHERE idempotency_key = $4 AND request_hash = $5
		RETURNING idempotency_key, request_hash, response_status, response_body, content_type, in_progress`
	var row IdempotencyKeyRow
	err := q.db.QueryRow(ctx, sql, arg.ResponseStatus, arg.ResponseBody, arg.ContentType, arg.IdempotencyKey, arg.RequestHash).
		Scan(&row.IdempotencyKey, &row.RequestHash, &row.ResponseStatus, &row.ResponseBody, &row.ContentType, &row.InProgress)
	return row, err
}

// --- audit log ---

type InsertAuditLogParams struct {
	EntityType string
	EntityID   uuid.UUID
	ActorID    *uuid.UUID
	Action     string
	PrevState  *string
	NextState  *string
	Metadata   []byte
}

func (q *Queries) InsertAuditLog(ctx context.Context, arg InsertAuditLogParams) error {
	const sql = `INSERT INTO audit_log (entity_type, entity_id, actor_id, action, prev_state, next_state, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`
	_, err := q.db.Exec(ctx, sql, arg.EntityType, arg.EntityID, arg.ActorID, arg.Action, arg.PrevState, arg.NextState, arg.Metadata)
	return err
}

func nullableText(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
