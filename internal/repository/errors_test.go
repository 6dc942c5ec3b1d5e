package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "ledger_entries_reference_key"}

	assert.True(t, IsUniqueViolation(unique, ""))
	assert.True(t, IsUniqueViolation(unique, "ledger_entries_reference_key"))
	assert.False(t, IsUniqueViolation(unique, "wallets_user_id_key"))

	wrapped := fmt.Errorf("insert ledger entry: %w", unique)
	assert.True(t, IsUniqueViolation(wrapped, "ledger_entries_reference_key"))

	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(errors.New("plain"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}

func TestIsTransient(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03", "57014"} {
		err := fmt.Errorf("query: %w", &pgconn.PgError{Code: code})
		assert.True(t, IsTransient(err), "code %s", code)
	}

	assert.False(t, IsTransient(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsTransient(errors.New("plain")))
}
