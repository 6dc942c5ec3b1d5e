package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smdiabate/wallet-ledger/internal/models"
	"github.com/smdiabate/wallet-ledger/internal/repository"
)

func TestDirectoryFindUserByPhone(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := NewDirectoryService(repository.NewStore(db))

	user := seedUser(t, db, "aminata", decimal.Zero)

	found, err := svc.FindUserByPhone(ctx, user.Phone)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, user.Phone, found.Phone)

	_, err = svc.FindUserByPhone(ctx, "+22500000000")
	require.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = svc.FindUserByPhone(ctx, "")
	require.ErrorIs(t, err, models.ErrUserNotFound)
}
