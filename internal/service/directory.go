package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/smdiabate/wallet-ledger/internal/models"
)

// DirectoryService resolves transfer recipients from a phone number.
// It fronts the user directory so the transfer surface never touches
// user storage directly.
type DirectoryService struct {
	store QueryStore
}

func NewDirectoryService(store QueryStore) *DirectoryService {
	return &DirectoryService{store: store}
}

// FindUserByPhone returns the directory record for a phone number, or
// ErrUserNotFound when the number is unknown.
func (s *DirectoryService) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	if phone == "" {
		return nil, models.ErrUserNotFound
	}
	user, err := s.store.Queries().GetUserByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, wrapStoreErr(fmt.Errorf("lookup user by phone: %w", err))
	}
	return user, nil
}
