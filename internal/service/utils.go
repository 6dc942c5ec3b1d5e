package service

import (
	"encoding/json"
	"fmt"

	"github.com/smdiabate/wallet-ledger/internal/models"
	"github.com/smdiabate/wallet-ledger/internal/repository"
)

func requireExactlyOne(rows int64, operation string) error {
	if rows != 1 {
		return fmt.Errorf("%s affected %d rows", operation, rows)
	}
	return nil
}

// wrapStoreErr converts retry-safe storage failures into the typed
// transient error so callers can distinguish them from business errors.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if repository.IsTransient(err) {
		return fmt.Errorf("%v: %w", err, models.ErrTransientStore)
	}
	return err
}

func metadataJSON(meta map[string]any) ([]byte, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return payload, nil
}
