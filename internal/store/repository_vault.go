package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/models"
)

// vaultRepository is the PostgreSQL-backed implementation of
// [VaultRepository]. The server only ever moves the opaque ciphertext in and
// out of the "vault_blobs" table; it has no way to decrypt it.
type vaultRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewVaultRepository(db *DB, logger *logger.Logger) VaultRepository {
	logger.Debug().Msg("creating vault repository")
	return &vaultRepository{
		db:     db,
		logger: logger,
	}
}

// GetVault fetches the user's vault blob.
//
// Returns [ErrVaultNotFound] when the user has not stored a blob yet, so
// callers can distinguish "new vault" from any decryption failure that can
// only happen client-side afterwards.
func (r *vaultRepository) GetVault(ctx context.Context, userID int64) (models.VaultBlob, error) {
	log := logger.FromContext(ctx)

	var blob models.VaultBlob
	row := r.db.QueryRowContext(ctx, getVault, userID)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*vaultRepository.GetVault").Int64("user_id", userID).Msg("error: row is nil")
		return models.VaultBlob{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := row.Scan(&blob.UserID, &blob.Ciphertext, &blob.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.VaultBlob{}, ErrVaultNotFound
		}
		log.Err(err).Str("func", "*vaultRepository.GetVault").Int64("user_id", userID).Msg("error: scanning error")
		return models.VaultBlob{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return blob, nil
}

// UpsertVault stores the blob, overwriting any previous version. Concurrent
// devices of the same user race here: the last successful write wins, there
// is no merge.
func (r *vaultRepository) UpsertVault(ctx context.Context, blob models.VaultBlob) (models.VaultBlob, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, upsertVault, blob.UserID, blob.Ciphertext)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*vaultRepository.UpsertVault").Int64("user_id", blob.UserID).Msg("error: row is nil")
		return models.VaultBlob{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	var saved models.VaultBlob
	if err := row.Scan(&saved.UserID, &saved.Ciphertext, &saved.UpdatedAt); err != nil {
		log.Err(err).Str("func", "*vaultRepository.UpsertVault").Int64("user_id", blob.UserID).Msg("error: scanning error")
		return models.VaultBlob{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return saved, nil
}
