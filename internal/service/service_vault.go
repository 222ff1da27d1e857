package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/store"
	"github.com/MKhiriev/go-vault-trust/models"
)

// vaultService is the concrete implementation of VaultService. It treats the
// vault as an opaque ciphertext: no field of it is ever inspected, decrypted
// or validated beyond being non-empty.
type vaultService struct {
	vaultRepository store.VaultRepository
	logger          *logger.Logger
}

func NewVaultService(vaultRepository store.VaultRepository, logger *logger.Logger) VaultService {
	return &vaultService{
		vaultRepository: vaultRepository,
		logger:          logger,
	}
}

// GetVault returns the caller's vault ciphertext. A user who has never
// saved a vault gets store.ErrVaultNotFound, which clients treat as "start
// with an empty vault" rather than as a failed decrypt.
func (v *vaultService) GetVault(ctx context.Context, userID int64) (models.VaultBlob, error) {
	log := logger.FromContext(ctx)

	blob, err := v.vaultRepository.GetVault(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("vault lookup failed")
		return models.VaultBlob{}, fmt.Errorf("vault lookup failed: %w", err)
	}

	return blob, nil
}

// SaveVault overwrites the caller's vault ciphertext. Concurrent device
// writes race and the last successful write wins; merging happens
// client-side before saving.
func (v *vaultService) SaveVault(ctx context.Context, blob models.VaultBlob) (models.VaultBlob, error) {
	log := logger.FromContext(ctx)

	if blob.UserID == 0 || blob.Ciphertext == "" {
		log.Error().Int64("user_id", blob.UserID).Msg("invalid vault data provided")
		return models.VaultBlob{}, ErrInvalidDataProvided
	}

	saved, err := v.vaultRepository.UpsertVault(ctx, blob)
	if err != nil {
		log.Err(err).Int64("user_id", blob.UserID).Msg("vault save failed")
		return models.VaultBlob{}, fmt.Errorf("vault save failed: %w", err)
	}

	return saved, nil
}
