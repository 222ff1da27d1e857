package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/models"
)

// willRepository is the PostgreSQL-backed implementation of
// [WillRepository]. One row per owner; saving again replaces the previous
// configuration.
type willRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewWillRepository(db *DB, logger *logger.Logger) WillRepository {
	logger.Debug().Msg("creating will repository")
	return &willRepository{
		db:     db,
		logger: logger,
	}
}

func (r *willRepository) UpsertWill(ctx context.Context, will models.DigitalWillConfig) (models.DigitalWillConfig, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, upsertWill,
		will.OwnerID, will.OwnerEmail, will.Condition, will.Action, will.BeneficiaryEmail)

	if err := scanWill(row, &will); err != nil {
		log.Err(err).Str("func", "*willRepository.UpsertWill").Msg("error: scanning error")
		return models.DigitalWillConfig{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return will, nil
}

func (r *willRepository) GetWillByEmail(ctx context.Context, ownerEmail string) (models.DigitalWillConfig, error) {
	log := logger.FromContext(ctx)

	var will models.DigitalWillConfig
	row := r.db.QueryRowContext(ctx, getWillByEmail, ownerEmail)

	if err := scanWill(row, &will); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DigitalWillConfig{}, ErrWillNotFound
		}
		log.Err(err).Str("func", "*willRepository.GetWillByEmail").Msg("error: scanning error")
		return models.DigitalWillConfig{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return will, nil
}

func scanWill(row *sql.Row, will *models.DigitalWillConfig) error {
	return row.Scan(
		&will.OwnerID, &will.OwnerEmail, &will.Condition,
		&will.Action, &will.BeneficiaryEmail, &will.UpdatedAt,
	)
}
