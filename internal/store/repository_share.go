package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/models"
)

// shareRepository is the PostgreSQL-backed implementation of
// [ShareRepository]: the contact-share mailbox. Rows here are transient —
// once a share is accepted or declined, it is deleted.
type shareRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewShareRepository(db *DB, logger *logger.Logger) ShareRepository {
	logger.Debug().Msg("creating share repository")
	return &shareRepository{
		db:     db,
		logger: logger,
	}
}

func (r *shareRepository) CreateShare(ctx context.Context, share models.ContactShare) (models.ContactShare, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createShare,
		share.SenderID, share.SenderEmail, share.RecipientEmail,
		share.ItemType, share.ItemCiphertext, share.WrappedKey)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*shareRepository.CreateShare").Msg("error: row is nil")
		return models.ContactShare{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := scanShare(row, &share); err != nil {
		log.Err(err).Str("func", "*shareRepository.CreateShare").Msg("error: scanning error")
		return models.ContactShare{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return share, nil
}

func (r *shareRepository) GetShare(ctx context.Context, shareID int64) (models.ContactShare, error) {
	log := logger.FromContext(ctx)

	var share models.ContactShare
	row := r.db.QueryRowContext(ctx, getShare, shareID)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*shareRepository.GetShare").Int64("share_id", shareID).Msg("error: row is nil")
		return models.ContactShare{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := scanShare(row, &share); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ContactShare{}, ErrShareNotFound
		}
		log.Err(err).Str("func", "*shareRepository.GetShare").Int64("share_id", shareID).Msg("error: scanning error")
		return models.ContactShare{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return share, nil
}

func (r *shareRepository) ListSharesForRecipient(ctx context.Context, recipientEmail string) ([]models.ContactShare, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, listSharesForRecipient, recipientEmail)
	if err != nil {
		log.Err(err).Str("func", "*shareRepository.ListSharesForRecipient").Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	shares := make([]models.ContactShare, 0, 8)
	for rows.Next() {
		var share models.ContactShare
		if err := rows.Scan(
			&share.ShareID, &share.SenderID, &share.SenderEmail,
			&share.RecipientEmail, &share.ItemType,
			&share.ItemCiphertext, &share.WrappedKey, &share.CreatedAt,
		); err != nil {
			log.Err(err).Str("func", "*shareRepository.ListSharesForRecipient").Msg("error: scanning error")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return shares, nil
}

// DeleteShare removes the mailbox entry. Zero affected rows is not an
// error: acceptance retries the delete until the entry is gone, and a
// repeated delete must stay safe.
func (r *shareRepository) DeleteShare(ctx context.Context, shareID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, deleteShare, shareID); err != nil {
		log.Err(err).Str("func", "*shareRepository.DeleteShare").Int64("share_id", shareID).Msg("failed to delete share")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func scanShare(row *sql.Row, share *models.ContactShare) error {
	return row.Scan(
		&share.ShareID, &share.SenderID, &share.SenderEmail,
		&share.RecipientEmail, &share.ItemType,
		&share.ItemCiphertext, &share.WrappedKey, &share.CreatedAt,
	)
}
