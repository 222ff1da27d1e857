// Copyright 2026 Rasul Khiriev
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/models"
)

// grantColumns is the full column list returned by every grant query, in
// scanGrant order.
var grantColumns = []string{
	"grant_id", "owner_id", "recipient_email", "recipient_id",
	"item_ciphertext", "status", "access_level", "expires_at",
	"auto_revoke_after_use", "can_auto_login", "revoke_after",
	"status_reason", "created_at", "updated_at",
}

// grantRepository is the PostgreSQL-backed implementation of
// [GrantRepository]. Status changes go through conditional UPDATEs guarded
// by the expected prior statuses, so concurrent transitions of the same
// grant resolve to exactly one winner.
type grantRepository struct {
	logger  *logger.Logger
	db      *DB
	builder sq.StatementBuilderType
}

func NewGrantRepository(db *DB, logger *logger.Logger) GrantRepository {
	logger.Debug().Msg("creating grant repository")
	return &grantRepository{
		db:      db,
		logger:  logger,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *grantRepository) CreateGrant(ctx context.Context, grant models.AccessGrant) (models.AccessGrant, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Insert(grant.TableName()).
		Columns("grant_id", "owner_id", "recipient_email", "item_ciphertext",
			"status", "access_level", "expires_at",
			"auto_revoke_after_use", "can_auto_login").
		Values(grant.GrantID, grant.OwnerID, grant.RecipientEmail, grant.ItemCiphertext,
			grant.Status, grant.AccessLevel, grant.ExpiresAt,
			grant.AutoRevokeAfterUse, grant.CanAutoLogin).
		Suffix(returningGrant()).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*grantRepository.CreateGrant").Msg("failed to build query")
		return models.AccessGrant{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	if err := scanGrant(row, &grant); err != nil {
		log.Err(err).Str("func", "*grantRepository.CreateGrant").Msg("error: scanning error")
		return models.AccessGrant{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return grant, nil
}

func (r *grantRepository) GetGrant(ctx context.Context, grantID string) (models.AccessGrant, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Select(grantColumns...).
		From(models.AccessGrant{}.TableName()).
		Where(sq.Eq{"grant_id": grantID}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*grantRepository.GetGrant").Msg("failed to build query")
		return models.AccessGrant{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var grant models.AccessGrant
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := scanGrant(row, &grant); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AccessGrant{}, ErrGrantNotFound
		}
		log.Err(err).Str("func", "*grantRepository.GetGrant").Str("grant_id", grantID).Msg("error: scanning error")
		return models.AccessGrant{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return grant, nil
}

func (r *grantRepository) ListGrantsByOwner(ctx context.Context, ownerID int64) ([]models.AccessGrant, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Select(grantColumns...).
		From(models.AccessGrant{}.TableName()).
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*grantRepository.ListGrantsByOwner").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*grantRepository.ListGrantsByOwner").Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	grants := make([]models.AccessGrant, 0, 8)
	for rows.Next() {
		var grant models.AccessGrant
		if err := scanGrantRows(rows, &grant); err != nil {
			log.Err(err).Str("func", "*grantRepository.ListGrantsByOwner").Msg("error: scanning error")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return grants, nil
}

func (r *grantRepository) TransitionStatus(ctx context.Context, grantID string, from []models.GrantStatus, to models.GrantStatus, reason string) (models.AccessGrant, error) {
	log := logger.FromContext(ctx)

	fromStatuses := make([]string, 0, len(from))
	for _, status := range from {
		fromStatuses = append(fromStatuses, string(status))
	}

	query, args, err := r.builder.
		Update(models.AccessGrant{}.TableName()).
		Set("status", to).
		Set("status_reason", reason).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"grant_id": grantID, "status": fromStatuses}).
		Suffix(returningGrant()).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*grantRepository.TransitionStatus").Msg("failed to build query")
		return models.AccessGrant{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var grant models.AccessGrant
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := scanGrant(row, &grant); err != nil {
		// no row matched the guard: the grant is already past the
		// expected states (or does not exist)
		if errors.Is(err, sql.ErrNoRows) {
			return models.AccessGrant{}, ErrStateConflict
		}
		log.Err(err).Str("func", "*grantRepository.TransitionStatus").Str("grant_id", grantID).Msg("error: scanning error")
		return models.AccessGrant{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return grant, nil
}

func (r *grantRepository) BindRecipient(ctx context.Context, grantID string, recipientID int64) error {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Update(models.AccessGrant{}.TableName()).
		Set("recipient_id", recipientID).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"grant_id": grantID}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*grantRepository.BindRecipient").Msg("failed to build query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*grantRepository.BindRecipient").Str("grant_id", grantID).Msg("failed to bind recipient")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrGrantNotFound
	}

	return nil
}

func (r *grantRepository) ScheduleAutoRevoke(ctx context.Context, grantID string, at time.Time) error {
	log := logger.FromContext(ctx)

	// COALESCE keeps the first scheduled deadline: repeat logins on the
	// same grant must not push the revoke forward.
	query, args, err := r.builder.
		Update(models.AccessGrant{}.TableName()).
		Set("revoke_after", sq.Expr("COALESCE(revoke_after, ?)", at)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"grant_id": grantID, "status": string(models.GrantActive)}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*grantRepository.ScheduleAutoRevoke").Msg("failed to build query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*grantRepository.ScheduleAutoRevoke").Str("grant_id", grantID).Msg("failed to schedule auto-revoke")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *grantRepository) SweepExpired(ctx context.Context, now time.Time) ([]string, error) {
	log := logger.FromContext(ctx)

	nonTerminal := []string{
		string(models.GrantPending),
		string(models.GrantAccepted),
		string(models.GrantActive),
	}

	query, args, err := r.builder.
		Update(models.AccessGrant{}.TableName()).
		Set("status", models.GrantExpired).
		Set("status_reason", models.RevokeReasonExpired).
		Set("updated_at", now).
		Where(sq.Eq{"status": nonTerminal}).
		Where(sq.Lt{"expires_at": now}).
		Suffix("RETURNING grant_id").
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*grantRepository.SweepExpired").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.queryGrantIDs(ctx, "*grantRepository.SweepExpired", query, args)
}

func (r *grantRepository) ListDueAutoRevokes(ctx context.Context, now time.Time) ([]string, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Select("grant_id").
		From(models.AccessGrant{}.TableName()).
		Where(sq.Eq{"status": string(models.GrantActive)}).
		Where(sq.LtOrEq{"revoke_after": now}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*grantRepository.ListDueAutoRevokes").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.queryGrantIDs(ctx, "*grantRepository.ListDueAutoRevokes", query, args)
}

func (r *grantRepository) queryGrantIDs(ctx context.Context, caller string, query string, args []any) ([]string, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", caller).Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	ids := make([]string, 0, 4)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			log.Err(err).Str("func", caller).Msg("error: scanning error")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return ids, nil
}

func returningGrant() string {
	return "RETURNING grant_id, owner_id, recipient_email, recipient_id, " +
		"item_ciphertext, status, access_level, expires_at, " +
		"auto_revoke_after_use, can_auto_login, revoke_after, " +
		"status_reason, created_at, updated_at"
}

func scanGrant(row *sql.Row, grant *models.AccessGrant) error {
	return row.Scan(
		&grant.GrantID, &grant.OwnerID, &grant.RecipientEmail, &grant.RecipientID,
		&grant.ItemCiphertext, &grant.Status, &grant.AccessLevel, &grant.ExpiresAt,
		&grant.AutoRevokeAfterUse, &grant.CanAutoLogin, &grant.RevokeAfter,
		&grant.StatusReason, &grant.CreatedAt, &grant.UpdatedAt,
	)
}

func scanGrantRows(rows *sql.Rows, grant *models.AccessGrant) error {
	return rows.Scan(
		&grant.GrantID, &grant.OwnerID, &grant.RecipientEmail, &grant.RecipientID,
		&grant.ItemCiphertext, &grant.Status, &grant.AccessLevel, &grant.ExpiresAt,
		&grant.AutoRevokeAfterUse, &grant.CanAutoLogin, &grant.RevokeAfter,
		&grant.StatusReason, &grant.CreatedAt, &grant.UpdatedAt,
	)
}
