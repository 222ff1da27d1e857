package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/models"
)

// sessionRepository is the PostgreSQL-backed implementation of
// [SessionRepository]. Sessions are never deleted: a closed session keeps
// its row with logged_out_at and logout_reason filled in.
type sessionRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewSessionRepository(db *DB, logger *logger.Logger) SessionRepository {
	logger.Debug().Msg("creating session repository")
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *sessionRepository) CreateSession(ctx context.Context, session models.AccessSession) (models.AccessSession, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createSession,
		session.SessionID, session.GrantID, session.UserID,
		session.SessionToken, session.LoggedInAt)

	if err := scanSession(row, &session); err != nil {
		log.Err(err).Str("func", "*sessionRepository.CreateSession").Msg("error: scanning error")
		return models.AccessSession{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return session, nil
}

func (r *sessionRepository) GetSession(ctx context.Context, sessionID string) (models.AccessSession, error) {
	log := logger.FromContext(ctx)

	var session models.AccessSession
	row := r.db.QueryRowContext(ctx, getSession, sessionID)

	if err := scanSession(row, &session); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AccessSession{}, ErrSessionNotFound
		}
		log.Err(err).Str("func", "*sessionRepository.GetSession").Str("session_id", sessionID).Msg("error: scanning error")
		return models.AccessSession{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return session, nil
}

func (r *sessionRepository) CloseSessionsForGrant(ctx context.Context, grantID string, reason string, at time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, closeSessionsForGrant, grantID, reason, at)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.CloseSessionsForGrant").Str("grant_id", grantID).Msg("failed to close sessions")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected, nil
}

func (r *sessionRepository) CloseIdleSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, closeIdleSessions, models.LogoutReasonTimeout, cutoff)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.CloseIdleSessions").Msg("failed to close idle sessions")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected, nil
}

func (r *sessionRepository) TouchSession(ctx context.Context, sessionID string, at time.Time) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, touchSession, sessionID, at)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.TouchSession").Str("session_id", sessionID).Msg("failed to touch session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func scanSession(row *sql.Row, session *models.AccessSession) error {
	return row.Scan(
		&session.SessionID, &session.GrantID, &session.UserID,
		&session.SessionToken, &session.LoggedInAt, &session.LastActivityAt,
		&session.LoggedOutAt, &session.LogoutReason,
	)
}
