package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/models"
)

// auditRepository is the PostgreSQL-backed implementation of
// [AuditRepository].
type auditRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewAuditRepository(db *DB, logger *logger.Logger) AuditRepository {
	logger.Debug().Msg("creating audit repository")
	return &auditRepository{
		db:     db,
		logger: logger,
	}
}

func (r *auditRepository) AppendEvent(ctx context.Context, event models.AuditEvent) (models.AuditEvent, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, appendAuditEvent,
		event.GrantID, event.SessionID, event.ActorID, event.EventType, event.Details)

	if err := row.Scan(
		&event.EventID, &event.GrantID, &event.SessionID,
		&event.ActorID, &event.EventType, &event.Details, &event.CreatedAt,
	); err != nil {
		log.Err(err).Str("func", "*auditRepository.AppendEvent").Msg("error: scanning error")
		return models.AuditEvent{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return event, nil
}

func (r *auditRepository) ListEventsForGrant(ctx context.Context, grantID string) ([]models.AuditEvent, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, listAuditEventsForGrant, grantID)
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.ListEventsForGrant").Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	events := make([]models.AuditEvent, 0, 16)
	for rows.Next() {
		var event models.AuditEvent
		if err := rows.Scan(
			&event.EventID, &event.GrantID, &event.SessionID,
			&event.ActorID, &event.EventType, &event.Details, &event.CreatedAt,
		); err != nil {
			log.Err(err).Str("func", "*auditRepository.ListEventsForGrant").Msg("error: scanning error")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return events, nil
}
