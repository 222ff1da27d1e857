// Copyright 2026 Rasul Khiriev
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/models"
)

// emergencyRepository is the PostgreSQL-backed implementation of
// [EmergencyRepository].
type emergencyRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewEmergencyRepository(db *DB, logger *logger.Logger) EmergencyRepository {
	logger.Debug().Msg("creating emergency repository")
	return &emergencyRepository{
		db:     db,
		logger: logger,
	}
}

func (r *emergencyRepository) CreateRequest(ctx context.Context, request models.EmergencyRequest) (models.EmergencyRequest, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createEmergencyRequest,
		request.RequestID, request.RequesterEmail, request.TargetUserEmail,
		request.RequestType, request.ProofDocumentURL)

	if err := scanEmergencyRequest(row, &request); err != nil {
		log.Err(err).Str("func", "*emergencyRepository.CreateRequest").Msg("error: scanning error")
		return models.EmergencyRequest{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return request, nil
}

func (r *emergencyRepository) GetRequest(ctx context.Context, requestID string) (models.EmergencyRequest, error) {
	log := logger.FromContext(ctx)

	var request models.EmergencyRequest
	row := r.db.QueryRowContext(ctx, getEmergencyRequest, requestID)

	if err := scanEmergencyRequest(row, &request); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.EmergencyRequest{}, ErrRequestNotFound
		}
		log.Err(err).Str("func", "*emergencyRepository.GetRequest").Str("request_id", requestID).Msg("error: scanning error")
		return models.EmergencyRequest{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return request, nil
}

// ListRequests returns requests in the given status, or all of them when
// status is empty.
func (r *emergencyRepository) ListRequests(ctx context.Context, status models.EmergencyStatus) ([]models.EmergencyRequest, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, listEmergencyRequests, string(status))
	if err != nil {
		log.Err(err).Str("func", "*emergencyRepository.ListRequests").Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	requests := make([]models.EmergencyRequest, 0, 8)
	for rows.Next() {
		var request models.EmergencyRequest
		if err := rows.Scan(
			&request.RequestID, &request.RequesterEmail, &request.TargetUserEmail,
			&request.RequestType, &request.ProofDocumentURL, &request.Status,
			&request.AdminNotes, &request.GrantedVaultData,
			&request.CreatedAt, &request.DecidedAt, &request.DecidedBy,
		); err != nil {
			log.Err(err).Str("func", "*emergencyRepository.ListRequests").Msg("error: scanning error")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return requests, nil
}

func (r *emergencyRepository) DecideRequest(ctx context.Context, requestID string, status models.EmergencyStatus, notes string, adminID int64, grantedVaultData *string) (models.EmergencyRequest, error) {
	log := logger.FromContext(ctx)

	var request models.EmergencyRequest
	row := r.db.QueryRowContext(ctx, decideEmergencyRequest,
		requestID, string(status), notes, adminID, grantedVaultData)

	if err := scanEmergencyRequest(row, &request); err != nil {
		// zero rows: the request was already decided or never existed
		if errors.Is(err, sql.ErrNoRows) {
			return models.EmergencyRequest{}, ErrStateConflict
		}
		log.Err(err).Str("func", "*emergencyRepository.DecideRequest").Str("request_id", requestID).Msg("error: scanning error")
		return models.EmergencyRequest{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return request, nil
}

func scanEmergencyRequest(row *sql.Row, request *models.EmergencyRequest) error {
	return row.Scan(
		&request.RequestID, &request.RequesterEmail, &request.TargetUserEmail,
		&request.RequestType, &request.ProofDocumentURL, &request.Status,
		&request.AdminNotes, &request.GrantedVaultData,
		&request.CreatedAt, &request.DecidedAt, &request.DecidedBy,
	)
}
