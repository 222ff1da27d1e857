// Copyright 2026 Rasul Khiriev
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/store"
	"github.com/MKhiriev/go-vault-trust/internal/utils"
	"github.com/MKhiriev/go-vault-trust/models"
)

// emergencyService is the concrete implementation of EmergencyService.
//
// Nothing in this flow decrypts anything: on approval the target's vault
// ciphertext is copied, still sealed, into the request record. How the
// requester obtains a decryption capability is out of band.
type emergencyService struct {
	emergencyRepository store.EmergencyRepository
	willRepository      store.WillRepository
	userRepository      store.UserRepository
	vaultRepository     store.VaultRepository
	auditRepository     store.AuditRepository
	uuidGenerator       *utils.UUIDGenerator
	logger              *logger.Logger
}

func NewEmergencyService(repos *store.Repositories, logger *logger.Logger) EmergencyService {
	return &emergencyService{
		emergencyRepository: repos.EmergencyRepository,
		willRepository:      repos.WillRepository,
		userRepository:      repos.UserRepository,
		vaultRepository:     repos.VaultRepository,
		auditRepository:     repos.AuditRepository,
		uuidGenerator:       utils.NewUUIDGenerator(),
		logger:              logger,
	}
}

// SubmitRequest files an emergency access request against a vault owner's
// digital will. The target must exist and have a will configured; the
// request starts pending and waits for a human administrator.
func (e *emergencyService) SubmitRequest(ctx context.Context, request models.EmergencyRequest) (models.EmergencyRequest, error) {
	log := logger.FromContext(ctx)

	if request.RequesterEmail == "" || request.TargetUserEmail == "" || !models.ValidWillCondition(request.RequestType) {
		log.Error().Str("target", request.TargetUserEmail).Msg("invalid emergency request data provided")
		return models.EmergencyRequest{}, ErrInvalidDataProvided
	}

	if _, err := e.willRepository.GetWillByEmail(ctx, request.TargetUserEmail); err != nil {
		if errors.Is(err, store.ErrWillNotFound) {
			return models.EmergencyRequest{}, ErrInvalidDataProvided
		}
		log.Err(err).Str("target", request.TargetUserEmail).Msg("will lookup failed")
		return models.EmergencyRequest{}, fmt.Errorf("will lookup failed: %w", err)
	}

	request.RequestID = e.uuidGenerator.Generate()
	request.Status = models.EmergencyPending

	created, err := e.emergencyRepository.CreateRequest(ctx, request)
	if err != nil {
		log.Err(err).Str("target", request.TargetUserEmail).Msg("emergency request creation failed")
		return models.EmergencyRequest{}, fmt.Errorf("emergency request creation failed: %w", err)
	}

	return created, nil
}

// ListRequests returns requests for the admin review queue, optionally
// filtered by status.
func (e *emergencyService) ListRequests(ctx context.Context, status models.EmergencyStatus) ([]models.EmergencyRequest, error) {
	log := logger.FromContext(ctx)

	requests, err := e.emergencyRepository.ListRequests(ctx, status)
	if err != nil {
		log.Err(err).Msg("emergency request listing failed")
		return nil, fmt.Errorf("emergency request listing failed: %w", err)
	}

	return requests, nil
}

// Decide records the administrator's terminal verdict on a pending request.
//
// Approval copies the target's vault ciphertext into the request under the
// same conditional update that flips the status, so the handover happens
// exactly once even under concurrent decisions. Re-deciding returns
// ErrRequestAlreadyProcessed.
func (e *emergencyService) Decide(ctx context.Context, requestID string, decision models.EmergencyDecisionRequest, adminID int64) (models.EmergencyRequest, error) {
	log := logger.FromContext(ctx)

	if decision.Status != models.EmergencyApproved && decision.Status != models.EmergencyRejected {
		return models.EmergencyRequest{}, ErrInvalidDataProvided
	}

	var grantedVaultData *string
	if decision.Status == models.EmergencyApproved {
		request, err := e.emergencyRepository.GetRequest(ctx, requestID)
		if err != nil {
			log.Err(err).Str("request_id", requestID).Msg("emergency request lookup failed")
			return models.EmergencyRequest{}, fmt.Errorf("emergency request lookup failed: %w", err)
		}

		target, err := e.userRepository.FindUserByEmail(ctx, request.TargetUserEmail)
		if err != nil {
			log.Err(err).Str("target", request.TargetUserEmail).Msg("target lookup failed")
			return models.EmergencyRequest{}, fmt.Errorf("target lookup failed: %w", err)
		}

		blob, err := e.vaultRepository.GetVault(ctx, target.UserID)
		if err != nil {
			log.Err(err).Str("target", request.TargetUserEmail).Msg("target vault lookup failed")
			return models.EmergencyRequest{}, fmt.Errorf("target vault lookup failed: %w", err)
		}
		grantedVaultData = &blob.Ciphertext
	}

	decided, err := e.emergencyRepository.DecideRequest(ctx, requestID, decision.Status, decision.AdminNotes, adminID, grantedVaultData)
	if err != nil {
		if errors.Is(err, store.ErrStateConflict) {
			return models.EmergencyRequest{}, ErrRequestAlreadyProcessed
		}
		log.Err(err).Str("request_id", requestID).Msg("emergency decision failed")
		return models.EmergencyRequest{}, fmt.Errorf("emergency decision failed: %w", err)
	}

	if _, err := e.auditRepository.AppendEvent(ctx, models.AuditEvent{
		ActorID:   adminID,
		EventType: models.AuditEmergencyDecided,
		Details:   string(decided.Status),
	}); err != nil {
		log.Err(err).Str("request_id", requestID).Msg("audit append failed")
	}

	e.notifyDecision(ctx, decided)

	return decided, nil
}

// notifyDecision tells the requester about the outcome. Fire and forget:
// a failed notification is logged and never rolls back the decision.
func (e *emergencyService) notifyDecision(ctx context.Context, request models.EmergencyRequest) {
	log := logger.FromContext(ctx)

	// delivery transport (email) is not wired yet; the log line is the
	// notification until it is
	log.Info().
		Str("request_id", request.RequestID).
		Str("requester", request.RequesterEmail).
		Str("status", string(request.Status)).
		Msg("emergency decision notification")
}
