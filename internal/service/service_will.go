package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/store"
	"github.com/MKhiriev/go-vault-trust/models"
)

// willService is the concrete implementation of WillService. One digital
// will per owner; saving again replaces the previous configuration.
type willService struct {
	willRepository  store.WillRepository
	userRepository  store.UserRepository
	auditRepository store.AuditRepository
	logger          *logger.Logger
}

func NewWillService(willRepository store.WillRepository, userRepository store.UserRepository, auditRepository store.AuditRepository, logger *logger.Logger) WillService {
	return &willService{
		willRepository:  willRepository,
		userRepository:  userRepository,
		auditRepository: auditRepository,
		logger:          logger,
	}
}

// UpsertWill saves the owner's digital will configuration, last write wins.
func (w *willService) UpsertWill(ctx context.Context, will models.DigitalWillConfig) (models.DigitalWillConfig, error) {
	log := logger.FromContext(ctx)

	if will.OwnerID == 0 || !models.ValidWillCondition(will.Condition) || !models.ValidWillAction(will.Action) || will.BeneficiaryEmail == "" {
		log.Error().Int64("owner_id", will.OwnerID).Msg("invalid will data provided")
		return models.DigitalWillConfig{}, ErrInvalidDataProvided
	}

	owner, err := w.userRepository.FindUserByID(ctx, will.OwnerID)
	if err != nil {
		log.Err(err).Int64("owner_id", will.OwnerID).Msg("owner lookup failed")
		return models.DigitalWillConfig{}, fmt.Errorf("owner lookup failed: %w", err)
	}
	will.OwnerEmail = owner.Email

	saved, err := w.willRepository.UpsertWill(ctx, will)
	if err != nil {
		log.Err(err).Int64("owner_id", will.OwnerID).Msg("will save failed")
		return models.DigitalWillConfig{}, fmt.Errorf("will save failed: %w", err)
	}

	if _, err := w.auditRepository.AppendEvent(ctx, models.AuditEvent{
		ActorID:   will.OwnerID,
		EventType: models.AuditWillUpdated,
	}); err != nil {
		log.Err(err).Int64("owner_id", will.OwnerID).Msg("audit append failed")
	}

	return saved, nil
}

// GetWill returns the caller's digital will configuration.
func (w *willService) GetWill(ctx context.Context, ownerID int64) (models.DigitalWillConfig, error) {
	log := logger.FromContext(ctx)

	owner, err := w.userRepository.FindUserByID(ctx, ownerID)
	if err != nil {
		log.Err(err).Int64("owner_id", ownerID).Msg("owner lookup failed")
		return models.DigitalWillConfig{}, fmt.Errorf("owner lookup failed: %w", err)
	}

	will, err := w.willRepository.GetWillByEmail(ctx, owner.Email)
	if err != nil {
		log.Err(err).Int64("owner_id", ownerID).Msg("will lookup failed")
		return models.DigitalWillConfig{}, fmt.Errorf("will lookup failed: %w", err)
	}

	return will, nil
}
