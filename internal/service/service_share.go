package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/store"
	"github.com/MKhiriev/go-vault-trust/models"
)

// shareService is the concrete implementation of ShareService: the
// contact-share mailbox and the identity key directory behind it.
type shareService struct {
	shareRepository store.ShareRepository
	userRepository  store.UserRepository
	logger          *logger.Logger
}

func NewShareService(shareRepository store.ShareRepository, userRepository store.UserRepository, logger *logger.Logger) ShareService {
	return &shareService{
		shareRepository: shareRepository,
		userRepository:  userRepository,
		logger:          logger,
	}
}

// CreateShare persists a pre-sealed mailbox entry for the recipient.
//
// The recipient must exist and have published an identity public key: the
// wrapped item key was sealed to that key on the sender's client, and a
// share at an account without one would be permanently undecryptable.
// Returns ErrNoIdentityKey in that case, never a silent success.
func (s *shareService) CreateShare(ctx context.Context, share models.ContactShare) (models.ContactShare, error) {
	log := logger.FromContext(ctx)

	if share.RecipientEmail == "" || share.ItemCiphertext == "" || share.WrappedKey == "" {
		log.Error().Msg("invalid share data provided")
		return models.ContactShare{}, ErrInvalidDataProvided
	}

	recipient, err := s.userRepository.FindUserByEmail(ctx, share.RecipientEmail)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return models.ContactShare{}, ErrNoIdentityKey
		}
		log.Err(err).Str("recipient", share.RecipientEmail).Msg("recipient lookup failed")
		return models.ContactShare{}, fmt.Errorf("recipient lookup failed: %w", err)
	}
	if !recipient.HasIdentityKey() {
		log.Error().Str("recipient", share.RecipientEmail).Msg("recipient has no identity key")
		return models.ContactShare{}, ErrNoIdentityKey
	}

	created, err := s.shareRepository.CreateShare(ctx, share)
	if err != nil {
		log.Err(err).Str("recipient", share.RecipientEmail).Msg("share creation failed")
		return models.ContactShare{}, fmt.Errorf("share creation failed: %w", err)
	}

	return created, nil
}

// ListInbox returns every pending mailbox entry addressed to the caller.
func (s *shareService) ListInbox(ctx context.Context, recipientEmail string) ([]models.ContactShare, error) {
	log := logger.FromContext(ctx)

	shares, err := s.shareRepository.ListSharesForRecipient(ctx, recipientEmail)
	if err != nil {
		log.Err(err).Str("recipient", recipientEmail).Msg("inbox listing failed")
		return nil, fmt.Errorf("inbox listing failed: %w", err)
	}

	return shares, nil
}

// DeleteShare removes a mailbox entry after the recipient accepted or
// declined it. Acceptance is a move, not a copy: the entry must not outlive
// the merge into the recipient's vault, so clients retry this call until
// the entry is gone and an already-deleted entry is not an error.
func (s *shareService) DeleteShare(ctx context.Context, shareID int64, recipientEmail string) error {
	log := logger.FromContext(ctx)

	share, err := s.shareRepository.GetShare(ctx, shareID)
	if err != nil {
		if errors.Is(err, store.ErrShareNotFound) {
			return nil // already gone, the retry succeeded earlier
		}
		log.Err(err).Int64("share_id", shareID).Msg("share lookup failed")
		return fmt.Errorf("share lookup failed: %w", err)
	}

	if share.RecipientEmail != recipientEmail {
		log.Error().Int64("share_id", shareID).Str("caller", recipientEmail).Msg("share does not belong to caller")
		return ErrUnauthorized
	}

	if err := s.shareRepository.DeleteShare(ctx, shareID); err != nil {
		log.Err(err).Int64("share_id", shareID).Msg("share deletion failed")
		return fmt.Errorf("share deletion failed: %w", err)
	}

	return nil
}

// LookupPublicKey answers an identity key query by email. Accounts that
// exist but never published a key answer ErrNoIdentityKey, the same as the
// sharing path.
func (s *shareService) LookupPublicKey(ctx context.Context, email string) (models.PublicKeyResponse, error) {
	log := logger.FromContext(ctx)

	if email == "" {
		return models.PublicKeyResponse{}, ErrInvalidDataProvided
	}

	user, err := s.userRepository.FindUserByEmail(ctx, email)
	if err != nil {
		log.Err(err).Str("email", email).Msg("user search by email failed")
		return models.PublicKeyResponse{}, fmt.Errorf("user search by email failed: %w", err)
	}
	if !user.HasIdentityKey() {
		return models.PublicKeyResponse{}, ErrNoIdentityKey
	}

	return models.PublicKeyResponse{
		Email:     user.Email,
		PublicKey: user.PublicKey,
	}, nil
}
