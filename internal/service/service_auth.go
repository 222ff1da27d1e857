// Copyright 2026 Rasul Khiriev
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"crypto/hmac"
	"fmt"
	"time"

	"github.com/MKhiriev/go-vault-trust/internal/config"
	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/store"
	"github.com/MKhiriev/go-vault-trust/internal/utils"
	"github.com/MKhiriev/go-vault-trust/models"
)

// authService is the concrete implementation of AuthService.
//
// The client never sends its master password: it sends an auth verifier
// derived from the master key. The verifier is hashed once more with a
// server-side HMAC key before storage and comparison, so a database dump
// alone is not enough to replay a login.
type authService struct {
	// userRepository is the data-access layer used to create and look up users.
	userRepository store.UserRepository

	// hashKey is the HMAC secret applied to client-supplied auth verifiers
	// before storage or comparison. Must match the value used at
	// registration time.
	hashKey string

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given UserRepository
// and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction.
func NewAuthService(userRepository store.UserRepository, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		userRepository: userRepository,
		hashKey:        cfg.VerifierHashKey,
		tokenSignKey:   cfg.TokenSignKey,
		tokenIssuer:    cfg.TokenIssuer,
		tokenDuration:  cfg.TokenDuration,
		logger:         logger,
	}
}

// RegisterUser creates a new account.
//
// The user record must arrive with the client-derived key material already
// in place: auth verifier, KDF salt, wrapped vault key and (optionally) the
// identity keypair. The server stores them opaquely.
//
// Returns the persisted user (with a server-assigned UserID) or:
//   - ErrInvalidDataProvided if email, verifier, salt or wrapped key is empty.
//   - A wrapped storage error if the repository call fails (e.g. email
//     already taken — see store.ErrEmailAlreadyExists).
func (a *authService) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if user.Email == "" || user.AuthHash == "" || user.EncryptionSalt == "" || user.EncryptedVaultKey == "" {
		log.Error().Str("email", user.Email).Msg("invalid user data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	a.hashVerifier(&user)

	registeredUser, err := a.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("email", user.Email).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	return registeredUser, nil
}

// Login authenticates an existing user by comparing auth verifiers.
//
// Returns the authenticated user record or:
//   - ErrInvalidDataProvided if email or verifier is empty.
//   - A wrapped storage error if the lookup fails (e.g. user not found —
//     see store.ErrNoUserWasFound).
//   - ErrWrongPassword if the verifiers do not match.
func (a *authService) Login(ctx context.Context, email string, authHash string) (models.User, error) {
	log := logger.FromContext(ctx)

	if email == "" || authHash == "" {
		log.Error().Str("email", email).Msg("invalid user data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	foundUser, err := a.userRepository.FindUserByEmail(ctx, email)
	if err != nil {
		log.Err(err).Str("email", email).Msg("user search by email failed")
		return models.User{}, fmt.Errorf("user search by email failed: %w", err)
	}

	hardened := utils.HashString(authHash, a.hashKey)
	if !hmac.Equal([]byte(foundUser.AuthHash), []byte(hardened)) {
		log.Error().
			Int64("id", foundUser.UserID).
			Str("email", foundUser.Email).
			Msg("wrong password")
		return models.User{}, ErrWrongPassword
	}

	return foundUser, nil
}

// Params returns the non-secret key material of an account: KDF salt,
// wrapped vault key, sealed identity private key and public key. A client
// that knows the master password can rebuild its whole keychain from this.
func (a *authService) Params(ctx context.Context, email string) (models.UserParams, error) {
	log := logger.FromContext(ctx)

	if email == "" {
		log.Error().Msg("invalid user data provided")
		return models.UserParams{}, ErrInvalidDataProvided
	}

	foundUser, err := a.userRepository.FindUserByEmail(ctx, email)
	if err != nil {
		log.Err(err).Str("email", email).Msg("user search by email failed")
		return models.UserParams{}, fmt.Errorf("user search by email failed: %w", err)
	}

	return models.UserParams{
		Email:               foundUser.Email,
		EncryptionSalt:      foundUser.EncryptionSalt,
		EncryptedVaultKey:   foundUser.EncryptedVaultKey,
		EncryptedPrivateKey: foundUser.EncryptedPrivateKey,
		PublicKey:           foundUser.PublicKey,
	}, nil
}

// GetUser looks an account up by its server-assigned id. Used by handlers
// that only carry a user id in the token but need the account's email.
func (a *authService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	log := logger.FromContext(ctx)

	foundUser, err := a.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		log.Err(err).Int64("id", userID).Msg("user search by id failed")
		return models.User{}, fmt.Errorf("user search by id failed: %w", err)
	}

	return foundUser, nil
}

// CreateToken issues a signed JWT for the given user.
//
// The token is signed with the configured tokenSignKey, carries the configured
// tokenIssuer as the "iss" claim, and expires after tokenDuration. Admin
// accounts get a role claim that the admin-only routes check.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	role := ""
	if user.IsAdmin {
		role = models.RoleAdmin
	}

	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.UserID, role, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string.
//
// Any validation failure (expired, wrong issuer, malformed) is normalised to
// ErrTokenIsExpiredOrInvalid so that callers do not need to inspect
// low-level JWT errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

// hashVerifier replaces the client-supplied auth verifier in user with its
// HMAC-SHA256 hash computed using the service's hashKey.
// The mutation is applied in-place via a pointer receiver.
func (a *authService) hashVerifier(user *models.User) {
	user.AuthHash = utils.HashString(user.AuthHash, a.hashKey)
}
