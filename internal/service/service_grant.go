// Copyright 2026 Rasul Khiriev
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"crypto/hmac"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-vault-trust/internal/bus"
	"github.com/MKhiriev/go-vault-trust/internal/config"
	"github.com/MKhiriev/go-vault-trust/internal/crypto"
	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/store"
	"github.com/MKhiriev/go-vault-trust/internal/utils"
	"github.com/MKhiriev/go-vault-trust/models"
)

// grantService is the concrete implementation of GrantService.
//
// Every status change goes through the repository's conditional transition,
// so concurrent revoke/login/sweep races on the same grant resolve to
// exactly one winner; the losers get ErrInvalidGrantState. Persisted state
// is authoritative throughout — the revocation bus only accelerates what
// the database already says.
type grantService struct {
	grantRepository   store.GrantRepository
	sessionRepository store.SessionRepository
	auditRepository   store.AuditRepository
	keychain          crypto.KeyChainService
	revocationBus     bus.RevocationBus
	uuidGenerator     *utils.UUIDGenerator

	// autoRevokeGrace is how long after a first use an auto-revoking grant
	// stays usable before the deferred revoke fires.
	autoRevokeGrace time.Duration

	// sessionIdleTimeout bounds access-session inactivity.
	sessionIdleTimeout time.Duration

	logger *logger.Logger
}

func NewGrantService(
	repos *store.Repositories,
	keychain crypto.KeyChainService,
	revocationBus bus.RevocationBus,
	cfg config.StructuredConfig,
	logger *logger.Logger,
) GrantService {
	return &grantService{
		grantRepository:    repos.GrantRepository,
		sessionRepository:  repos.SessionRepository,
		auditRepository:    repos.AuditRepository,
		keychain:           keychain,
		revocationBus:      revocationBus,
		uuidGenerator:      utils.NewUUIDGenerator(),
		autoRevokeGrace:    cfg.Share.AutoRevokeGrace,
		sessionIdleTimeout: cfg.Workers.SessionIdleTimeout,
		logger:             logger,
	}
}

// CreateGrant persists a new pending grant for the owner. The credential
// payload arrives sealed with the fragment key, which the owner's client
// keeps in the share URL fragment and never sends here.
func (g *grantService) CreateGrant(ctx context.Context, ownerID int64, req models.CreateGrantRequest) (models.AccessGrant, error) {
	log := logger.FromContext(ctx)

	if req.RecipientEmail == "" || req.ItemCiphertext == "" {
		log.Error().Int64("owner_id", ownerID).Msg("invalid grant data provided")
		return models.AccessGrant{}, ErrInvalidDataProvided
	}

	accessLevel := req.AccessLevel
	if accessLevel == "" {
		accessLevel = models.AccessUse
	}

	grant := models.AccessGrant{
		GrantID:            g.uuidGenerator.Generate(),
		OwnerID:            ownerID,
		RecipientEmail:     req.RecipientEmail,
		ItemCiphertext:     req.ItemCiphertext,
		Status:             models.GrantPending,
		AccessLevel:        accessLevel,
		ExpiresAt:          req.ExpiresAt,
		AutoRevokeAfterUse: req.AutoRevokeAfterUse,
		CanAutoLogin:       req.CanAutoLogin,
	}

	created, err := g.grantRepository.CreateGrant(ctx, grant)
	if err != nil {
		log.Err(err).Int64("owner_id", ownerID).Msg("grant creation failed")
		return models.AccessGrant{}, fmt.Errorf("grant creation failed: %w", err)
	}

	g.appendAudit(ctx, models.AuditEvent{
		GrantID:   created.GrantID,
		ActorID:   ownerID,
		EventType: models.AuditGrantCreated,
	})

	return created, nil
}

func (g *grantService) GetGrant(ctx context.Context, grantID string) (models.AccessGrant, error) {
	log := logger.FromContext(ctx)

	grant, err := g.grantRepository.GetGrant(ctx, grantID)
	if err != nil {
		log.Err(err).Str("grant_id", grantID).Msg("grant lookup failed")
		return models.AccessGrant{}, fmt.Errorf("grant lookup failed: %w", err)
	}

	return grant, nil
}

func (g *grantService) ListGrants(ctx context.Context, ownerID int64) ([]models.AccessGrant, error) {
	log := logger.FromContext(ctx)

	grants, err := g.grantRepository.ListGrantsByOwner(ctx, ownerID)
	if err != nil {
		log.Err(err).Int64("owner_id", ownerID).Msg("grant listing failed")
		return nil, fmt.Errorf("grant listing failed: %w", err)
	}

	return grants, nil
}

// AcceptGrant binds the accepting account to a pending grant and moves it
// to accepted. Accepting a grant that already left pending returns
// ErrInvalidGrantState.
func (g *grantService) AcceptGrant(ctx context.Context, grantID string, recipientID int64) (models.AccessGrant, error) {
	log := logger.FromContext(ctx)

	grant, err := g.grantRepository.TransitionStatus(ctx, grantID,
		[]models.GrantStatus{models.GrantPending}, models.GrantAccepted, "")
	if err != nil {
		if errors.Is(err, store.ErrStateConflict) {
			return models.AccessGrant{}, ErrInvalidGrantState
		}
		log.Err(err).Str("grant_id", grantID).Msg("grant acceptance failed")
		return models.AccessGrant{}, fmt.Errorf("grant acceptance failed: %w", err)
	}

	if err := g.grantRepository.BindRecipient(ctx, grantID, recipientID); err != nil {
		log.Err(err).Str("grant_id", grantID).Msg("recipient binding failed")
		return models.AccessGrant{}, fmt.Errorf("recipient binding failed: %w", err)
	}
	grant.RecipientID = &recipientID

	g.appendAudit(ctx, models.AuditEvent{
		GrantID:   grantID,
		ActorID:   recipientID,
		EventType: models.AuditGrantAccepted,
	})

	return grant, nil
}

// DeclineGrant terminates a grant the recipient does not want. A decline is
// a revocation with reason "declined": pending or accepted only, terminal.
func (g *grantService) DeclineGrant(ctx context.Context, grantID string, recipientID int64) (models.AccessGrant, error) {
	return g.revoke(ctx, grantID, recipientID,
		[]models.GrantStatus{models.GrantPending, models.GrantAccepted},
		models.RevokeReasonDeclined)
}

// AutoLogin performs one passwordless credential retrieval through the
// grant.
//
// The caller supplies the fragment key from the share URL; it is used for
// a single decrypt and discarded. A wrong key fails with
// crypto.ErrDecryptionFailed — a client error, not a server fault. Expiry
// is enforced lazily here: a login that finds the deadline passed expires
// the grant as a side effect and is refused.
func (g *grantService) AutoLogin(ctx context.Context, grantID string, fragmentKey string, userID *int64) (models.GrantLoginResponse, error) {
	log := logger.FromContext(ctx)

	grant, err := g.grantRepository.GetGrant(ctx, grantID)
	if err != nil {
		log.Err(err).Str("grant_id", grantID).Msg("grant lookup failed")
		return models.GrantLoginResponse{}, fmt.Errorf("grant lookup failed: %w", err)
	}

	if !grant.CanAutoLogin {
		return models.GrantLoginResponse{}, ErrUnauthorized
	}

	now := time.Now()
	if grant.Expired(now) {
		g.expire(ctx, grantID)
		return models.GrantLoginResponse{}, ErrGrantExpired
	}

	if grant.Status != models.GrantActive && !grant.Status.CanTransitionTo(models.GrantActive) {
		return models.GrantLoginResponse{}, ErrInvalidGrantState
	}

	key, err := base64.RawURLEncoding.DecodeString(fragmentKey)
	if err != nil {
		return models.GrantLoginResponse{}, crypto.ErrDecryptionFailed
	}

	var payload models.GrantPayload
	if err := g.keychain.DecryptPayload(grant.ItemCiphertext, key, &payload); err != nil {
		log.Error().Str("grant_id", grantID).Msg("fragment key rejected")
		return models.GrantLoginResponse{}, err
	}

	// the decrypt succeeded: re-assert the grant is still live before any
	// session exists. An already-active grant passes through the same
	// conditional update, so a revoke landing between the read and the
	// session insert wins the race and the login is refused.
	firstUse := grant.Status == models.GrantAccepted
	if _, err := g.grantRepository.TransitionStatus(ctx, grantID,
		[]models.GrantStatus{models.GrantAccepted, models.GrantActive},
		models.GrantActive, ""); err != nil {
		if errors.Is(err, store.ErrStateConflict) {
			return models.GrantLoginResponse{}, ErrInvalidGrantState
		}
		log.Err(err).Str("grant_id", grantID).Msg("grant activation failed")
		return models.GrantLoginResponse{}, fmt.Errorf("grant activation failed: %w", err)
	}

	session := models.AccessSession{
		SessionID:    g.uuidGenerator.Generate(),
		GrantID:      grantID,
		UserID:       userID,
		SessionToken: g.uuidGenerator.Generate(),
		LoggedInAt:   now,
	}
	session, err = g.sessionRepository.CreateSession(ctx, session)
	if err != nil {
		log.Err(err).Str("grant_id", grantID).Msg("session creation failed")
		return models.GrantLoginResponse{}, fmt.Errorf("session creation failed: %w", err)
	}

	actorID := int64(0)
	if userID != nil {
		actorID = *userID
	}
	g.appendAudit(ctx, models.AuditEvent{
		GrantID:   grantID,
		SessionID: session.SessionID,
		ActorID:   actorID,
		EventType: models.AuditGrantLogin,
	})

	// the deadline is armed once, at first use; later logins must not
	// push it forward
	if grant.AutoRevokeAfterUse && firstUse {
		g.scheduleAutoRevoke(ctx, grantID)
	}

	return models.GrantLoginResponse{
		Credentials:  payload,
		SessionID:    session.SessionID,
		SessionToken: session.SessionToken,
	}, nil
}

// RevokeGrant terminates the grant on the owner's request.
func (g *grantService) RevokeGrant(ctx context.Context, grantID string, ownerID int64, reason string) (models.AccessGrant, error) {
	log := logger.FromContext(ctx)

	grant, err := g.grantRepository.GetGrant(ctx, grantID)
	if err != nil {
		log.Err(err).Str("grant_id", grantID).Msg("grant lookup failed")
		return models.AccessGrant{}, fmt.Errorf("grant lookup failed: %w", err)
	}
	if grant.OwnerID != ownerID {
		log.Error().Str("grant_id", grantID).Int64("caller", ownerID).Msg("grant does not belong to caller")
		return models.AccessGrant{}, ErrUnauthorized
	}
	if grant.Status.Terminal() {
		return models.AccessGrant{}, ErrInvalidGrantState
	}

	if reason == "" {
		reason = models.RevokeReasonOwner
	}

	return g.revoke(ctx, grantID, ownerID,
		[]models.GrantStatus{models.GrantPending, models.GrantAccepted, models.GrantActive},
		reason)
}

// ListAudit returns the grant's audit trail to its owner.
func (g *grantService) ListAudit(ctx context.Context, grantID string, ownerID int64) ([]models.AuditEvent, error) {
	log := logger.FromContext(ctx)

	grant, err := g.grantRepository.GetGrant(ctx, grantID)
	if err != nil {
		log.Err(err).Str("grant_id", grantID).Msg("grant lookup failed")
		return nil, fmt.Errorf("grant lookup failed: %w", err)
	}
	if grant.OwnerID != ownerID {
		return nil, ErrUnauthorized
	}

	events, err := g.auditRepository.ListEventsForGrant(ctx, grantID)
	if err != nil {
		log.Err(err).Str("grant_id", grantID).Msg("audit listing failed")
		return nil, fmt.Errorf("audit listing failed: %w", err)
	}

	return events, nil
}

// SweepExpired moves every overdue grant to expired and closes its
// sessions. Driven by the background worker; lazy expiry on login is the
// other half of the same enforcement.
func (g *grantService) SweepExpired(ctx context.Context) error {
	log := logger.FromContext(ctx)

	ids, err := g.grantRepository.SweepExpired(ctx, time.Now())
	if err != nil {
		log.Err(err).Msg("expiry sweep failed")
		return fmt.Errorf("expiry sweep failed: %w", err)
	}

	for _, grantID := range ids {
		g.closeSessions(ctx, grantID, models.LogoutReasonExpired)
		g.appendAudit(ctx, models.AuditEvent{
			GrantID:   grantID,
			EventType: models.AuditGrantExpired,
		})
	}

	return nil
}

// CloseIdleSessions force-closes sessions inactive past the configured
// timeout.
func (g *grantService) CloseIdleSessions(ctx context.Context) error {
	log := logger.FromContext(ctx)

	closed, err := g.sessionRepository.CloseIdleSessions(ctx, time.Now().Add(-g.sessionIdleTimeout))
	if err != nil {
		log.Err(err).Msg("idle session sweep failed")
		return fmt.Errorf("idle session sweep failed: %w", err)
	}
	if closed > 0 {
		log.Info().Int64("closed", closed).Msg("closed idle sessions")
	}

	return nil
}

// TouchSession records activity on an open access session so the idle
// sweep measures real inactivity, not time since login. The opaque token
// issued at login is the sole credential; a mismatch or a closed session
// is refused the same way.
func (g *grantService) TouchSession(ctx context.Context, sessionID string, sessionToken string) error {
	log := logger.FromContext(ctx)

	session, err := g.sessionRepository.GetSession(ctx, sessionID)
	if err != nil {
		log.Err(err).Str("session_id", sessionID).Msg("session lookup failed")
		return fmt.Errorf("session lookup failed: %w", err)
	}

	if !session.Open() || !hmac.Equal([]byte(session.SessionToken), []byte(sessionToken)) {
		return ErrUnauthorized
	}

	if err := g.sessionRepository.TouchSession(ctx, sessionID, time.Now()); err != nil {
		log.Err(err).Str("session_id", sessionID).Msg("session touch failed")
		return fmt.Errorf("session touch failed: %w", err)
	}

	return nil
}

// RevokeDue fires deferred auto-revokes whose grace deadline has passed.
// This is the durable backstop behind the in-process timer armed at login.
func (g *grantService) RevokeDue(ctx context.Context) error {
	log := logger.FromContext(ctx)

	ids, err := g.grantRepository.ListDueAutoRevokes(ctx, time.Now())
	if err != nil {
		log.Err(err).Msg("auto-revoke sweep failed")
		return fmt.Errorf("auto-revoke sweep failed: %w", err)
	}

	for _, grantID := range ids {
		if _, err := g.revoke(ctx, grantID, 0,
			[]models.GrantStatus{models.GrantActive}, models.RevokeReasonAutoUse); err != nil &&
			!errors.Is(err, ErrInvalidGrantState) {
			log.Err(err).Str("grant_id", grantID).Msg("deferred auto-revoke failed")
		}
	}

	return nil
}

// revoke is the single revocation path shared by owner revokes, declines
// and deferred auto-revokes. Order matters: persist the terminal status
// first, then close sessions, then audit, then (best-effort) broadcast.
func (g *grantService) revoke(ctx context.Context, grantID string, actorID int64, from []models.GrantStatus, reason string) (models.AccessGrant, error) {
	log := logger.FromContext(ctx)

	grant, err := g.grantRepository.TransitionStatus(ctx, grantID, from, models.GrantRevoked, reason)
	if err != nil {
		if errors.Is(err, store.ErrStateConflict) {
			return models.AccessGrant{}, ErrInvalidGrantState
		}
		log.Err(err).Str("grant_id", grantID).Msg("grant revocation failed")
		return models.AccessGrant{}, fmt.Errorf("grant revocation failed: %w", err)
	}

	g.closeSessions(ctx, grantID, models.LogoutReasonRevoked)

	g.appendAudit(ctx, models.AuditEvent{
		GrantID:   grantID,
		ActorID:   actorID,
		EventType: models.AuditGrantRevoked,
		Details:   reason,
	})

	if err := g.revocationBus.PublishRevoked(ctx, bus.Event{
		GrantID:   grantID,
		Reason:    reason,
		Timestamp: time.Now(),
	}); err != nil {
		// the revocation is already durable; the broadcast is an accelerant
		log.Err(err).Str("grant_id", grantID).Msg("revocation broadcast failed")
	}

	return grant, nil
}

// expire transitions an overdue grant to expired. Losing the conditional
// update to a concurrent revoke or sweep is fine: the grant ended either
// way.
func (g *grantService) expire(ctx context.Context, grantID string) {
	log := logger.FromContext(ctx)

	if _, err := g.grantRepository.TransitionStatus(ctx, grantID,
		[]models.GrantStatus{models.GrantPending, models.GrantAccepted, models.GrantActive},
		models.GrantExpired, models.RevokeReasonExpired); err != nil {
		if !errors.Is(err, store.ErrStateConflict) {
			log.Err(err).Str("grant_id", grantID).Msg("lazy expiry failed")
		}
		return
	}

	g.closeSessions(ctx, grantID, models.LogoutReasonExpired)

	g.appendAudit(ctx, models.AuditEvent{
		GrantID:   grantID,
		EventType: models.AuditGrantExpired,
	})
}

// closeSessions terminates the grant's open sessions and records one
// session-closed event when anything was actually open. Failures are
// logged: the grant's own terminal transition already happened.
func (g *grantService) closeSessions(ctx context.Context, grantID string, reason string) {
	log := logger.FromContext(ctx)

	closed, err := g.sessionRepository.CloseSessionsForGrant(ctx, grantID, reason, time.Now())
	if err != nil {
		log.Err(err).Str("grant_id", grantID).Msg("closing sessions failed")
		return
	}
	if closed > 0 {
		g.appendAudit(ctx, models.AuditEvent{
			GrantID:   grantID,
			EventType: models.AuditSessionClosed,
			Details:   reason,
		})
	}
}

// scheduleAutoRevoke arms the deferred revoke of an auto-revoke-after-use
// grant: a durable deadline the sweep enforces, plus an in-process timer
// for low latency. The revoke is never synchronous with the login.
func (g *grantService) scheduleAutoRevoke(ctx context.Context, grantID string) {
	log := logger.FromContext(ctx)

	deadline := time.Now().Add(g.autoRevokeGrace)
	if err := g.grantRepository.ScheduleAutoRevoke(ctx, grantID, deadline); err != nil {
		log.Err(err).Str("grant_id", grantID).Msg("scheduling auto-revoke failed")
		// the in-process timer below still covers this process's lifetime
	}

	time.AfterFunc(g.autoRevokeGrace, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ctx = g.logger.WithContext(ctx)

		if _, err := g.revoke(ctx, grantID, 0,
			[]models.GrantStatus{models.GrantActive}, models.RevokeReasonAutoUse); err != nil &&
			!errors.Is(err, ErrInvalidGrantState) {
			g.logger.Err(err).Str("grant_id", grantID).Msg("deferred auto-revoke failed")
		}
	})
}

// appendAudit records an event, logging failures rather than failing the
// operation that produced them.
func (g *grantService) appendAudit(ctx context.Context, event models.AuditEvent) {
	if _, err := g.auditRepository.AppendEvent(ctx, event); err != nil {
		logger.FromContext(ctx).Err(err).Str("grant_id", event.GrantID).Str("event", event.EventType).Msg("audit append failed")
	}
}
