package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-vault-trust/internal/bus"
	"github.com/MKhiriev/go-vault-trust/models"
)

// ─────────────────────────────────────────────
// Mock: store.UserRepository
// ─────────────────────────────────────────────

type mockUserRepository struct {
	createFn      func(ctx context.Context, user models.User) (models.User, error)
	findByEmailFn func(ctx context.Context, email string) (models.User, error)
	findByIDFn    func(ctx context.Context, userID int64) (models.User, error)
}

func (m *mockUserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return user, nil
}

func (m *mockUserRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return models.User{}, nil
}

func (m *mockUserRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, userID)
	}
	return models.User{}, nil
}

// ─────────────────────────────────────────────
// Mock: store.VaultRepository
// ─────────────────────────────────────────────

type mockVaultRepository struct {
	getFn    func(ctx context.Context, userID int64) (models.VaultBlob, error)
	upsertFn func(ctx context.Context, blob models.VaultBlob) (models.VaultBlob, error)
}

func (m *mockVaultRepository) GetVault(ctx context.Context, userID int64) (models.VaultBlob, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return models.VaultBlob{}, nil
}

func (m *mockVaultRepository) UpsertVault(ctx context.Context, blob models.VaultBlob) (models.VaultBlob, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, blob)
	}
	return blob, nil
}

// ─────────────────────────────────────────────
// Mock: store.ShareRepository
// ─────────────────────────────────────────────

type mockShareRepository struct {
	createFn func(ctx context.Context, share models.ContactShare) (models.ContactShare, error)
	getFn    func(ctx context.Context, shareID int64) (models.ContactShare, error)
	listFn   func(ctx context.Context, recipientEmail string) ([]models.ContactShare, error)
	deleteFn func(ctx context.Context, shareID int64) error
}

func (m *mockShareRepository) CreateShare(ctx context.Context, share models.ContactShare) (models.ContactShare, error) {
	if m.createFn != nil {
		return m.createFn(ctx, share)
	}
	return share, nil
}

func (m *mockShareRepository) GetShare(ctx context.Context, shareID int64) (models.ContactShare, error) {
	if m.getFn != nil {
		return m.getFn(ctx, shareID)
	}
	return models.ContactShare{}, nil
}

func (m *mockShareRepository) ListSharesForRecipient(ctx context.Context, recipientEmail string) ([]models.ContactShare, error) {
	if m.listFn != nil {
		return m.listFn(ctx, recipientEmail)
	}
	return nil, nil
}

func (m *mockShareRepository) DeleteShare(ctx context.Context, shareID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, shareID)
	}
	return nil
}

// ─────────────────────────────────────────────
// Mock: store.GrantRepository
// ─────────────────────────────────────────────

type mockGrantRepository struct {
	createFn      func(ctx context.Context, grant models.AccessGrant) (models.AccessGrant, error)
	getFn         func(ctx context.Context, grantID string) (models.AccessGrant, error)
	listByOwnerFn func(ctx context.Context, ownerID int64) ([]models.AccessGrant, error)
	transitionFn  func(ctx context.Context, grantID string, from []models.GrantStatus, to models.GrantStatus, reason string) (models.AccessGrant, error)
	bindFn        func(ctx context.Context, grantID string, recipientID int64) error
	scheduleFn    func(ctx context.Context, grantID string, at time.Time) error
	sweepFn       func(ctx context.Context, now time.Time) ([]string, error)
	listDueFn     func(ctx context.Context, now time.Time) ([]string, error)
}

func (m *mockGrantRepository) CreateGrant(ctx context.Context, grant models.AccessGrant) (models.AccessGrant, error) {
	if m.createFn != nil {
		return m.createFn(ctx, grant)
	}
	return grant, nil
}

func (m *mockGrantRepository) GetGrant(ctx context.Context, grantID string) (models.AccessGrant, error) {
	if m.getFn != nil {
		return m.getFn(ctx, grantID)
	}
	return models.AccessGrant{}, nil
}

func (m *mockGrantRepository) ListGrantsByOwner(ctx context.Context, ownerID int64) ([]models.AccessGrant, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockGrantRepository) TransitionStatus(ctx context.Context, grantID string, from []models.GrantStatus, to models.GrantStatus, reason string) (models.AccessGrant, error) {
	if m.transitionFn != nil {
		return m.transitionFn(ctx, grantID, from, to, reason)
	}
	return models.AccessGrant{GrantID: grantID, Status: to, StatusReason: reason}, nil
}

func (m *mockGrantRepository) BindRecipient(ctx context.Context, grantID string, recipientID int64) error {
	if m.bindFn != nil {
		return m.bindFn(ctx, grantID, recipientID)
	}
	return nil
}

func (m *mockGrantRepository) ScheduleAutoRevoke(ctx context.Context, grantID string, at time.Time) error {
	if m.scheduleFn != nil {
		return m.scheduleFn(ctx, grantID, at)
	}
	return nil
}

func (m *mockGrantRepository) SweepExpired(ctx context.Context, now time.Time) ([]string, error) {
	if m.sweepFn != nil {
		return m.sweepFn(ctx, now)
	}
	return nil, nil
}

func (m *mockGrantRepository) ListDueAutoRevokes(ctx context.Context, now time.Time) ([]string, error) {
	if m.listDueFn != nil {
		return m.listDueFn(ctx, now)
	}
	return nil, nil
}

// ─────────────────────────────────────────────
// Mock: store.SessionRepository
// ─────────────────────────────────────────────

type mockSessionRepository struct {
	createFn    func(ctx context.Context, session models.AccessSession) (models.AccessSession, error)
	getFn       func(ctx context.Context, sessionID string) (models.AccessSession, error)
	closeFn     func(ctx context.Context, grantID string, reason string, at time.Time) (int64, error)
	closeIdleFn func(ctx context.Context, cutoff time.Time) (int64, error)
	touchFn     func(ctx context.Context, sessionID string, at time.Time) error
}

func (m *mockSessionRepository) CreateSession(ctx context.Context, session models.AccessSession) (models.AccessSession, error) {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return session, nil
}

func (m *mockSessionRepository) GetSession(ctx context.Context, sessionID string) (models.AccessSession, error) {
	if m.getFn != nil {
		return m.getFn(ctx, sessionID)
	}
	return models.AccessSession{}, nil
}

func (m *mockSessionRepository) CloseSessionsForGrant(ctx context.Context, grantID string, reason string, at time.Time) (int64, error) {
	if m.closeFn != nil {
		return m.closeFn(ctx, grantID, reason, at)
	}
	return 0, nil
}

func (m *mockSessionRepository) CloseIdleSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.closeIdleFn != nil {
		return m.closeIdleFn(ctx, cutoff)
	}
	return 0, nil
}

func (m *mockSessionRepository) TouchSession(ctx context.Context, sessionID string, at time.Time) error {
	if m.touchFn != nil {
		return m.touchFn(ctx, sessionID, at)
	}
	return nil
}

// ─────────────────────────────────────────────
// Mock: store.AuditRepository
// ─────────────────────────────────────────────

type mockAuditRepository struct {
	appendFn func(ctx context.Context, event models.AuditEvent) (models.AuditEvent, error)
	listFn   func(ctx context.Context, grantID string) ([]models.AuditEvent, error)

	appended []models.AuditEvent
}

func (m *mockAuditRepository) AppendEvent(ctx context.Context, event models.AuditEvent) (models.AuditEvent, error) {
	m.appended = append(m.appended, event)
	if m.appendFn != nil {
		return m.appendFn(ctx, event)
	}
	return event, nil
}

func (m *mockAuditRepository) ListEventsForGrant(ctx context.Context, grantID string) ([]models.AuditEvent, error) {
	if m.listFn != nil {
		return m.listFn(ctx, grantID)
	}
	return nil, nil
}

// ─────────────────────────────────────────────
// Mock: store.WillRepository
// ─────────────────────────────────────────────

type mockWillRepository struct {
	upsertFn func(ctx context.Context, will models.DigitalWillConfig) (models.DigitalWillConfig, error)
	getFn    func(ctx context.Context, ownerEmail string) (models.DigitalWillConfig, error)
}

func (m *mockWillRepository) UpsertWill(ctx context.Context, will models.DigitalWillConfig) (models.DigitalWillConfig, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, will)
	}
	return will, nil
}

func (m *mockWillRepository) GetWillByEmail(ctx context.Context, ownerEmail string) (models.DigitalWillConfig, error) {
	if m.getFn != nil {
		return m.getFn(ctx, ownerEmail)
	}
	return models.DigitalWillConfig{}, nil
}

// ─────────────────────────────────────────────
// Mock: store.EmergencyRepository
// ─────────────────────────────────────────────

type mockEmergencyRepository struct {
	createFn func(ctx context.Context, request models.EmergencyRequest) (models.EmergencyRequest, error)
	getFn    func(ctx context.Context, requestID string) (models.EmergencyRequest, error)
	listFn   func(ctx context.Context, status models.EmergencyStatus) ([]models.EmergencyRequest, error)
	decideFn func(ctx context.Context, requestID string, status models.EmergencyStatus, notes string, adminID int64, grantedVaultData *string) (models.EmergencyRequest, error)
}

func (m *mockEmergencyRepository) CreateRequest(ctx context.Context, request models.EmergencyRequest) (models.EmergencyRequest, error) {
	if m.createFn != nil {
		return m.createFn(ctx, request)
	}
	return request, nil
}

func (m *mockEmergencyRepository) GetRequest(ctx context.Context, requestID string) (models.EmergencyRequest, error) {
	if m.getFn != nil {
		return m.getFn(ctx, requestID)
	}
	return models.EmergencyRequest{}, nil
}

func (m *mockEmergencyRepository) ListRequests(ctx context.Context, status models.EmergencyStatus) ([]models.EmergencyRequest, error) {
	if m.listFn != nil {
		return m.listFn(ctx, status)
	}
	return nil, nil
}

func (m *mockEmergencyRepository) DecideRequest(ctx context.Context, requestID string, status models.EmergencyStatus, notes string, adminID int64, grantedVaultData *string) (models.EmergencyRequest, error) {
	if m.decideFn != nil {
		return m.decideFn(ctx, requestID, status, notes, adminID, grantedVaultData)
	}
	return models.EmergencyRequest{RequestID: requestID, Status: status}, nil
}

// ─────────────────────────────────────────────
// Mock: bus.RevocationBus
// ─────────────────────────────────────────────

type mockRevocationBus struct {
	publishFn func(ctx context.Context, event bus.Event) error

	published []bus.Event
}

func (m *mockRevocationBus) PublishRevoked(ctx context.Context, event bus.Event) error {
	m.published = append(m.published, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, event)
	}
	return nil
}

func (m *mockRevocationBus) SubscribeRevoked(ctx context.Context, grantID string) (<-chan bus.Event, func(), error) {
	events := make(chan bus.Event)
	return events, func() {}, nil
}

func (m *mockRevocationBus) Close() error { return nil }
