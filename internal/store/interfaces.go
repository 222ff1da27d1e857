package store

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mocks.go -package=mock

import (
	"context"
	"time"

	"github.com/MKhiriev/go-vault-trust/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
}

type VaultRepository interface {
	GetVault(ctx context.Context, userID int64) (models.VaultBlob, error)
	// UpsertVault overwrites the blob unconditionally: concurrent device
	// writes race and the last successful write wins.
	UpsertVault(ctx context.Context, blob models.VaultBlob) (models.VaultBlob, error)
}

type ShareRepository interface {
	CreateShare(ctx context.Context, share models.ContactShare) (models.ContactShare, error)
	GetShare(ctx context.Context, shareID int64) (models.ContactShare, error)
	ListSharesForRecipient(ctx context.Context, recipientEmail string) ([]models.ContactShare, error)
	// DeleteShare is idempotent: deleting an already-removed entry is not
	// an error, so acceptance retries are safe.
	DeleteShare(ctx context.Context, shareID int64) error
}

type GrantRepository interface {
	CreateGrant(ctx context.Context, grant models.AccessGrant) (models.AccessGrant, error)
	GetGrant(ctx context.Context, grantID string) (models.AccessGrant, error)
	ListGrantsByOwner(ctx context.Context, ownerID int64) ([]models.AccessGrant, error)

	// TransitionStatus conditionally moves the grant from one of the
	// expected prior statuses to the new one, recording the reason.
	// Returns ErrStateConflict when the grant is in none of the expected
	// states, which callers translate into an invalid-transition error.
	TransitionStatus(ctx context.Context, grantID string, from []models.GrantStatus, to models.GrantStatus, reason string) (models.AccessGrant, error)

	// BindRecipient attaches the accepting account to a pending grant as
	// part of the pending → accepted transition.
	BindRecipient(ctx context.Context, grantID string, recipientID int64) error

	// ScheduleAutoRevoke stamps the deadline of a deferred
	// auto-revoke-after-use so the sweep can fire it even if the in-process
	// timer is lost.
	ScheduleAutoRevoke(ctx context.Context, grantID string, at time.Time) error

	// SweepExpired transitions every non-terminal grant whose deadline
	// passed to expired and returns the affected ids.
	SweepExpired(ctx context.Context, now time.Time) ([]string, error)

	// ListDueAutoRevokes returns ids of active grants whose scheduled
	// auto-revoke deadline has passed.
	ListDueAutoRevokes(ctx context.Context, now time.Time) ([]string, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session models.AccessSession) (models.AccessSession, error)
	GetSession(ctx context.Context, sessionID string) (models.AccessSession, error)
	// CloseSessionsForGrant terminates every open session of the grant and
	// returns the number of sessions closed.
	CloseSessionsForGrant(ctx context.Context, grantID string, reason string, at time.Time) (int64, error)
	// CloseIdleSessions terminates open sessions whose last activity is
	// before the cutoff, with reason "timeout".
	CloseIdleSessions(ctx context.Context, cutoff time.Time) (int64, error)
	TouchSession(ctx context.Context, sessionID string, at time.Time) error
}

type AuditRepository interface {
	// AppendEvent inserts one event. The table is append-only: there is no
	// update or delete method.
	AppendEvent(ctx context.Context, event models.AuditEvent) (models.AuditEvent, error)
	ListEventsForGrant(ctx context.Context, grantID string) ([]models.AuditEvent, error)
}

type WillRepository interface {
	UpsertWill(ctx context.Context, will models.DigitalWillConfig) (models.DigitalWillConfig, error)
	GetWillByEmail(ctx context.Context, ownerEmail string) (models.DigitalWillConfig, error)
}

type EmergencyRepository interface {
	CreateRequest(ctx context.Context, request models.EmergencyRequest) (models.EmergencyRequest, error)
	GetRequest(ctx context.Context, requestID string) (models.EmergencyRequest, error)
	ListRequests(ctx context.Context, status models.EmergencyStatus) ([]models.EmergencyRequest, error)

	// DecideRequest conditionally transitions a pending request to its
	// terminal status, recording notes, the deciding admin and (on
	// approval) the handed-over vault ciphertext — exactly once.
	// Returns ErrStateConflict when the request is no longer pending.
	DecideRequest(ctx context.Context, requestID string, status models.EmergencyStatus, notes string, adminID int64, grantedVaultData *string) (models.EmergencyRequest, error)
}
