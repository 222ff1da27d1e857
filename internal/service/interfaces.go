package service

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mocks.go -package=mock

import (
	"context"

	"github.com/MKhiriev/go-vault-trust/models"
)

// AuthService handles account registration, credential verification and JWT
// token lifecycle. Passwords never reach this layer: clients send a derived
// auth verifier, which is hardened again server-side before storage.
type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	Login(ctx context.Context, email string, authHash string) (models.User, error)
	// Params returns the non-secret key material (KDF salt, wrapped vault
	// key, sealed identity private key) a client needs to re-derive its
	// keys after authenticating.
	Params(ctx context.Context, email string) (models.UserParams, error)
	GetUser(ctx context.Context, userID int64) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// VaultService stores and returns the opaque vault ciphertext of one owner.
// The server never decrypts it.
type VaultService interface {
	GetVault(ctx context.Context, userID int64) (models.VaultBlob, error)
	SaveVault(ctx context.Context, blob models.VaultBlob) (models.VaultBlob, error)
}

// ShareService is the contact-share mailbox plus the identity key directory.
type ShareService interface {
	// CreateShare refuses recipients without a published identity key:
	// the wrapped item key would be undecryptable garbage otherwise.
	CreateShare(ctx context.Context, share models.ContactShare) (models.ContactShare, error)
	ListInbox(ctx context.Context, recipientEmail string) ([]models.ContactShare, error)
	// DeleteShare removes a mailbox entry on accept or decline. Only the
	// recipient may delete; the call is idempotent so clients retry it
	// until the entry is gone.
	DeleteShare(ctx context.Context, shareID int64, recipientEmail string) error
	LookupPublicKey(ctx context.Context, email string) (models.PublicKeyResponse, error)
}

// GrantService runs the link-grant state machine:
// pending → accepted → active → revoked | expired.
type GrantService interface {
	// CreateGrant persists a pending grant. The item ciphertext arrives
	// pre-sealed with the fragment key on the owner's client; the key
	// itself never appears in any request and no persisted field allows
	// re-deriving it.
	CreateGrant(ctx context.Context, ownerID int64, req models.CreateGrantRequest) (models.AccessGrant, error)
	GetGrant(ctx context.Context, grantID string) (models.AccessGrant, error)
	ListGrants(ctx context.Context, ownerID int64) ([]models.AccessGrant, error)
	AcceptGrant(ctx context.Context, grantID string, recipientID int64) (models.AccessGrant, error)
	DeclineGrant(ctx context.Context, grantID string, recipientID int64) (models.AccessGrant, error)
	// AutoLogin decrypts the protected credential with the caller-supplied
	// fragment key, opens an access session and activates the grant. The
	// key is used for one decrypt and discarded.
	AutoLogin(ctx context.Context, grantID string, fragmentKey string, userID *int64) (models.GrantLoginResponse, error)
	RevokeGrant(ctx context.Context, grantID string, ownerID int64, reason string) (models.AccessGrant, error)
	ListAudit(ctx context.Context, grantID string, ownerID int64) ([]models.AuditEvent, error)
	// TouchSession records activity on an open session, authenticated by
	// the opaque token issued at login, so idle timeouts measure real
	// inactivity.
	TouchSession(ctx context.Context, sessionID string, sessionToken string) error

	// Sweep methods driven by the background worker.
	SweepExpired(ctx context.Context) error
	CloseIdleSessions(ctx context.Context) error
	RevokeDue(ctx context.Context) error
}

// WillService manages the owner's digital will configuration.
type WillService interface {
	UpsertWill(ctx context.Context, will models.DigitalWillConfig) (models.DigitalWillConfig, error)
	GetWill(ctx context.Context, ownerID int64) (models.DigitalWillConfig, error)
}

// EmergencyService handles emergency access requests against a digital
// will: requester submission and the admin-only terminal decision.
type EmergencyService interface {
	SubmitRequest(ctx context.Context, request models.EmergencyRequest) (models.EmergencyRequest, error)
	ListRequests(ctx context.Context, status models.EmergencyStatus) ([]models.EmergencyRequest, error)
	// Decide transitions a pending request to approved or rejected. On
	// approval the target's vault ciphertext is copied into the request
	// exactly once; re-deciding returns ErrRequestAlreadyProcessed.
	Decide(ctx context.Context, requestID string, decision models.EmergencyDecisionRequest, adminID int64) (models.EmergencyRequest, error)
}
