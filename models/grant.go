package models

import "time"

// GrantStatus is the state of a link-based access grant.
type GrantStatus string

// Grant lifecycle: pending → accepted → active → revoked | expired.
// Revoked and expired are terminal; a grant never leaves them.
const (
	GrantPending  GrantStatus = "pending"
	GrantAccepted GrantStatus = "accepted"
	GrantActive   GrantStatus = "active"
	GrantRevoked  GrantStatus = "revoked"
	GrantExpired  GrantStatus = "expired"
)

// grantTransitions enumerates every legal status edge. Anything not listed
// is an illegal transition and must be rejected, never coerced.
var grantTransitions = map[GrantStatus][]GrantStatus{
	GrantPending:  {GrantAccepted, GrantRevoked, GrantExpired},
	GrantAccepted: {GrantActive, GrantRevoked, GrantExpired},
	GrantActive:   {GrantRevoked, GrantExpired},
	GrantRevoked:  {},
	GrantExpired:  {},
}

// Terminal reports whether the status admits no further transitions.
func (s GrantStatus) Terminal() bool {
	return s == GrantRevoked || s == GrantExpired
}

// CanTransitionTo reports whether moving from s to next is a legal edge of
// the grant state machine.
func (s GrantStatus) CanTransitionTo(next GrantStatus) bool {
	for _, allowed := range grantTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Access levels of a grant.
const (
	AccessView = "view"
	AccessUse  = "use"
)

// Reasons recorded when a grant reaches a terminal state.
const (
	RevokeReasonOwner    = "owner_revoked"
	RevokeReasonDeclined = "declined"
	RevokeReasonAutoUse  = "auto_revoke_after_use"
	RevokeReasonExpired  = "expired"
)

// AccessGrant is a persisted, revocable authorization for passwordless
// access to one credential.
//
// The symmetric key protecting ItemCiphertext is deliberately NOT a field of
// this entity: it exists only transiently in the share URL fragment built on
// the owner's client. No persisted field allows deriving it.
type AccessGrant struct {
	// GrantID is the public identifier embedded in the share URL.
	GrantID string `json:"id"`

	// OwnerID is the account that created the grant.
	OwnerID int64 `json:"owner_id"`

	// RecipientEmail is the out-of-band delivery target.
	RecipientEmail string `json:"recipient_email"`

	// RecipientID is bound at acceptance; nil while pending.
	RecipientID *int64 `json:"recipient_id,omitempty"`

	// ItemCiphertext is base64(IV ‖ AES-GCM ciphertext) of the shared
	// credential payload (username + secret).
	ItemCiphertext string `json:"item_ciphertext"`

	// Status is the grant state machine position.
	Status GrantStatus `json:"status"`

	// AccessLevel is one of the Access* constants.
	AccessLevel string `json:"access_level"`

	// ExpiresAt, when set, bounds the grant in time. Enforced lazily on
	// every login and by the background sweep.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// AutoRevokeAfterUse triggers a deferred revoke after the first
	// successful login (with a grace delay so the credential can be used).
	AutoRevokeAfterUse bool `json:"auto_revoke_after_use"`

	// CanAutoLogin allows the recipient to establish an AccessSession via
	// the grant login endpoint.
	CanAutoLogin bool `json:"can_auto_login"`

	// RevokeAfter is set when a deferred auto-revoke has been scheduled.
	// The sweep acts as a backstop for the in-process timer.
	RevokeAfter *time.Time `json:"-"`

	// StatusReason records why a terminal status was entered.
	StatusReason string `json:"status_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (g AccessGrant) TableName() string {
	return "access_grants"
}

// Expired reports whether the grant's deadline has passed at the given time.
// Grants without a deadline never expire.
func (g AccessGrant) Expired(now time.Time) bool {
	return g.ExpiresAt != nil && g.ExpiresAt.Before(now)
}
