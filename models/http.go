package models

import "time"

// Request/response shapes of the HTTP API. Kept alongside the entities so
// the server handlers and the client session share one wire vocabulary.

// CreateShareRequest posts a contact-share mailbox entry. All cryptographic
// material arrives pre-sealed from the sender's client.
type CreateShareRequest struct {
	RecipientEmail string `json:"recipient_email"`
	ItemType       string `json:"item_type"`
	ItemCiphertext string `json:"encrypted_data"`
	WrappedKey     string `json:"encrypted_key"`
}

// CreateGrantRequest posts a link-based grant. The item ciphertext is sealed
// client-side with the fragment key, which never appears in this request.
type CreateGrantRequest struct {
	RecipientEmail     string     `json:"recipient_email"`
	ItemCiphertext     string     `json:"item_ciphertext"`
	AccessLevel        string     `json:"access_level"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	AutoRevokeAfterUse bool       `json:"auto_revoke_after_use"`
	CanAutoLogin       bool       `json:"can_auto_login"`
}

// GrantLoginRequest carries the caller-supplied fragment key for one
// auto-login attempt. The key is used for a single decrypt and discarded.
type GrantLoginRequest struct {
	FragmentKey string `json:"fragment_key"`
}

// SessionHeartbeatRequest proves continued activity on an access session.
// The token issued at login is the sole credential.
type SessionHeartbeatRequest struct {
	SessionToken string `json:"session_token"`
}

// GrantLoginResponse returns the decrypted credential payload and the
// session opened for it. The session token authenticates heartbeats that
// keep the session from timing out as idle.
type GrantLoginResponse struct {
	Credentials  GrantPayload `json:"credentials"`
	SessionID    string       `json:"session_id"`
	SessionToken string       `json:"session_token"`
}

// GrantPayload is the credential protected by a link grant.
type GrantPayload struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

// RevokeGrantRequest names the reason recorded with a revocation.
type RevokeGrantRequest struct {
	Reason string `json:"reason"`
}

// EmergencyDecisionRequest is the administrator's verdict on a request.
type EmergencyDecisionRequest struct {
	Status     EmergencyStatus `json:"status"`
	AdminNotes string          `json:"admin_notes"`
}

// UserParams exposes the non-secret key material a client needs to
// re-derive its keys: the KDF salt and the wrapped vault key.
type UserParams struct {
	Email               string `json:"email"`
	EncryptionSalt      string `json:"encryption_salt"`
	EncryptedVaultKey   string `json:"encrypted_vault_key"`
	EncryptedPrivateKey string `json:"encrypted_private_key"`
	PublicKey           string `json:"public_key"`
}

// PublicKeyResponse answers an identity key lookup by email.
type PublicKeyResponse struct {
	Email     string `json:"email"`
	PublicKey string `json:"public_key"`
}
