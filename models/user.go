package models

import "time"

// User represents an account entity used for authentication, vault ownership
// and sharing. The server stores only derived or wrapped secrets: the master
// secret itself never leaves the client.
type User struct {
	// UserID is the internal unique identifier of the user.
	// It is not exposed via JSON and is used only at the persistence layer.
	UserID int64 `json:"-"`

	// Email is the unique login identifier. It is also how other users
	// address this account when sharing (public key lookup by email).
	Email string `json:"email"`

	// Name is the display name of the user. Non-sensitive.
	Name string `json:"name"`

	// AuthHash is the login verifier: SHA-256 of the client-derived master
	// key plus a fixed domain-separation salt. The server compares it at
	// login but cannot recover the master key from it.
	// This value MUST be a derived value, never the master secret.
	AuthHash string `json:"auth_hash"`

	// EncryptionSalt is the per-user random salt fed into the client-side
	// KDF. Not a secret; stored and served openly.
	EncryptionSalt string `json:"encryption_salt"`

	// EncryptedVaultKey is the user's vault key (DEK) wrapped with the
	// KDF-derived master key. Opaque to the server.
	EncryptedVaultKey string `json:"encrypted_vault_key"`

	// PublicKey is the user's published identity key, discoverable by email.
	// Immutable after signup.
	PublicKey string `json:"public_key"`

	// EncryptedPrivateKey is the identity private key sealed with the vault
	// key before it ever left client memory. Decryptable only by the owner.
	EncryptedPrivateKey string `json:"encrypted_private_key"`

	// IsAdmin marks administrator accounts allowed to decide emergency
	// access requests.
	IsAdmin bool `json:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// HasIdentityKey reports whether the user completed signup with identity key
// generation. Sharing operations targeting a user without a published key
// must fail rather than silently proceed.
func (u User) HasIdentityKey() bool {
	return u.PublicKey != ""
}
