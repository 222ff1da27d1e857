package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_mocks.go -package=mock

// KeyChainService owns all client-side symmetric cryptography of the
// zero-knowledge scheme. It knows nothing about the network, the database
// or users; its only job is deriving and protecting keys.
//
// The scheme:
//
//	Salt, VaultKey = GenerateEncryptionSalt() + GenerateVaultKey()
//	MasterKey      = DeriveMasterKey(masterSecret, salt)
//	EncVaultKey    = WrapVaultKey(VaultKey, MasterKey)
//	AuthHash       = AuthVerifier(MasterKey)
//
// The master key and the vault key exist only for the lifetime of an
// authenticated client session and are never persisted or transmitted.
type KeyChainService interface {
	// GenerateEncryptionSalt produces the random per-user KDF salt
	// (16 bytes / 128 bits). The salt is not a secret — it is stored on the
	// server openly so any device of the user can re-derive the master key.
	GenerateEncryptionSalt() ([]byte, error)

	// GenerateVaultKey produces the random vault key (32 bytes / 256 bits)
	// that encrypts all vault data. It never leaves the client unwrapped.
	GenerateVaultKey() ([]byte, error)

	// DeriveMasterKey derives the key-wrapping key from the master secret
	// and salt via Argon2id. It exists only in client memory.
	DeriveMasterKey(masterSecret string, salt []byte) []byte

	// WrapVaultKey encrypts the vault key with the master key via
	// AES-256-GCM. The result (nonce ‖ ciphertext) is safe to store on the
	// server: without the master key it is random noise.
	WrapVaultKey(vaultKey, masterKey []byte) ([]byte, error)

	// UnwrapVaultKey reverses WrapVaultKey. A failure almost always means
	// a wrong master secret and is reported as ErrDecryptionFailed.
	UnwrapVaultKey(wrappedVaultKey, masterKey []byte) ([]byte, error)

	// AuthVerifier computes the server-side login verifier:
	// SHA-256(masterKey ‖ authSalt). The fixed authSalt domain-separates
	// the verifier from the master key, so the server can compare it at
	// login without learning anything usable for decryption.
	AuthVerifier(masterKey []byte, authSalt string) []byte

	// EncryptPayload serializes data to JSON and encrypts it with key via
	// AES-256-GCM. Returns base64(std) of nonce ‖ ciphertext.
	EncryptPayload(data any, key []byte) (string, error)

	// DecryptPayload reverses EncryptPayload into target (a non-nil
	// pointer, as for json.Unmarshal). Authentication failure is reported
	// as ErrDecryptionFailed.
	DecryptPayload(encryptedB64 string, key []byte, target any) error
}

// IdentityService manages a user's asymmetric identity keypair and the
// hybrid encryption used for contact shares: payload sealed with a fresh
// symmetric key, the key wrapped to the recipient's public key.
type IdentityService interface {
	// GenerateIdentityKeys produces a fresh keypair at account creation.
	// The private key must be sealed with the owner's vault key before it
	// leaves client memory; only the wrapped form is sent to storage.
	GenerateIdentityKeys() (publicKey, privateKey []byte, err error)

	// SealItem encrypts one vault item for a recipient: fresh item key,
	// AES-GCM payload, item key wrapped to recipientPublicKey.
	// Returns the base64 payload ciphertext and base64 wrapped key.
	SealItem(item any, recipientPublicKey []byte) (itemCiphertext, wrappedKey string, err error)

	// OpenItem unwraps the item key with recipientPrivateKey and decrypts
	// the payload into target. A mismatched private key yields
	// ErrKeyUnwrapFailed; a tampered payload yields ErrPayloadTampered.
	OpenItem(itemCiphertext, wrappedKey string, recipientPrivateKey []byte, target any) error
}
