package crypto

import "errors"

// Sentinel errors returned by the crypto layer. Callers should use
// [errors.Is] to match against these values.
//
// Cryptographic failures are never retried automatically: retrying a wrong
// key cannot succeed. They are surfaced as actionable failures, not 500s.
var (
	// ErrDecryptionFailed is returned when an AES-GCM open fails: wrong key,
	// corrupted ciphertext, or tampered data. The cause is deliberately not
	// distinguished further to avoid oracle attacks. Callers can still tell
	// "no data yet" apart, because that case never reaches a decrypt call.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrKeyUnwrapFailed is returned when an asymmetric unwrap of a shared
	// item key fails, e.g. the caller's private key does not match the
	// public key the share was sealed for.
	ErrKeyUnwrapFailed = errors.New("key unwrap failed")

	// ErrPayloadTampered is returned when a shared item's key unwrapped
	// fine but the item payload fails authentication.
	ErrPayloadTampered = errors.New("shared payload failed authentication")

	// ErrCiphertextTooShort is returned when a blob is shorter than the
	// GCM nonce and cannot possibly be valid.
	ErrCiphertextTooShort = errors.New("ciphertext too short")

	// ErrInvalidKey is returned when key material has the wrong length or
	// encoding.
	ErrInvalidKey = errors.New("invalid key material")
)
