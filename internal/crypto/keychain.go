// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// AuthSaltDomain is the fixed salt mixed into every auth verifier. All
// clients must use the same value or their verifiers never match the
// stored ones.
const AuthSaltDomain = "vault-trust/auth-verifier/v1"

// keyChainService is the private implementation of [KeyChainService].
type keyChainService struct {
	// Argon2id tuning parameters. Stored in the struct so they can be
	// adjusted per deployment target (e.g. mobile vs. desktop).
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewKeyChainService constructs a [KeyChainService] with the Argon2id
// parameters recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
func NewKeyChainService() KeyChainService {
	return &keyChainService{
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  32, // 256 bits
	}
}

// GenerateEncryptionSalt implements [KeyChainService]. It reads 16 random
// bytes from the OS CSPRNG and returns them as the KDF salt. Returns an
// error if the random read fails.
func (k *keyChainService) GenerateEncryptionSalt() ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// GenerateVaultKey implements [KeyChainService]. It reads 32 random bytes
// from the OS CSPRNG and returns them as the vault data-encryption key.
// Returns an error if the random read fails.
func (k *keyChainService) GenerateVaultKey() ([]byte, error) {
	vaultKey := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, vaultKey); err != nil {
		return nil, err
	}
	return vaultKey, nil
}

// DeriveMasterKey implements [KeyChainService]. It derives a 256-bit
// key-wrapping key from masterSecret and salt using Argon2id with the
// parameters stored in the receiver. The result exists only in client memory
// and is never transmitted to the server.
func (k *keyChainService) DeriveMasterKey(masterSecret string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(masterSecret),
		salt,
		k.argonTime,
		k.argonMemory,
		k.argonThreads,
		k.argonKeyLen,
	)
}

// WrapVaultKey implements [KeyChainService]. It wraps the vault key with the
// master key using AES-256-GCM. A random 12-byte nonce is prepended to the
// ciphertext so that the decryption side can locate it:
// blob = nonce ‖ ciphertext. Returns an error if cipher creation or the
// random nonce read fails.
func (k *keyChainService) WrapVaultKey(vaultKey, masterKey []byte) ([]byte, error) {
	gcm, err := newGCM(masterKey)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// Prepend the nonce so UnwrapVaultKey can split it out.
	wrapped := gcm.Seal(nil, nonce, vaultKey, nil)
	return append(nonce, wrapped...), nil
}

// UnwrapVaultKey implements [KeyChainService]. It unwraps the blob produced
// by [keyChainService.WrapVaultKey] using the master key. The blob must be
// at least as long as the GCM nonce (12 bytes). Returns the plaintext vault
// key, or ErrDecryptionFailed if the master key is wrong or the ciphertext
// is corrupted (authentication-tag mismatch).
func (k *keyChainService) UnwrapVaultKey(wrappedVaultKey, masterKey []byte) ([]byte, error) {
	gcm, err := newGCM(masterKey)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(wrappedVaultKey) < nonceSize {
		return nil, ErrCiphertextTooShort
	}

	nonce, ciphertext := wrappedVaultKey[:nonceSize], wrappedVaultKey[nonceSize:]

	// An error here almost always means the user entered the wrong master
	// secret, producing a wrong master key.
	vaultKey, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return vaultKey, nil
}

// AuthVerifier implements [KeyChainService]. It computes
// SHA-256(masterKey ‖ authSalt) and returns the digest. The fixed authSalt
// domain-separates this hash from the master key itself, ensuring the two
// values have different purposes even though they share root material.
func (k *keyChainService) AuthVerifier(masterKey []byte, authSalt string) []byte {
	h := sha256.New()
	h.Write(masterKey)
	h.Write([]byte(authSalt)) // authSalt domain-separates the verifier from the key
	return h.Sum(nil)
}

// EncryptPayload implements [KeyChainService]. It marshals data to JSON,
// then encrypts it with key using AES-256-GCM. The output is a Base64
// (standard encoding) string of the blob: nonce (12 bytes) ‖ ciphertext.
// Returns an error if marshalling, cipher creation, or nonce generation fails.
func (k *keyChainService) EncryptPayload(data any, key []byte) (string, error) {
	// 1. Serialize to JSON
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal data: %w", err)
	}

	// 2. Build AES-GCM cipher
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	// 3. Generate a random nonce
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// 4. Encrypt: nonce || ciphertext
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	blob := append(nonce, ciphertext...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptPayload implements [KeyChainService]. It Base64-decodes
// encryptedB64, splits out the nonce, decrypts the ciphertext with key via
// AES-256-GCM, and unmarshals the resulting JSON into target. target must
// be a non-nil pointer, identical to the requirement of
// [encoding/json.Unmarshal].
//
// Any decode, length, or authentication failure is reported as
// ErrDecryptionFailed (wrapped), so callers cannot distinguish a wrong key
// from tampered data.
func (k *keyChainService) DecryptPayload(encryptedB64 string, key []byte, target any) error {
	// 1. Decode base64 blob
	blob, err := base64.StdEncoding.DecodeString(encryptedB64)
	if err != nil {
		return fmt.Errorf("%w: decode base64: %w", ErrDecryptionFailed, err)
	}

	// 2. Build AES-GCM cipher
	gcm, err := newGCM(key)
	if err != nil {
		return err
	}

	// 3. Split nonce and ciphertext
	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return fmt.Errorf("%w: %w", ErrDecryptionFailed, ErrCiphertextTooShort)
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	// 4. Decrypt and verify auth tag
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return ErrDecryptionFailed
	}

	// 5. Unmarshal JSON into target
	if err := json.Unmarshal(plaintext, target); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}

	return nil
}

// newGCM builds an AES-256-GCM AEAD from a 32-byte key.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return gcm, nil
}
