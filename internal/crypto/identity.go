// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

// identityService is the private implementation of [IdentityService].
// It uses NaCl box (Curve25519 + XSalsa20-Poly1305) anonymous sealing for
// key wrapping and AES-256-GCM for the item payload, so a contact share is
// classic hybrid encryption: only the holder of the matching private key
// can unwrap the per-item symmetric key.
type identityService struct{}

// NewIdentityService constructs an [IdentityService].
func NewIdentityService() IdentityService {
	return &identityService{}
}

// GenerateIdentityKeys implements [IdentityService]. It produces a fresh
// Curve25519 keypair from the OS CSPRNG. The caller is responsible for
// sealing the private key with the vault key before it leaves memory.
func (s *identityService) GenerateIdentityKeys() (publicKey, privateKey []byte, err error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate identity keypair: %w", err)
	}
	return pub[:], priv[:], nil
}

// SealItem implements [IdentityService].
//
// Steps:
//  1. Generate a fresh random 32-byte item key.
//  2. Encrypt the JSON-serialized item with the item key (AES-256-GCM,
//     nonce-prefixed blob, base64 std — same framing as the keychain).
//  3. Wrap the item key with box.SealAnonymous to recipientPublicKey.
//
// The item key never appears outside this function in plaintext.
func (s *identityService) SealItem(item any, recipientPublicKey []byte) (string, string, error) {
	recipientKey, err := toBoxKey(recipientPublicKey)
	if err != nil {
		return "", "", err
	}

	itemKey := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, itemKey); err != nil {
		return "", "", fmt.Errorf("generate item key: %w", err)
	}

	plaintext, err := json.Marshal(item)
	if err != nil {
		return "", "", fmt.Errorf("marshal item: %w", err)
	}

	gcm, err := newGCM(itemKey)
	if err != nil {
		return "", "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", "", fmt.Errorf("generate nonce: %w", err)
	}
	blob := append(nonce, gcm.Seal(nil, nonce, plaintext, nil)...)

	wrapped, err := box.SealAnonymous(nil, itemKey, recipientKey, rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("wrap item key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(blob),
		base64.StdEncoding.EncodeToString(wrapped),
		nil
}

// OpenItem implements [IdentityService]. It unwraps the item key with the
// recipient's keypair, then decrypts and unmarshals the payload.
//
// Failure modes are kept distinct per the sharing contract:
//   - wrong or corrupted private key → ErrKeyUnwrapFailed;
//   - key fine but payload fails authentication → ErrPayloadTampered.
func (s *identityService) OpenItem(itemCiphertext, wrappedKey string, recipientPrivateKey []byte, target any) error {
	privKey, err := toBoxKey(recipientPrivateKey)
	if err != nil {
		return err
	}

	// SealAnonymous derives the ephemeral shared key from the recipient's
	// public key, so we reconstruct it from the private scalar.
	var pubKey [32]byte
	derivePublicKey(&pubKey, privKey)

	wrapped, err := base64.StdEncoding.DecodeString(wrappedKey)
	if err != nil {
		return fmt.Errorf("%w: decode wrapped key: %w", ErrKeyUnwrapFailed, err)
	}

	itemKey, ok := box.OpenAnonymous(nil, wrapped, &pubKey, privKey)
	if !ok {
		return ErrKeyUnwrapFailed
	}

	blob, err := base64.StdEncoding.DecodeString(itemCiphertext)
	if err != nil {
		return fmt.Errorf("%w: decode ciphertext: %w", ErrPayloadTampered, err)
	}

	gcm, err := newGCM(itemKey)
	if err != nil {
		return err
	}

	if len(blob) < gcm.NonceSize() {
		return fmt.Errorf("%w: %w", ErrPayloadTampered, ErrCiphertextTooShort)
	}
	nonce, ciphertext := blob[:gcm.NonceSize()], blob[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return ErrPayloadTampered
	}

	if err := json.Unmarshal(plaintext, target); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}

	return nil
}

// derivePublicKey recomputes the Curve25519 public key from the private
// scalar. box keypairs satisfy pub = ScalarBaseMult(priv).
func derivePublicKey(pub, priv *[32]byte) {
	curve25519.ScalarBaseMult(pub, priv)
}

// toBoxKey converts raw key bytes into the fixed-size array NaCl expects.
func toBoxKey(raw []byte) (*[32]byte, error) {
	if len(raw) != 32 {
		return nil, fmt.Errorf("%w: want 32 bytes, got %d", ErrInvalidKey, len(raw))
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}
