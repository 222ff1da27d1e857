// Copyright 2026 Rasul Khiriev
// SPDX-License-Identifier: Apache-2.0

// Package client holds the user-facing side of the zero-knowledge scheme:
// key derivation, vault decryption, contact shares and link grants. All
// secret material lives inside a VaultSession and dies with it.
package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-vault-trust/internal/bus"
	"github.com/MKhiriev/go-vault-trust/internal/crypto"
	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/models"
)

// shareLinkPath is the public path segment of a consumable share URL. The
// fragment key is appended after "#key=" and is never part of any request.
const shareLinkPath = "/shared-access/accept/"

// deleteShareAttempts bounds the mailbox-delete retry after a share has
// already been merged into the vault.
const deleteShareAttempts = 3

// VaultSession is the session-scoped context of one logged-in user. It is
// created by Open (or Register) and destroyed by Close; the master key,
// vault key and decrypted vault exist only between the two.
//
// A session is safe for concurrent use. Closing it zeroes all key material.
type VaultSession struct {
	adapter     ServerAdapter
	keychain    crypto.KeyChainService
	identity    crypto.IdentityService
	revocations bus.RevocationBus
	shareBase   string
	logger      *logger.Logger

	mu         sync.Mutex
	opened     bool
	email      string
	masterKey  []byte
	vaultKey   []byte
	privateKey []byte
	vault      models.Vault
	watches    []func()
}

// NewVaultSession wires a closed session. revocations may be nil; WatchGrant
// then reports an error instead of subscribing.
func NewVaultSession(adapter ServerAdapter, keychain crypto.KeyChainService, identity crypto.IdentityService, revocations bus.RevocationBus, shareBaseURL string, logger *logger.Logger) *VaultSession {
	return &VaultSession{
		adapter:     adapter,
		keychain:    keychain,
		identity:    identity,
		revocations: revocations,
		shareBase:   strings.TrimRight(shareBaseURL, "/"),
		logger:      logger,
	}
}

// Register creates a new account and opens the session on it. All key
// material is generated here; the server only ever sees the wrapped forms
// and the hardened verifier.
func (s *VaultSession) Register(ctx context.Context, email, name, masterSecret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opened {
		return errors.New("session is already open")
	}

	salt, err := s.keychain.GenerateEncryptionSalt()
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	vaultKey, err := s.keychain.GenerateVaultKey()
	if err != nil {
		return fmt.Errorf("generate vault key: %w", err)
	}
	publicKey, privateKey, err := s.identity.GenerateIdentityKeys()
	if err != nil {
		return fmt.Errorf("generate identity keys: %w", err)
	}

	masterKey := s.keychain.DeriveMasterKey(masterSecret, salt)
	wrappedVaultKey, err := s.keychain.WrapVaultKey(vaultKey, masterKey)
	if err != nil {
		return fmt.Errorf("wrap vault key: %w", err)
	}
	sealedPrivateKey, err := s.keychain.EncryptPayload(privateKey, vaultKey)
	if err != nil {
		return fmt.Errorf("seal private key: %w", err)
	}

	user := models.User{
		Email:               email,
		Name:                name,
		AuthHash:            base64.StdEncoding.EncodeToString(s.keychain.AuthVerifier(masterKey, crypto.AuthSaltDomain)),
		EncryptionSalt:      base64.StdEncoding.EncodeToString(salt),
		EncryptedVaultKey:   base64.StdEncoding.EncodeToString(wrappedVaultKey),
		PublicKey:           base64.StdEncoding.EncodeToString(publicKey),
		EncryptedPrivateKey: sealedPrivateKey,
	}
	if err := s.adapter.Register(ctx, user); err != nil {
		return err
	}

	s.email = email
	s.masterKey = masterKey
	s.vaultKey = vaultKey
	s.privateKey = privateKey
	s.vault = models.Vault{}
	s.opened = true
	return nil
}

// Open logs an existing account in and decrypts its vault: fetch the KDF
// salt, derive the master key, prove the verifier, unwrap the vault key and
// pull the blob. A wrong master secret surfaces as ErrDecryptionFailed from
// the unwrap, never from the server.
func (s *VaultSession) Open(ctx context.Context, email, masterSecret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opened {
		return errors.New("session is already open")
	}

	params, err := s.adapter.Params(ctx, email)
	if err != nil {
		return err
	}

	salt, err := base64.StdEncoding.DecodeString(params.EncryptionSalt)
	if err != nil {
		return fmt.Errorf("decode salt: %w", err)
	}

	masterKey := s.keychain.DeriveMasterKey(masterSecret, salt)
	authHash := base64.StdEncoding.EncodeToString(s.keychain.AuthVerifier(masterKey, crypto.AuthSaltDomain))
	if err := s.adapter.Login(ctx, email, authHash); err != nil {
		return err
	}

	wrappedVaultKey, err := base64.StdEncoding.DecodeString(params.EncryptedVaultKey)
	if err != nil {
		return fmt.Errorf("decode wrapped vault key: %w", err)
	}
	vaultKey, err := s.keychain.UnwrapVaultKey(wrappedVaultKey, masterKey)
	if err != nil {
		return err
	}

	var privateKey []byte
	if params.EncryptedPrivateKey != "" {
		if err := s.keychain.DecryptPayload(params.EncryptedPrivateKey, vaultKey, &privateKey); err != nil {
			return fmt.Errorf("unseal private key: %w", err)
		}
	}

	blob, err := s.adapter.GetVault(ctx)
	if err != nil {
		return err
	}

	var vault models.Vault
	if blob.Ciphertext != "" {
		if err := s.keychain.DecryptPayload(blob.Ciphertext, vaultKey, &vault); err != nil {
			return err
		}
	}

	s.email = email
	s.masterKey = masterKey
	s.vaultKey = vaultKey
	s.privateKey = privateKey
	s.vault = vault
	s.opened = true
	return nil
}

// Vault returns a copy of the decrypted vault.
func (s *VaultSession) Vault() (models.Vault, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened {
		return models.Vault{}, ErrSessionClosed
	}
	return s.vault, nil
}

// PutEntry adds or replaces one vault entry in memory and persists the
// re-encrypted blob.
func (s *VaultSession) PutEntry(ctx context.Context, entry models.VaultEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened {
		return ErrSessionClosed
	}

	replaced := false
	for i := range s.vault.Entries {
		if s.vault.Entries[i].ID == entry.ID {
			s.vault.Entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		s.vault.Entries = append(s.vault.Entries, entry)
	}

	return s.saveVaultLocked(ctx)
}

// SaveVault re-encrypts the in-memory vault and pushes it. Last write wins
// across devices.
func (s *VaultSession) SaveVault(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened {
		return ErrSessionClosed
	}
	return s.saveVaultLocked(ctx)
}

func (s *VaultSession) saveVaultLocked(ctx context.Context) error {
	ciphertext, err := s.keychain.EncryptPayload(s.vault, s.vaultKey)
	if err != nil {
		return fmt.Errorf("encrypt vault: %w", err)
	}

	if _, err := s.adapter.SaveVault(ctx, models.VaultBlob{Ciphertext: ciphertext}); err != nil {
		return err
	}
	return nil
}

// ShareItem seals one vault entry for a registered contact and drops it
// into their mailbox. The recipient must have a published identity key.
func (s *VaultSession) ShareItem(ctx context.Context, recipientEmail string, entry models.VaultEntry) (models.ContactShare, error) {
	s.mu.Lock()
	if !s.opened {
		s.mu.Unlock()
		return models.ContactShare{}, ErrSessionClosed
	}
	s.mu.Unlock()

	key, err := s.adapter.LookupPublicKey(ctx, recipientEmail)
	if err != nil {
		return models.ContactShare{}, err
	}
	if key.PublicKey == "" {
		return models.ContactShare{}, fmt.Errorf("recipient %s has no published identity key", recipientEmail)
	}

	recipientPublicKey, err := base64.StdEncoding.DecodeString(key.PublicKey)
	if err != nil {
		return models.ContactShare{}, fmt.Errorf("decode recipient public key: %w", err)
	}

	itemCiphertext, wrappedKey, err := s.identity.SealItem(entry, recipientPublicKey)
	if err != nil {
		return models.ContactShare{}, fmt.Errorf("seal item: %w", err)
	}

	itemType := entry.ItemType
	if itemType == "" {
		itemType = models.ItemLoginPassword
	}

	return s.adapter.CreateShare(ctx, models.CreateShareRequest{
		RecipientEmail: recipientEmail,
		ItemType:       itemType,
		ItemCiphertext: itemCiphertext,
		WrappedKey:     wrappedKey,
	})
}

// Inbox lists the shares waiting in the caller's mailbox.
func (s *VaultSession) Inbox(ctx context.Context) ([]models.ContactShare, error) {
	s.mu.Lock()
	if !s.opened {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	s.mu.Unlock()

	return s.adapter.ListInbox(ctx)
}

// AcceptShare opens a mailbox entry with the identity private key, merges
// the item into the vault, persists the vault and deletes the entry. The
// delete is retried: the merge already happened, a lingering mailbox row
// must not survive it.
func (s *VaultSession) AcceptShare(ctx context.Context, share models.ContactShare) error {
	s.mu.Lock()

	if !s.opened {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if len(s.privateKey) == 0 {
		s.mu.Unlock()
		return ErrVaultLocked
	}

	var entry models.VaultEntry
	if err := s.identity.OpenItem(share.ItemCiphertext, share.WrappedKey, s.privateKey, &entry); err != nil {
		s.mu.Unlock()
		return err
	}

	s.vault.Entries = append(s.vault.Entries, entry)
	if err := s.saveVaultLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	return s.deleteShareWithRetry(ctx, share.ShareID)
}

// DeclineShare drops a mailbox entry without touching the vault.
func (s *VaultSession) DeclineShare(ctx context.Context, shareID int64) error {
	s.mu.Lock()
	if !s.opened {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.mu.Unlock()

	return s.adapter.DeleteShare(ctx, shareID)
}

func (s *VaultSession) deleteShareWithRetry(ctx context.Context, shareID int64) error {
	var err error
	for attempt := 0; attempt < deleteShareAttempts; attempt++ {
		if err = s.adapter.DeleteShare(ctx, shareID); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}
	return fmt.Errorf("delete share %d after merge: %w", shareID, err)
}

// ShareLink is the result of CreateShareLink: the persisted grant and the
// consumable URL carrying the fragment key.
type ShareLink struct {
	Grant models.AccessGrant

	// URL is "{base}/shared-access/accept/{grantID}#key={K}". The part
	// after # never leaves the creating and consuming clients.
	URL string
}

// CreateShareLink seals a credential payload with a fresh fragment key,
// persists the grant and builds the share URL. The key exists only in the
// returned URL fragment; it is not retained by the session and no request
// ever carries it.
func (s *VaultSession) CreateShareLink(ctx context.Context, payload models.GrantPayload, req models.CreateGrantRequest) (ShareLink, error) {
	s.mu.Lock()
	if !s.opened {
		s.mu.Unlock()
		return ShareLink{}, ErrSessionClosed
	}
	s.mu.Unlock()

	fragmentKey, err := s.keychain.GenerateVaultKey()
	if err != nil {
		return ShareLink{}, fmt.Errorf("generate fragment key: %w", err)
	}
	defer zero(fragmentKey)

	req.ItemCiphertext, err = s.keychain.EncryptPayload(payload, fragmentKey)
	if err != nil {
		return ShareLink{}, fmt.Errorf("seal grant payload: %w", err)
	}

	grant, err := s.adapter.CreateGrant(ctx, req)
	if err != nil {
		return ShareLink{}, err
	}

	return ShareLink{
		Grant: grant,
		URL:   s.shareBase + shareLinkPath + grant.GrantID + "#key=" + base64.RawURLEncoding.EncodeToString(fragmentKey),
	}, nil
}

// Grants lists the caller's grants.
func (s *VaultSession) Grants(ctx context.Context) ([]models.AccessGrant, error) {
	return s.adapter.ListGrants(ctx)
}

// RevokeGrant revokes one of the caller's grants.
func (s *VaultSession) RevokeGrant(ctx context.Context, grantID, reason string) (models.AccessGrant, error) {
	return s.adapter.RevokeGrant(ctx, grantID, reason)
}

// GrantAudit fetches the audit trail of one of the caller's grants.
func (s *VaultSession) GrantAudit(ctx context.Context, grantID string) ([]models.AuditEvent, error) {
	return s.adapter.GrantAudit(ctx, grantID)
}

// WatchGrant subscribes to revocation events of one grant and calls
// onRevoked for each. The subscription ends when ctx is cancelled or the
// session closes.
func (s *VaultSession) WatchGrant(ctx context.Context, grantID string, onRevoked func(bus.Event)) error {
	s.mu.Lock()
	if !s.opened {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.mu.Unlock()

	if s.revocations == nil {
		return errors.New("no revocation bus configured")
	}

	events, stop, err := s.revocations.SubscribeRevoked(ctx, grantID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.watches = append(s.watches, stop)
	s.mu.Unlock()

	go func() {
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				s.logger.Info().
					Str("grant_id", event.GrantID).
					Str("reason", event.Reason).
					Msg("grant revoked remotely")
				onRevoked(event)
			}
		}
	}()

	return nil
}

// Close tears down the session: active watches stop and all key material is
// zeroed. Safe to call more than once.
func (s *VaultSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened {
		return
	}

	for _, stop := range s.watches {
		stop()
	}
	s.watches = nil

	zero(s.masterKey)
	zero(s.vaultKey)
	zero(s.privateKey)
	s.masterKey = nil
	s.vaultKey = nil
	s.privateKey = nil
	s.vault = models.Vault{}
	s.adapter.SetToken("")
	s.opened = false
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
