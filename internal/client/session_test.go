// Copyright 2026 Rasul Khiriev
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-vault-trust/internal/bus"
	"github.com/MKhiriev/go-vault-trust/internal/crypto"
	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/models"
)

// ─────────────────────────────────────────────
// Mock ServerAdapter
// ─────────────────────────────────────────────

// mockServerAdapter plays a tiny in-memory server: registration stores the
// user record, params and vault reads answer from it. Each method field can
// be overridden per test case.
type mockServerAdapter struct {
	user  models.User
	blob  models.VaultBlob
	token string

	loginFn       func(ctx context.Context, email, authHash string) error
	deleteShareFn func(ctx context.Context, shareID int64) error
	createGrantFn func(ctx context.Context, req models.CreateGrantRequest) (models.AccessGrant, error)
	lookupFn      func(ctx context.Context, email string) (models.PublicKeyResponse, error)
	createShareFn func(ctx context.Context, req models.CreateShareRequest) (models.ContactShare, error)
}

func (m *mockServerAdapter) SetToken(token string) { m.token = token }

func (m *mockServerAdapter) Token() string { return m.token }

func (m *mockServerAdapter) Register(_ context.Context, user models.User) error {
	m.user = user
	m.token = "signed.jwt.token"
	return nil
}

func (m *mockServerAdapter) Login(ctx context.Context, email, authHash string) error {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, authHash)
	}
	if email != m.user.Email || authHash != m.user.AuthHash {
		return ErrUnauthorized
	}
	m.token = "signed.jwt.token"
	return nil
}

func (m *mockServerAdapter) Params(_ context.Context, email string) (models.UserParams, error) {
	if email != m.user.Email {
		return models.UserParams{}, ErrNotFound
	}
	return models.UserParams{
		Email:               m.user.Email,
		EncryptionSalt:      m.user.EncryptionSalt,
		EncryptedVaultKey:   m.user.EncryptedVaultKey,
		EncryptedPrivateKey: m.user.EncryptedPrivateKey,
		PublicKey:           m.user.PublicKey,
	}, nil
}

func (m *mockServerAdapter) GetVault(_ context.Context) (models.VaultBlob, error) {
	return m.blob, nil
}

func (m *mockServerAdapter) SaveVault(_ context.Context, blob models.VaultBlob) (models.VaultBlob, error) {
	m.blob = blob
	return blob, nil
}

func (m *mockServerAdapter) CreateShare(ctx context.Context, req models.CreateShareRequest) (models.ContactShare, error) {
	if m.createShareFn != nil {
		return m.createShareFn(ctx, req)
	}
	return models.ContactShare{
		ShareID:        1,
		RecipientEmail: req.RecipientEmail,
		ItemType:       req.ItemType,
		ItemCiphertext: req.ItemCiphertext,
		WrappedKey:     req.WrappedKey,
	}, nil
}

func (m *mockServerAdapter) ListInbox(_ context.Context) ([]models.ContactShare, error) {
	return nil, nil
}

func (m *mockServerAdapter) DeleteShare(ctx context.Context, shareID int64) error {
	if m.deleteShareFn != nil {
		return m.deleteShareFn(ctx, shareID)
	}
	return nil
}

func (m *mockServerAdapter) LookupPublicKey(ctx context.Context, email string) (models.PublicKeyResponse, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, email)
	}
	return models.PublicKeyResponse{Email: email, PublicKey: m.user.PublicKey}, nil
}

func (m *mockServerAdapter) CreateGrant(ctx context.Context, req models.CreateGrantRequest) (models.AccessGrant, error) {
	if m.createGrantFn != nil {
		return m.createGrantFn(ctx, req)
	}
	return models.AccessGrant{
		GrantID:        "0190c6f2-7d33-7a44-b8e1-2f6a9c1d0b55",
		RecipientEmail: req.RecipientEmail,
		ItemCiphertext: req.ItemCiphertext,
		Status:         models.GrantPending,
	}, nil
}

func (m *mockServerAdapter) ListGrants(_ context.Context) ([]models.AccessGrant, error) {
	return nil, nil
}

func (m *mockServerAdapter) RevokeGrant(_ context.Context, grantID, reason string) (models.AccessGrant, error) {
	return models.AccessGrant{GrantID: grantID, Status: models.GrantRevoked, StatusReason: reason}, nil
}

func (m *mockServerAdapter) GrantAudit(_ context.Context, _ string) ([]models.AuditEvent, error) {
	return nil, nil
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func newTestSession(adapter ServerAdapter, revocations bus.RevocationBus) *VaultSession {
	return NewVaultSession(
		adapter,
		crypto.NewKeyChainService(),
		crypto.NewIdentityService(),
		revocations,
		"https://vault.example.com",
		logger.Nop(),
	)
}

// registerAndReopen runs a full register/close/open cycle against the
// in-memory adapter and returns the reopened session.
func registerAndReopen(t *testing.T, adapter *mockServerAdapter, masterSecret string) *VaultSession {
	t.Helper()
	ctx := context.Background()

	first := newTestSession(adapter, nil)
	require.NoError(t, first.Register(ctx, "alice@example.com", "Alice", masterSecret))
	first.Close()

	second := newTestSession(adapter, nil)
	require.NoError(t, second.Open(ctx, "alice@example.com", masterSecret))
	return second
}

// ─────────────────────────────────────────────
// Register / Open round trip
// ─────────────────────────────────────────────

// TestSession_RegisterThenOpen verifies the full key lifecycle: registration
// generates wrapped material, a fresh session re-derives everything from the
// master secret alone and reads back the saved vault.
func TestSession_RegisterThenOpen(t *testing.T) {
	ctx := context.Background()
	adapter := &mockServerAdapter{}

	session := newTestSession(adapter, nil)
	require.NoError(t, session.Register(ctx, "alice@example.com", "Alice", "correct horse battery staple"))

	require.NoError(t, session.PutEntry(ctx, models.VaultEntry{
		ID: "e1", Title: "prod db", Username: "admin", Secret: "s3cret",
	}))
	session.Close()

	// the persisted blob must be ciphertext, not the entry itself
	assert.NotContains(t, adapter.blob.Ciphertext, "s3cret")

	reopened := newTestSession(adapter, nil)
	require.NoError(t, reopened.Open(ctx, "alice@example.com", "correct horse battery staple"))
	defer reopened.Close()

	vault, err := reopened.Vault()
	require.NoError(t, err)
	require.Len(t, vault.Entries, 1)
	assert.Equal(t, "s3cret", vault.Entries[0].Secret)
}

// TestSession_OpenWrongSecret verifies that a wrong master secret fails at
// the key unwrap, before any login attempt could even be made with a valid
// verifier.
func TestSession_OpenWrongSecret(t *testing.T) {
	ctx := context.Background()
	adapter := &mockServerAdapter{}

	session := newTestSession(adapter, nil)
	require.NoError(t, session.Register(ctx, "alice@example.com", "Alice", "right secret"))
	session.Close()

	reopened := newTestSession(adapter, nil)
	err := reopened.Open(ctx, "alice@example.com", "wrong secret")
	require.Error(t, err)
	// the wrong secret produces a wrong verifier, so the mock server
	// rejects the login before the unwrap is reached
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// TestSession_CloseLocksOperations verifies that a closed session refuses
// vault operations.
func TestSession_CloseLocksOperations(t *testing.T) {
	ctx := context.Background()
	adapter := &mockServerAdapter{}

	session := newTestSession(adapter, nil)
	require.NoError(t, session.Register(ctx, "alice@example.com", "Alice", "secret"))
	session.Close()

	_, err := session.Vault()
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, session.SaveVault(ctx), ErrSessionClosed)
	assert.Empty(t, adapter.Token())
}

// ─────────────────────────────────────────────
// Contact shares
// ─────────────────────────────────────────────

// TestSession_ShareAndAccept verifies the hybrid share flow end to end:
// the sender seals against the recipient's public key, the recipient opens
// with its private key, merges and clears the mailbox entry.
func TestSession_ShareAndAccept(t *testing.T) {
	ctx := context.Background()

	recipientAdapter := &mockServerAdapter{}
	recipient := newTestSession(recipientAdapter, nil)
	require.NoError(t, recipient.Register(ctx, "bob@example.com", "Bob", "bob secret"))
	defer recipient.Close()

	senderAdapter := &mockServerAdapter{}
	sender := newTestSession(senderAdapter, nil)
	require.NoError(t, sender.Register(ctx, "alice@example.com", "Alice", "alice secret"))
	defer sender.Close()

	// the sender's directory lookup answers bob's published key
	senderAdapter.lookupFn = func(_ context.Context, email string) (models.PublicKeyResponse, error) {
		return models.PublicKeyResponse{Email: email, PublicKey: recipientAdapter.user.PublicKey}, nil
	}

	entry := models.VaultEntry{ID: "e1", Title: "wifi", Secret: "hunter2", ItemType: models.ItemLoginPassword}
	share, err := sender.ShareItem(ctx, "bob@example.com", entry)
	require.NoError(t, err)
	assert.NotContains(t, share.ItemCiphertext, "hunter2")

	deleted := false
	recipientAdapter.deleteShareFn = func(_ context.Context, shareID int64) error {
		assert.Equal(t, share.ShareID, shareID)
		deleted = true
		return nil
	}

	require.NoError(t, recipient.AcceptShare(ctx, share))
	assert.True(t, deleted)

	vault, err := recipient.Vault()
	require.NoError(t, err)
	require.Len(t, vault.Entries, 1)
	assert.Equal(t, "hunter2", vault.Entries[0].Secret)
}

// TestSession_AcceptShare_RetriesDelete verifies that a transient mailbox
// delete failure is retried after the merge.
func TestSession_AcceptShare_RetriesDelete(t *testing.T) {
	ctx := context.Background()

	adapter := &mockServerAdapter{}
	session := newTestSession(adapter, nil)
	require.NoError(t, session.Register(ctx, "bob@example.com", "Bob", "bob secret"))
	defer session.Close()

	// seal an item to ourselves
	sealed, err := session.ShareItem(ctx, "bob@example.com", models.VaultEntry{ID: "e1", Secret: "x"})
	require.NoError(t, err)

	attempts := 0
	adapter.deleteShareFn = func(_ context.Context, _ int64) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}

	require.NoError(t, session.AcceptShare(ctx, sealed))
	assert.Equal(t, 3, attempts)
}

// ─────────────────────────────────────────────
// Share links
// ─────────────────────────────────────────────

// TestSession_CreateShareLink verifies that the grant request carries only
// ciphertext and the fragment key appears nowhere but after the URL's #.
func TestSession_CreateShareLink(t *testing.T) {
	ctx := context.Background()

	adapter := &mockServerAdapter{}
	session := newTestSession(adapter, nil)
	require.NoError(t, session.Register(ctx, "alice@example.com", "Alice", "secret"))
	defer session.Close()

	var sentRequest models.CreateGrantRequest
	adapter.createGrantFn = func(_ context.Context, req models.CreateGrantRequest) (models.AccessGrant, error) {
		sentRequest = req
		return models.AccessGrant{GrantID: "grant-1", ItemCiphertext: req.ItemCiphertext, Status: models.GrantPending}, nil
	}

	link, err := session.CreateShareLink(ctx,
		models.GrantPayload{Username: "svc-account", Secret: "s3cret"},
		models.CreateGrantRequest{RecipientEmail: "bob@example.com", CanAutoLogin: true},
	)
	require.NoError(t, err)

	assert.NotContains(t, sentRequest.ItemCiphertext, "s3cret")
	require.Contains(t, link.URL, "https://vault.example.com/shared-access/accept/grant-1#key=")

	// the fragment key must never appear in any request field
	fragment := link.URL[strings.Index(link.URL, "#key=")+len("#key="):]
	assert.NotEmpty(t, fragment)
	assert.NotContains(t, sentRequest.ItemCiphertext, fragment)
	assert.NotContains(t, sentRequest.RecipientEmail, fragment)
}

// ─────────────────────────────────────────────
// WatchGrant
// ─────────────────────────────────────────────

// TestSession_WatchGrant verifies that a published revocation reaches the
// watcher callback.
func TestSession_WatchGrant(t *testing.T) {
	ctx := context.Background()

	revocations := bus.NewMemoryBus(logger.Nop())
	defer revocations.Close()

	adapter := &mockServerAdapter{}
	session := newTestSession(adapter, revocations)
	require.NoError(t, session.Register(ctx, "alice@example.com", "Alice", "secret"))
	defer session.Close()

	received := make(chan bus.Event, 1)
	require.NoError(t, session.WatchGrant(ctx, "grant-1", func(event bus.Event) {
		received <- event
	}))

	require.NoError(t, revocations.PublishRevoked(ctx, bus.Event{
		GrantID:   "grant-1",
		Reason:    models.RevokeReasonOwner,
		Timestamp: time.Now(),
	}))

	select {
	case event := <-received:
		assert.Equal(t, "grant-1", event.GrantID)
		assert.Equal(t, models.RevokeReasonOwner, event.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("revocation event never reached the watcher")
	}
}
