// Copyright 2026 Rasul Khiriev
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/service"
	"github.com/MKhiriev/go-vault-trust/internal/utils"
	"github.com/MKhiriev/go-vault-trust/models"
)

// ─────────────────────────────────────────────
// Mock AuthService
// ─────────────────────────────────────────────

// mockAuthService implements service.AuthService for unit tests.
// Each method field can be overridden per test case.
type mockAuthService struct {
	registerUserFn func(ctx context.Context, user models.User) (models.User, error)
	loginFn        func(ctx context.Context, email string, authHash string) (models.User, error)
	paramsFn       func(ctx context.Context, email string) (models.UserParams, error)
	getUserFn      func(ctx context.Context, userID int64) (models.User, error)
	createTokenFn  func(ctx context.Context, user models.User) (models.Token, error)
	parseTokenFn   func(ctx context.Context, tokenString string) (models.Token, error)
}

func (m *mockAuthService) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	return m.registerUserFn(ctx, user)
}

func (m *mockAuthService) Login(ctx context.Context, email string, authHash string) (models.User, error) {
	return m.loginFn(ctx, email, authHash)
}

func (m *mockAuthService) Params(ctx context.Context, email string) (models.UserParams, error) {
	return m.paramsFn(ctx, email)
}

func (m *mockAuthService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, userID)
	}
	return models.User{UserID: userID, Email: "caller@example.com"}, nil
}

func (m *mockAuthService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	return m.createTokenFn(ctx, user)
}

func (m *mockAuthService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	return m.parseTokenFn(ctx, tokenString)
}

// ─────────────────────────────────────────────
// Mock VaultService
// ─────────────────────────────────────────────

type mockVaultService struct {
	getFn  func(ctx context.Context, userID int64) (models.VaultBlob, error)
	saveFn func(ctx context.Context, blob models.VaultBlob) (models.VaultBlob, error)
}

func (m *mockVaultService) GetVault(ctx context.Context, userID int64) (models.VaultBlob, error) {
	return m.getFn(ctx, userID)
}

func (m *mockVaultService) SaveVault(ctx context.Context, blob models.VaultBlob) (models.VaultBlob, error) {
	return m.saveFn(ctx, blob)
}

// ─────────────────────────────────────────────
// Mock ShareService
// ─────────────────────────────────────────────

type mockShareService struct {
	createFn func(ctx context.Context, share models.ContactShare) (models.ContactShare, error)
	listFn   func(ctx context.Context, recipientEmail string) ([]models.ContactShare, error)
	deleteFn func(ctx context.Context, shareID int64, recipientEmail string) error
	lookupFn func(ctx context.Context, email string) (models.PublicKeyResponse, error)
}

func (m *mockShareService) CreateShare(ctx context.Context, share models.ContactShare) (models.ContactShare, error) {
	return m.createFn(ctx, share)
}

func (m *mockShareService) ListInbox(ctx context.Context, recipientEmail string) ([]models.ContactShare, error) {
	return m.listFn(ctx, recipientEmail)
}

func (m *mockShareService) DeleteShare(ctx context.Context, shareID int64, recipientEmail string) error {
	return m.deleteFn(ctx, shareID, recipientEmail)
}

func (m *mockShareService) LookupPublicKey(ctx context.Context, email string) (models.PublicKeyResponse, error) {
	return m.lookupFn(ctx, email)
}

// ─────────────────────────────────────────────
// Mock GrantService
// ─────────────────────────────────────────────

type mockGrantService struct {
	createFn    func(ctx context.Context, ownerID int64, req models.CreateGrantRequest) (models.AccessGrant, error)
	getFn       func(ctx context.Context, grantID string) (models.AccessGrant, error)
	listFn      func(ctx context.Context, ownerID int64) ([]models.AccessGrant, error)
	acceptFn    func(ctx context.Context, grantID string, recipientID int64) (models.AccessGrant, error)
	declineFn   func(ctx context.Context, grantID string, recipientID int64) (models.AccessGrant, error)
	autoLoginFn func(ctx context.Context, grantID string, fragmentKey string, userID *int64) (models.GrantLoginResponse, error)
	revokeFn    func(ctx context.Context, grantID string, ownerID int64, reason string) (models.AccessGrant, error)
	auditFn     func(ctx context.Context, grantID string, ownerID int64) ([]models.AuditEvent, error)
	touchFn     func(ctx context.Context, sessionID string, sessionToken string) error
}

func (m *mockGrantService) CreateGrant(ctx context.Context, ownerID int64, req models.CreateGrantRequest) (models.AccessGrant, error) {
	return m.createFn(ctx, ownerID, req)
}

func (m *mockGrantService) GetGrant(ctx context.Context, grantID string) (models.AccessGrant, error) {
	return m.getFn(ctx, grantID)
}

func (m *mockGrantService) ListGrants(ctx context.Context, ownerID int64) ([]models.AccessGrant, error) {
	return m.listFn(ctx, ownerID)
}

func (m *mockGrantService) AcceptGrant(ctx context.Context, grantID string, recipientID int64) (models.AccessGrant, error) {
	return m.acceptFn(ctx, grantID, recipientID)
}

func (m *mockGrantService) DeclineGrant(ctx context.Context, grantID string, recipientID int64) (models.AccessGrant, error) {
	return m.declineFn(ctx, grantID, recipientID)
}

func (m *mockGrantService) AutoLogin(ctx context.Context, grantID string, fragmentKey string, userID *int64) (models.GrantLoginResponse, error) {
	return m.autoLoginFn(ctx, grantID, fragmentKey, userID)
}

func (m *mockGrantService) RevokeGrant(ctx context.Context, grantID string, ownerID int64, reason string) (models.AccessGrant, error) {
	return m.revokeFn(ctx, grantID, ownerID, reason)
}

func (m *mockGrantService) ListAudit(ctx context.Context, grantID string, ownerID int64) ([]models.AuditEvent, error) {
	return m.auditFn(ctx, grantID, ownerID)
}

func (m *mockGrantService) TouchSession(ctx context.Context, sessionID string, sessionToken string) error {
	if m.touchFn != nil {
		return m.touchFn(ctx, sessionID, sessionToken)
	}
	return nil
}

func (m *mockGrantService) SweepExpired(ctx context.Context) error { return nil }

func (m *mockGrantService) CloseIdleSessions(ctx context.Context) error { return nil }

func (m *mockGrantService) RevokeDue(ctx context.Context) error { return nil }

// ─────────────────────────────────────────────
// Mock WillService
// ─────────────────────────────────────────────

type mockWillService struct {
	upsertFn func(ctx context.Context, will models.DigitalWillConfig) (models.DigitalWillConfig, error)
	getFn    func(ctx context.Context, ownerID int64) (models.DigitalWillConfig, error)
}

func (m *mockWillService) UpsertWill(ctx context.Context, will models.DigitalWillConfig) (models.DigitalWillConfig, error) {
	return m.upsertFn(ctx, will)
}

func (m *mockWillService) GetWill(ctx context.Context, ownerID int64) (models.DigitalWillConfig, error) {
	return m.getFn(ctx, ownerID)
}

// ─────────────────────────────────────────────
// Mock EmergencyService
// ─────────────────────────────────────────────

type mockEmergencyService struct {
	submitFn func(ctx context.Context, request models.EmergencyRequest) (models.EmergencyRequest, error)
	listFn   func(ctx context.Context, status models.EmergencyStatus) ([]models.EmergencyRequest, error)
	decideFn func(ctx context.Context, requestID string, decision models.EmergencyDecisionRequest, adminID int64) (models.EmergencyRequest, error)
}

func (m *mockEmergencyService) SubmitRequest(ctx context.Context, request models.EmergencyRequest) (models.EmergencyRequest, error) {
	return m.submitFn(ctx, request)
}

func (m *mockEmergencyService) ListRequests(ctx context.Context, status models.EmergencyStatus) ([]models.EmergencyRequest, error) {
	return m.listFn(ctx, status)
}

func (m *mockEmergencyService) Decide(ctx context.Context, requestID string, decision models.EmergencyDecisionRequest, adminID int64) (models.EmergencyRequest, error) {
	return m.decideFn(ctx, requestID, decision, adminID)
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// newTestHandler builds a Handler over the given service mocks. Nil fields
// stay nil: a test touching an unwired service panics loudly instead of
// passing by accident.
func newTestHandler(t *testing.T, svcs *service.Services) *Handler {
	t.Helper()
	return NewHandler(svcs, logger.Nop())
}

// authedRequest attaches an authenticated identity to the request context
// the same way the auth middleware does.
func authedRequest(r *http.Request, userID int64) *http.Request {
	ctx := context.WithValue(r.Context(), utils.UserIDCtxKey, userID)
	return r.WithContext(ctx)
}

// jsonBody serialises v to a JSON string for request bodies.
func jsonBody(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// stubToken returns a models.Token whose subject claim is userID.
func stubToken(userID int64, admin bool) models.Token {
	role := ""
	if admin {
		role = models.RoleAdmin
	}
	return models.Token{
		TokenClaims: models.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.FormatInt(userID, 10)},
			Role:             role,
		},
		SignedString: "signed.jwt.token",
	}
}

// decodeResponse unmarshals the recorded response body into out.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
