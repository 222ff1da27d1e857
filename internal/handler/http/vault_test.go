package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-vault-trust/internal/service"
	"github.com/MKhiriev/go-vault-trust/internal/store"
	"github.com/MKhiriev/go-vault-trust/models"
)

// ─────────────────────────────────────────────
// getVault
// ─────────────────────────────────────────────

// TestGetVault_Success verifies that the caller's blob is returned as-is.
func TestGetVault_Success(t *testing.T) {
	vault := &mockVaultService{
		getFn: func(_ context.Context, userID int64) (models.VaultBlob, error) {
			return models.VaultBlob{UserID: userID, Ciphertext: "b2xkIGJsb2I="}, nil
		},
	}

	h := newTestHandler(t, &service.Services{VaultService: vault})
	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/vault", nil), 7)
	rec := httptest.NewRecorder()

	h.getVault(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var blob models.VaultBlob
	decodeResponse(t, rec, &blob)
	assert.Equal(t, "b2xkIGJsb2I=", blob.Ciphertext)
}

// TestGetVault_EmptyAccount verifies that a fresh account without a vault
// receives an empty blob instead of 404.
func TestGetVault_EmptyAccount(t *testing.T) {
	vault := &mockVaultService{
		getFn: func(_ context.Context, _ int64) (models.VaultBlob, error) {
			return models.VaultBlob{}, store.ErrVaultNotFound
		},
	}

	h := newTestHandler(t, &service.Services{VaultService: vault})
	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/vault", nil), 7)
	rec := httptest.NewRecorder()

	h.getVault(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var blob models.VaultBlob
	decodeResponse(t, rec, &blob)
	assert.Empty(t, blob.Ciphertext)
}

// TestGetVault_Unauthenticated verifies that a request without an identity
// in context is rejected with 401.
func TestGetVault_Unauthenticated(t *testing.T) {
	h := newTestHandler(t, &service.Services{VaultService: &mockVaultService{}})
	req := httptest.NewRequest(http.MethodGet, "/api/vault", nil)
	rec := httptest.NewRecorder()

	h.getVault(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ─────────────────────────────────────────────
// saveVault
// ─────────────────────────────────────────────

// TestSaveVault_BindsAuthenticatedIdentity verifies that the blob is always
// saved under the authenticated account.
func TestSaveVault_BindsAuthenticatedIdentity(t *testing.T) {
	var savedFor int64
	vault := &mockVaultService{
		saveFn: func(_ context.Context, blob models.VaultBlob) (models.VaultBlob, error) {
			savedFor = blob.UserID
			return blob, nil
		},
	}

	body := jsonBody(t, models.VaultBlob{Ciphertext: "bmV3IGJsb2I="})
	h := newTestHandler(t, &service.Services{VaultService: vault})
	req := authedRequest(httptest.NewRequest(http.MethodPut, "/api/vault", strings.NewReader(body)), 7)
	rec := httptest.NewRecorder()

	h.saveVault(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), savedFor)
}

// TestSaveVault_InvalidJSON verifies that a malformed body results in 400.
func TestSaveVault_InvalidJSON(t *testing.T) {
	h := newTestHandler(t, &service.Services{VaultService: &mockVaultService{}})
	req := authedRequest(httptest.NewRequest(http.MethodPut, "/api/vault", strings.NewReader("{broken")), 7)
	rec := httptest.NewRecorder()

	h.saveVault(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestSaveVault_EmptyCiphertext verifies that service validation errors map
// to 400 Bad Request.
func TestSaveVault_EmptyCiphertext(t *testing.T) {
	vault := &mockVaultService{
		saveFn: func(_ context.Context, _ models.VaultBlob) (models.VaultBlob, error) {
			return models.VaultBlob{}, service.ErrInvalidDataProvided
		},
	}

	h := newTestHandler(t, &service.Services{VaultService: vault})
	req := authedRequest(httptest.NewRequest(http.MethodPut, "/api/vault", strings.NewReader(`{}`)), 7)
	rec := httptest.NewRecorder()

	h.saveVault(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
