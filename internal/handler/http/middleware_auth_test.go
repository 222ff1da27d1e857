package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-vault-trust/internal/service"
	"github.com/MKhiriev/go-vault-trust/internal/utils"
	"github.com/MKhiriev/go-vault-trust/models"
)

// ─────────────────────────────────────────────
// auth middleware
// ─────────────────────────────────────────────

// TestAuth_MissingHeader verifies that a request without an Authorization
// header is rejected with 401 before reaching the next handler.
func TestAuth_MissingHeader(t *testing.T) {
	h := newTestHandler(t, &service.Services{AuthService: &mockAuthService{}})

	nextCalled := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { nextCalled = true })

	req := httptest.NewRequest(http.MethodGet, "/api/vault", nil)
	rec := httptest.NewRecorder()

	h.auth(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, nextCalled)
}

// TestAuth_MalformedHeader verifies that a header without a token part is
// rejected with 401.
func TestAuth_MalformedHeader(t *testing.T) {
	h := newTestHandler(t, &service.Services{AuthService: &mockAuthService{}})

	req := httptest.NewRequest(http.MethodGet, "/api/vault", nil)
	req.Header.Set("Authorization", "Bearer")
	rec := httptest.NewRecorder()

	h.auth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestAuth_InvalidToken verifies that a token rejected by the service maps
// to 401.
func TestAuth_InvalidToken(t *testing.T) {
	auth := &mockAuthService{
		parseTokenFn: func(_ context.Context, _ string) (models.Token, error) {
			return models.Token{}, service.ErrTokenIsExpiredOrInvalid
		},
	}
	h := newTestHandler(t, &service.Services{AuthService: auth})

	req := httptest.NewRequest(http.MethodGet, "/api/vault", nil)
	req.Header.Set("Authorization", "Bearer expired.jwt.token")
	rec := httptest.NewRecorder()

	h.auth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestAuth_ValidToken verifies that the user id and admin flag from the
// token land in the request context.
func TestAuth_ValidToken(t *testing.T) {
	auth := &mockAuthService{
		parseTokenFn: func(_ context.Context, tokenString string) (models.Token, error) {
			assert.Equal(t, "signed.jwt.token", tokenString)
			return stubToken(7, true), nil
		},
	}
	h := newTestHandler(t, &service.Services{AuthService: auth})

	var gotUserID int64
	var gotAdmin bool
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		userID, ok := utils.GetUserIDFromContext(r.Context())
		require.True(t, ok)
		gotUserID = userID
		gotAdmin = utils.IsAdminFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/vault", nil)
	req.Header.Set("Authorization", "Bearer signed.jwt.token")
	rec := httptest.NewRecorder()

	h.auth(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), gotUserID)
	assert.True(t, gotAdmin)
}

// ─────────────────────────────────────────────
// adminOnly middleware
// ─────────────────────────────────────────────

// TestAdminOnly_RejectsRegularUser verifies 403 for a token without the
// administrator role.
func TestAdminOnly_RejectsRegularUser(t *testing.T) {
	h := newTestHandler(t, &service.Services{})

	nextCalled := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { nextCalled = true })

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/admin/emergency/requests", nil), 7)
	rec := httptest.NewRecorder()

	h.adminOnly(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, nextCalled)
}

// TestAdminOnly_PassesAdmin verifies that the admin flag in context lets the
// request through.
func TestAdminOnly_PassesAdmin(t *testing.T) {
	h := newTestHandler(t, &service.Services{})

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/admin/emergency/requests", nil), 1)
	req = req.WithContext(context.WithValue(req.Context(), utils.AdminCtxKey, true))
	rec := httptest.NewRecorder()

	h.adminOnly(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ─────────────────────────────────────────────
// getTokenFromAuthHeader
// ─────────────────────────────────────────────

func TestGetTokenFromAuthHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "valid bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "missing token part", header: "Bearer", wantErr: ErrInvalidAuthorizationHeader},
		{name: "empty token part", header: "Bearer ", wantErr: ErrEmptyToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := getTokenFromAuthHeader(tt.header)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
