package models

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin marks tokens issued to administrator accounts. Carried in the
// custom "role" claim and checked by the admin-only middleware.
const RoleAdmin = "admin"

// Token wraps a JWT token with convenience accessors for authentication flows.
//
// It embeds [jwt.Token] for low-level token operations (signing, parsing)
// and [TokenClaims] for claim access.
//
// SignedString holds the compact serialized form of the token
// (header.payload.signature) ready to be transmitted in HTTP headers.
//
// UserID and Role are cached, parsed copies of the claims populated during
// construction or parsing so callers avoid repeated claim decoding.
type Token struct {
	// Token is the underlying JWT token used for signing and claim
	// inspection. Excluded from JSON serialization because only the compact
	// string form is meaningful outside the server process.
	*jwt.Token `json:"-"`

	// TokenClaims is the full claim set of the token.
	TokenClaims

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// UserID is the owner identifier extracted from the "sub" claim.
	UserID int64 `json:"-"`
}

// TokenClaims extends the standard RFC 7519 claim set with the
// application's role claim.
type TokenClaims struct {
	jwt.RegisteredClaims

	// Role is empty for regular users and RoleAdmin for administrators.
	Role string `json:"role,omitempty"`
}

// GetUserID extracts the user identifier from the token's "sub" (subject)
// claim, parses it as a base-10 int64, and returns the result.
//
// Returns an error if the subject claim is missing, empty, or cannot be
// converted to int64.
func (t *Token) GetUserID() (int64, error) {
	userIDString, err := t.TokenClaims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("error extracting UserID from token: %w", err)
	}

	userID, err := strconv.ParseInt(userIDString, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting UserID from token to int64: %w", err)
	}

	return userID, nil
}

// IsAdmin reports whether the token carries the administrator role claim.
func (t *Token) IsAdmin() bool {
	return t.TokenClaims.Role == RoleAdmin
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}
