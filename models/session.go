package models

import "time"

// Logout reasons recorded when an access session terminates.
const (
	LogoutReasonNormal  = "normal"
	LogoutReasonTimeout = "timeout"
	LogoutReasonRevoked = "revoked"
	LogoutReasonExpired = "expired"
)

// AccessSession is one successful auto-login against a grant. A session is
// terminal once LoggedOutAt is set; the reason distinguishes a normal
// logout, an inactivity timeout, and a forced revocation close.
type AccessSession struct {
	// SessionID is the internal unique identifier of the session.
	SessionID string `json:"id"`

	// GrantID is the grant this session was opened against.
	GrantID string `json:"grant_id"`

	// UserID is the recipient account holding the session, when known.
	UserID *int64 `json:"user_id,omitempty"`

	// SessionToken authenticates subsequent activity pings. Opaque.
	SessionToken string `json:"session_token"`

	LoggedInAt     time.Time  `json:"logged_in_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	LoggedOutAt    *time.Time `json:"logged_out_at,omitempty"`

	// LogoutReason is one of the LogoutReason* constants; empty while the
	// session is open.
	LogoutReason string `json:"logout_reason,omitempty"`
}

func (s AccessSession) TableName() string {
	return "access_sessions"
}

// Open reports whether the session has not yet terminated.
func (s AccessSession) Open() bool {
	return s.LoggedOutAt == nil
}
