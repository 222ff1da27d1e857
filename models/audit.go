package models

import "time"

// Audit event types emitted by the trust subsystem.
const (
	AuditGrantCreated     = "grant_created"
	AuditGrantAccepted    = "grant_accepted"
	AuditGrantLogin       = "login"
	AuditGrantRevoked     = "revoked"
	AuditGrantExpired     = "expired"
	AuditSessionClosed    = "session_closed"
	AuditWillUpdated      = "will_updated"
	AuditEmergencyDecided = "emergency_decided"
)

// AuditEvent is an append-only record of what happened to a grant, session
// or emergency request. Events are never updated or deleted; the audit trail
// is the sole source of truth for "what happened".
type AuditEvent struct {
	// EventID is the internal unique identifier of the event.
	EventID int64 `json:"id"`

	// GrantID keys the event to a grant; empty for emergency/will events.
	GrantID string `json:"grant_id,omitempty"`

	// SessionID keys the event to an access session, if any.
	SessionID string `json:"session_id,omitempty"`

	// ActorID identifies who caused the event; 0 for system actions
	// (expiry sweep, deferred auto-revoke).
	ActorID int64 `json:"actor_id"`

	// EventType is one of the Audit* constants.
	EventType string `json:"event_type"`

	// Details carries free-form context (reason strings, request ids).
	Details string `json:"details,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (e AuditEvent) TableName() string {
	return "audit_events"
}
