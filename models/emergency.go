package models

import "time"

// EmergencyStatus is the state of an emergency access request.
type EmergencyStatus string

// Request lifecycle: pending → approved | rejected. Approved and rejected
// are terminal and mutually exclusive; re-deciding a decided request is
// rejected, never merged.
const (
	EmergencyPending  EmergencyStatus = "pending"
	EmergencyApproved EmergencyStatus = "approved"
	EmergencyRejected EmergencyStatus = "rejected"
)

// Terminal reports whether the request has been decided.
func (s EmergencyStatus) Terminal() bool {
	return s == EmergencyApproved || s == EmergencyRejected
}

// EmergencyRequest is a requester-submitted claim against a vault owner's
// digital will, decided by a human administrator. On approval the target's
// vault ciphertext is copied into GrantedVaultData: the request record
// becomes the handover artifact. Nothing is decrypted anywhere in this flow;
// how the requester obtains a decryption capability is out of band.
type EmergencyRequest struct {
	// RequestID is the public identifier of the request.
	RequestID string `json:"id"`

	// RequesterEmail identifies who is asking for the handover.
	RequesterEmail string `json:"requester_email"`

	// TargetUserEmail identifies the vault owner.
	TargetUserEmail string `json:"target_user_email"`

	// RequestType mirrors the will condition being claimed
	// (death, illness, absence, other).
	RequestType string `json:"request_type"`

	// ProofDocumentURL points at requester-submitted evidence.
	ProofDocumentURL string `json:"proof_document_url"`

	// Status is the request state machine position.
	Status EmergencyStatus `json:"status"`

	// AdminNotes is the administrator's decision rationale.
	AdminNotes string `json:"admin_notes,omitempty"`

	// GrantedVaultData is the target's vault ciphertext, copied exactly
	// once when the request is approved. Nil otherwise.
	GrantedVaultData *string `json:"granted_vault_data,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`

	// DecidedBy is the administrator account that made the decision.
	DecidedBy *int64 `json:"-"`
}

func (r EmergencyRequest) TableName() string {
	return "emergency_requests"
}
