package models

import "time"

// Vault item types carried in shares.
const (
	ItemLoginPassword = "login_password"
	ItemText          = "text"
	ItemBankCard      = "bank_card"
	ItemNote          = "note"
)

// ContactShare is a transient mailbox entry: one vault item re-encrypted for
// a known, registered recipient. The item payload is sealed with a fresh
// symmetric key; the key itself is wrapped with the recipient's public
// identity key. Once the recipient accepts (merging the item into their own
// vault), the entry is deleted — it is a move, not a durable grant.
type ContactShare struct {
	// ShareID is the internal unique identifier of the mailbox entry.
	ShareID int64 `json:"id"`

	// SenderID is the account that created the share.
	SenderID int64 `json:"sender_id"`

	// SenderEmail is denormalized for recipient display; never trusted for
	// authorization.
	SenderEmail string `json:"sender_email"`

	// RecipientEmail addresses the entry. No ownership check happens on the
	// recipient side until acceptance.
	RecipientEmail string `json:"recipient_email"`

	// ItemType is one of the Item* constants.
	ItemType string `json:"item_type"`

	// ItemCiphertext is the base64 AES-GCM blob of the shared item, sealed
	// with the per-item key.
	ItemCiphertext string `json:"item_ciphertext"`

	// WrappedKey is the per-item key encrypted to the recipient's public
	// identity key. Only the matching private key can unwrap it.
	WrappedKey string `json:"wrapped_key"`

	// CreatedAt is when the entry landed in the mailbox.
	CreatedAt time.Time `json:"created_at"`
}

func (s ContactShare) TableName() string {
	return "contact_shares"
}
