package models

import "time"

// VaultBlob is the single opaque ciphertext holding a user's serialized
// vault (password entries, folders, contacts). It is mutated only by the
// owner's authenticated client and never decrypted server-side.
//
// Concurrent writers (multiple devices of the same user) race: the last
// successful write wins, there is no merge.
type VaultBlob struct {
	// UserID is the owning account. One blob per user.
	UserID int64 `json:"-"`

	// Ciphertext is the base64-encoded AES-GCM blob (nonce ‖ ciphertext)
	// produced by the client.
	Ciphertext string `json:"ciphertext"`

	// UpdatedAt is the time of the last successful overwrite.
	UpdatedAt time.Time `json:"updated_at"`
}

func (v VaultBlob) TableName() string {
	return "vault_blobs"
}

// Vault is the client-side decrypted form of a VaultBlob. It exists only in
// an authenticated session's memory.
type Vault struct {
	Entries  []VaultEntry   `json:"entries"`
	Folders  []string       `json:"folders"`
	Contacts []VaultContact `json:"contacts"`
}

// VaultEntry is a single stored credential.
type VaultEntry struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Username string `json:"username"`
	Secret   string `json:"secret"`
	URL      string `json:"url"`
	Folder   string `json:"folder"`
	ItemType string `json:"item_type"`
	Notes    string `json:"notes"`
}

// VaultContact is a known sharing counterpart kept inside the vault.
type VaultContact struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
