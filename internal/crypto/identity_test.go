package crypto

import (
	"bytes"
	"errors"
	"testing"
)

type sharedItem struct {
	Title    string `json:"title"`
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

func TestGenerateIdentityKeys_ShapeAndRandomness(t *testing.T) {
	svc := NewIdentityService()

	pub1, priv1, err := svc.GenerateIdentityKeys()
	if err != nil {
		t.Fatalf("GenerateIdentityKeys error: %v", err)
	}
	pub2, priv2, err := svc.GenerateIdentityKeys()
	if err != nil {
		t.Fatalf("GenerateIdentityKeys error: %v", err)
	}

	if len(pub1) != 32 || len(priv1) != 32 {
		t.Fatalf("key lengths = %d/%d, want 32/32", len(pub1), len(priv1))
	}
	if bytes.Equal(pub1, pub2) || bytes.Equal(priv1, priv2) {
		t.Fatalf("expected fresh keypairs to differ")
	}
}

func TestSealOpenItem_RoundTrip(t *testing.T) {
	svc := NewIdentityService()

	pub, priv, err := svc.GenerateIdentityKeys()
	if err != nil {
		t.Fatalf("GenerateIdentityKeys error: %v", err)
	}

	original := sharedItem{Title: "bank", Username: "john", Secret: "hunter2"}

	ciphertext, wrappedKey, err := svc.SealItem(original, pub)
	if err != nil {
		t.Fatalf("SealItem error: %v", err)
	}

	var got sharedItem
	if err := svc.OpenItem(ciphertext, wrappedKey, priv, &got); err != nil {
		t.Fatalf("OpenItem error: %v", err)
	}
	if got != original {
		t.Fatalf("round-tripped item = %+v, want %+v", got, original)
	}
}

func TestOpenItem_WrongPrivateKeyFailsUnwrap(t *testing.T) {
	svc := NewIdentityService()

	pub, _, err := svc.GenerateIdentityKeys()
	if err != nil {
		t.Fatalf("GenerateIdentityKeys error: %v", err)
	}
	_, otherPriv, err := svc.GenerateIdentityKeys()
	if err != nil {
		t.Fatalf("GenerateIdentityKeys error: %v", err)
	}

	ciphertext, wrappedKey, err := svc.SealItem(sharedItem{Secret: "x"}, pub)
	if err != nil {
		t.Fatalf("SealItem error: %v", err)
	}

	var got sharedItem
	err = svc.OpenItem(ciphertext, wrappedKey, otherPriv, &got)
	if !errors.Is(err, ErrKeyUnwrapFailed) {
		t.Fatalf("expected ErrKeyUnwrapFailed, got %v", err)
	}
}

func TestOpenItem_TamperedPayload(t *testing.T) {
	svc := NewIdentityService()

	pub, priv, err := svc.GenerateIdentityKeys()
	if err != nil {
		t.Fatalf("GenerateIdentityKeys error: %v", err)
	}

	ciphertext, wrappedKey, err := svc.SealItem(sharedItem{Secret: "x"}, pub)
	if err != nil {
		t.Fatalf("SealItem error: %v", err)
	}

	// Swap the payload for ciphertext sealed under a different item key.
	otherCiphertext, _, err := svc.SealItem(sharedItem{Secret: "y"}, pub)
	if err != nil {
		t.Fatalf("SealItem error: %v", err)
	}
	_ = ciphertext

	var got sharedItem
	err = svc.OpenItem(otherCiphertext, wrappedKey, priv, &got)
	if !errors.Is(err, ErrPayloadTampered) {
		t.Fatalf("expected ErrPayloadTampered, got %v", err)
	}
}

func TestSealItem_RejectsBadPublicKey(t *testing.T) {
	svc := NewIdentityService()

	_, _, err := svc.SealItem(sharedItem{}, []byte("short"))
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
