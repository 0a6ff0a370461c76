package security

import (
	"testing"
)

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(4)
	secret := []byte("secret123")
	hash, err := h.Hash(secret)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" {
		t.Fatal("Hash returned empty")
	}
	if err := h.Compare(hash, secret); err != nil {
		t.Fatalf("Compare: %v", err)
	}
}

func TestHasher_CompareWrongSecret(t *testing.T) {
	h := NewHasher(4)
	hash, _ := h.Hash([]byte("secret123"))
	if err := h.Compare(hash, []byte("wrong")); err == nil {
		t.Fatal("Compare with wrong secret should fail")
	}
}

func TestHasher_Cost(t *testing.T) {
	h := NewHasher(12)
	if h.Cost != 12 {
		t.Errorf("Cost want 12, got %d", h.Cost)
	}
	h0 := NewHasher(0)
	if h0.Cost < 4 {
		t.Errorf("zero cost should be clamped to at least MinCost, got %d", h0.Cost)
	}
}

func TestNewOpaqueCredential(t *testing.T) {
	h := NewHasher(4)
	first, err := NewOpaqueCredential(h)
	if err != nil {
		t.Fatalf("NewOpaqueCredential: %v", err)
	}
	if first == "" {
		t.Fatal("returned empty hash")
	}
	second, err := NewOpaqueCredential(h)
	if err != nil {
		t.Fatalf("NewOpaqueCredential: %v", err)
	}
	if first == second {
		t.Error("two generated credentials should not hash identically")
	}
	// No plausible guess may match the stored hash.
	if err := h.Compare(first, []byte("")); err == nil {
		t.Error("empty secret should not match a generated credential")
	}
}
