package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// opaqueSecretBytes is the entropy of a generated credential. 32 random bytes
// comfortably exceed any interactive password.
const opaqueSecretBytes = 32

// NewOpaqueCredential generates a random local credential and returns its
// bcrypt hash. The plaintext never leaves this function: a directory-backed
// user must only ever authenticate through the directory, so the stored hash
// exists purely to keep the local row from being passwordless. Regenerated on
// every successful directory login so a stale local secret can never be
// replayed.
func NewOpaqueCredential(h *Hasher) (string, error) {
	buf := make([]byte, opaqueSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate credential: %w", err)
	}
	secret := base64.RawStdEncoding.EncodeToString(buf)
	hash, err := h.Hash([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return hash, nil
}
