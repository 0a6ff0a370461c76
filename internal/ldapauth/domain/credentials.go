package domain

// Credentials is the in-flight material for one authentication attempt. It is
// never persisted; the raw secret is required for the directory bind.
type Credentials struct {
	Login  string
	Secret string
	// SecretDigest is an optional precomputed digest supplied by the host
	// login flow. The engine cannot bind with a digest; it is carried only so
	// the caller's contract is explicit.
	SecretDigest string
}

// ResolvedAttributes is the normalized output of mapping one directory entry.
// Empty string fields mean the attribute was absent (or blank after
// trimming) and must not be applied.
type ResolvedAttributes struct {
	Email     string
	Nickname  string
	FirstName string
	LastName  string
	// CustomFields maps field code → trimmed value.
	CustomFields map[string]string
	// Organizations lists organization names to resolve, in attribute order.
	Organizations []string
	// Photo holds raw image bytes from jpegPhoto, or nil.
	Photo []byte
}

// Result is the outcome of one authentication attempt.
type Result struct {
	// Accepted is the only signal that crosses back to the host login flow.
	Accepted bool
	// UserID is the reconciled local identity, set when Accepted.
	UserID string
	// Created reports whether this attempt created the local identity.
	Created bool
	// TargetIndex is the configured index of the winning target, -1 otherwise.
	TargetIndex int
}
