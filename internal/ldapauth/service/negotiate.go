package service

import (
	"errors"
	"log/slog"

	"ldap-identity-bridge/internal/directory"
	"ldap-identity-bridge/internal/ldapauth/domain"
)

// errBindFailed means no candidate protocol version produced a successful bind.
var errBindFailed = errors.New("bind rejected on every candidate protocol version")

// candidateVersions computes the protocol versions to try, in order.
// Fixed policy tries exactly the configured version. Auto tries the
// connection's current version first (skipping a renegotiation round-trip in
// the common case), then 3, then 2, duplicates removed preserving first
// occurrence.
func candidateVersions(policy domain.VersionPolicy, fixed, initial int) []int {
	if policy == domain.VersionFixed {
		return []int{fixed}
	}
	candidates := make([]int, 0, 3)
	seen := make(map[int]bool, 3)
	for _, v := range []int{initial, 3, 2} {
		if v == 0 || seen[v] {
			continue
		}
		seen[v] = true
		candidates = append(candidates, v)
	}
	return candidates
}

// negotiateBind tries candidate protocol versions until one allows a
// successful bind with the target's RDN and the raw secret. On success the
// negotiated version is left on the connection so the target's searches reuse
// it; the caller restores the initial version when done with the connection.
// On failure the initial version is restored here so the connection carries
// no observable side effect.
func negotiateBind(conn directory.Conn, tgt domain.Target, login, secret string, log *slog.Logger) (int, error) {
	initial := conn.ProtocolVersion()
	rdn := domain.SubstituteLogin(tgt.BindRDNTemplate, login)
	log.Debug("binding", "rdn", rdn)
	for _, v := range candidateVersions(tgt.VersionPolicy, tgt.Version, initial) {
		if err := conn.SetProtocolVersion(v); err != nil {
			log.Debug("protocol version unavailable", "version", v, "error", err)
			continue
		}
		if err := conn.Bind(rdn, secret); err != nil {
			log.Debug("bind rejected", "version", v, "error", err)
			continue
		}
		return v, nil
	}
	if err := conn.SetProtocolVersion(initial); err != nil {
		log.Debug("restoring protocol version failed", "version", initial, "error", err)
	}
	return 0, errBindFailed
}
