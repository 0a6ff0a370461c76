package service

import (
	"iter"

	"ldap-identity-bridge/internal/ldapauth/domain"
)

// enabledTargets yields the configured targets in order, with their original
// index, skipping disabled entries. The sequence is finite, restartable, and
// has no side effects.
func enabledTargets(targets []domain.Target) iter.Seq2[int, domain.Target] {
	return func(yield func(int, domain.Target) bool) {
		for i, t := range targets {
			if t.Disabled {
				continue
			}
			if !yield(i, t) {
				return
			}
		}
	}
}
