package domain

import (
	"errors"
	"fmt"
	"strings"
)

// MaxTargets bounds the configured target list.
const MaxTargets = 10

// DefaultPort is the standard LDAP port, used when a target omits one.
const DefaultPort = 389

// loginPlaceholder is substituted with the login in RDN and filter templates.
const loginPlaceholder = "%s"

// VersionPolicy selects how the bind negotiator picks protocol versions.
type VersionPolicy int

const (
	// VersionAuto tries the connection's current version first, then 3, then 2.
	VersionAuto VersionPolicy = iota
	// VersionFixed tries exactly Target.Version.
	VersionFixed
)

// Target is one configured directory server plus its binding and search
// rules. Targets are immutable during an authentication attempt.
type Target struct {
	Disabled bool
	Host     string
	Port     int

	VersionPolicy VersionPolicy
	Version       int // used when VersionPolicy is VersionFixed; 2 or 3

	// BindRDNTemplate derives the bind DN from the login,
	// e.g. "uid=%s,ou=people,dc=example,dc=com".
	BindRDNTemplate string
	// SearchBaseDN is where the post-bind attribute search starts.
	SearchBaseDN string
	// SearchFilterTemplate derives the search filter from the login,
	// e.g. "uid=%s".
	SearchFilterTemplate string

	// GroupAssignmentAttribute names the entry attribute whose value picks the
	// primary group on the create path. Empty disables attribute-based
	// assignment.
	GroupAssignmentAttribute string
	// GroupTemplateID is the group cloned when the named group does not exist.
	// Empty means never create groups.
	GroupTemplateID string

	// SecondaryGroupBaseDN/SecondaryGroupFilterTemplate configure the
	// best-effort secondary-group search. Both empty disables it.
	SecondaryGroupBaseDN         string
	SecondaryGroupFilterTemplate string
}

// Validate reports the first configuration problem with the target.
func (t *Target) Validate() error {
	if t.Host == "" {
		return errors.New("host is required")
	}
	if t.Port < 0 || t.Port > 65535 {
		return fmt.Errorf("port %d out of range", t.Port)
	}
	if !strings.Contains(t.BindRDNTemplate, loginPlaceholder) {
		return fmt.Errorf("bind RDN template %q has no %s placeholder", t.BindRDNTemplate, loginPlaceholder)
	}
	if !strings.Contains(t.SearchFilterTemplate, loginPlaceholder) {
		return fmt.Errorf("search filter template %q has no %s placeholder", t.SearchFilterTemplate, loginPlaceholder)
	}
	if t.VersionPolicy == VersionFixed && t.Version != 2 && t.Version != 3 {
		return fmt.Errorf("fixed protocol version %d, want 2 or 3", t.Version)
	}
	return nil
}

// EffectivePort returns the configured port or DefaultPort.
func (t *Target) EffectivePort() int {
	if t.Port == 0 {
		return DefaultPort
	}
	return t.Port
}

// SubstituteLogin fills the login placeholder in a template. The caller is
// responsible for escaping login where the template feeds a search filter.
func SubstituteLogin(template, login string) string {
	return strings.ReplaceAll(template, loginPlaceholder, login)
}
