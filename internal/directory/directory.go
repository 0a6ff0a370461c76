// Package directory abstracts the LDAP wire protocol behind a small client
// interface so the reconciliation engine can be exercised without a server.
package directory

import (
	"context"
	"errors"
	"strings"
)

// ErrUnsupportedVersion is returned by SetProtocolVersion for protocol
// versions the underlying client cannot speak.
var ErrUnsupportedVersion = errors.New("directory: unsupported protocol version")

// Entry is one directory record: an attribute-name → values mapping.
// Attribute names are matched case-insensitively, as the protocol defines.
type Entry struct {
	DN         string
	Attributes map[string][]string
}

// Values returns all values of the named attribute, or nil if absent.
func (e Entry) Values(name string) []string {
	if v, ok := e.Attributes[name]; ok {
		return v
	}
	for k, v := range e.Attributes {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

// First returns the first value of the named attribute, or "" if absent.
func (e Entry) First(name string) string {
	if v := e.Values(name); len(v) > 0 {
		return v[0]
	}
	return ""
}

// Conn is one open connection to a directory server.
type Conn interface {
	// ProtocolVersion reports the protocol version the connection currently
	// uses for binds.
	ProtocolVersion() int
	// SetProtocolVersion selects the protocol version for subsequent binds.
	// Returns ErrUnsupportedVersion if the client cannot speak it.
	SetProtocolVersion(v int) error
	// Bind authenticates the connection as dn with the given secret.
	Bind(dn, secret string) error
	// Search runs a whole-subtree search under baseDN. attrs nil requests all
	// attributes.
	Search(baseDN, filter string, attrs []string) ([]Entry, error)
	Close() error
}

// Dialer opens connections to directory servers.
type Dialer interface {
	Dial(ctx context.Context, host string, port int) (Conn, error)
}
