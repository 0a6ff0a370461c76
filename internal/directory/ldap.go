package directory

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// protocolVersion3 is the only version go-ldap speaks on the wire. Version 2
// targets are still configurable; they fail negotiation cleanly instead of
// producing a malformed bind.
const protocolVersion3 = 3

// LDAPDialer opens plain LDAP connections with go-ldap.
type LDAPDialer struct {
	// Timeout bounds the TCP dial. Zero means the net package default.
	Timeout time.Duration
}

// NewLDAPDialer returns a dialer with the given connect timeout.
func NewLDAPDialer(timeout time.Duration) *LDAPDialer {
	return &LDAPDialer{Timeout: timeout}
}

// Dial connects to host:port and returns the connection.
func (d *LDAPDialer) Dial(ctx context.Context, host string, port int) (Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	nd := &net.Dialer{Timeout: d.Timeout}
	conn, err := ldap.DialURL("ldap://"+addr, ldap.DialWithDialer(nd))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetTimeout(time.Until(deadline))
	}
	return &ldapConn{conn: conn, version: protocolVersion3}, nil
}

type ldapConn struct {
	conn    *ldap.Conn
	version int
}

func (c *ldapConn) ProtocolVersion() int { return c.version }

func (c *ldapConn) SetProtocolVersion(v int) error {
	if v != protocolVersion3 {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	c.version = v
	return nil
}

func (c *ldapConn) Bind(dn, secret string) error {
	return c.conn.Bind(dn, secret)
}

func (c *ldapConn) Search(baseDN, filter string, attrs []string) ([]Entry, error) {
	// go-ldap rejects filters without surrounding parentheses; configured
	// templates conventionally omit them ("uid=%s").
	if !strings.HasPrefix(filter, "(") {
		filter = "(" + filter + ")"
	}
	req := ldap.NewSearchRequest(
		baseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		filter,
		attrs,
		nil,
	)
	res, err := c.conn.Search(req)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(res.Entries))
	for _, e := range res.Entries {
		attrs := make(map[string][]string, len(e.Attributes))
		for _, a := range e.Attributes {
			attrs[a.Name] = a.Values
		}
		entries = append(entries, Entry{DN: e.DN, Attributes: attrs})
	}
	return entries, nil
}

func (c *ldapConn) Close() error {
	return c.conn.Close()
}

// EscapeFilter escapes a value for embedding in a search filter.
func EscapeFilter(value string) string {
	return ldap.EscapeFilter(value)
}
