package service

import (
	"errors"
	"log/slog"
	"slices"
	"testing"

	"ldap-identity-bridge/internal/ldapauth/domain"
)

func TestCandidateVersions(t *testing.T) {
	tests := []struct {
		name    string
		policy  domain.VersionPolicy
		fixed   int
		initial int
		want    []int
	}{
		{"auto from v3", domain.VersionAuto, 0, 3, []int{3, 2}},
		{"auto from v2 prefers current", domain.VersionAuto, 0, 2, []int{2, 3}},
		{"auto without initial", domain.VersionAuto, 0, 0, []int{3, 2}},
		{"fixed v2", domain.VersionFixed, 2, 3, []int{2}},
		{"fixed v3", domain.VersionFixed, 3, 3, []int{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := candidateVersions(tt.policy, tt.fixed, tt.initial)
			if !slices.Equal(got, tt.want) {
				t.Errorf("candidateVersions: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNegotiateBind_FirstSuccessWins(t *testing.T) {
	conn := &fakeConn{
		version:      3,
		bindDN:       "uid=jdoe,ou=people,dc=example,dc=com",
		bindSecret:   "hunter2",
		bindVersions: map[int]bool{2: true},
	}
	tgt := testTarget()

	version, err := negotiateBind(conn, tgt, "jdoe", "hunter2", slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("negotiateBind: %v", err)
	}
	if version != 2 {
		t.Errorf("negotiated version: got %d, want 2", version)
	}
	if conn.version != 2 {
		t.Errorf("connection version after success: got %d, want 2 kept for searches", conn.version)
	}
	if !slices.Equal(conn.bindAttempts, []int{3, 2}) {
		t.Errorf("bind attempts: got %v, want [3 2]", conn.bindAttempts)
	}
}

func TestNegotiateBind_UnsupportedVersionSkipped(t *testing.T) {
	conn := &fakeConn{
		version:     3,
		bindDN:      "uid=jdoe,ou=people,dc=example,dc=com",
		bindSecret:  "wrong", // bind never succeeds
		unsupported: map[int]bool{2: true},
	}

	_, err := negotiateBind(conn, testTarget(), "jdoe", "hunter2", slog.New(slog.DiscardHandler))
	if !errors.Is(err, errBindFailed) {
		t.Fatalf("negotiateBind: got %v, want errBindFailed", err)
	}
	if !slices.Equal(conn.bindAttempts, []int{3}) {
		t.Errorf("bind attempts: got %v, want only [3]", conn.bindAttempts)
	}
	if conn.version != 3 {
		t.Errorf("version after failure: got %d, want initial restored", conn.version)
	}
}

func TestNegotiateBind_AllCandidatesFail(t *testing.T) {
	conn := &fakeConn{
		version:    2,
		bindDN:     "uid=jdoe,ou=people,dc=example,dc=com",
		bindSecret: "wrong",
	}

	_, err := negotiateBind(conn, testTarget(), "jdoe", "hunter2", slog.New(slog.DiscardHandler))
	if !errors.Is(err, errBindFailed) {
		t.Fatalf("negotiateBind: got %v, want errBindFailed", err)
	}
	if !slices.Equal(conn.bindAttempts, []int{2, 3}) {
		t.Errorf("bind attempts: got %v, want [2 3]", conn.bindAttempts)
	}
	if conn.version != 2 {
		t.Errorf("version after failure: got %d, want initial 2 restored", conn.version)
	}
}

func TestNegotiateBind_FixedVersion(t *testing.T) {
	conn := &fakeConn{
		version:    3,
		bindDN:     "uid=jdoe,ou=people,dc=example,dc=com",
		bindSecret: "hunter2",
	}
	tgt := testTarget()
	tgt.VersionPolicy = domain.VersionFixed
	tgt.Version = 3

	version, err := negotiateBind(conn, tgt, "jdoe", "hunter2", slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("negotiateBind: %v", err)
	}
	if version != 3 {
		t.Errorf("negotiated version: got %d, want 3", version)
	}
	if !slices.Equal(conn.bindAttempts, []int{3}) {
		t.Errorf("bind attempts: got %v, want exactly [3]", conn.bindAttempts)
	}
}
