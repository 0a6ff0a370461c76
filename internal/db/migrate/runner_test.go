package migrate

import (
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"

	"ldap-identity-bridge/internal/db"
)

func TestRun_EmptyDSN(t *testing.T) {
	if err := Run("", "up"); err == nil {
		t.Fatal("Run with empty DSN should return error")
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	testCases := []struct {
		name      string
		direction string
	}{
		{"empty", ""},
		{"invalid", "invalid"},
		{"upcase", "UP"},
		{"mixed", "Up"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Run("postgres://localhost/test", tc.direction); err == nil {
				t.Errorf("Run with direction %q should return error", tc.direction)
			}
		})
	}
}

func TestEmbeddedMigrationSource(t *testing.T) {
	src, err := iofs.New(db.MigrationFS, "migrations")
	if err != nil {
		t.Fatalf("iofs.New: %v", err)
	}
	defer src.Close()

	first, err := src.First()
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if first != 1 {
		t.Errorf("first migration version = %d, want 1", first)
	}
	// Every up migration must have a matching down migration.
	for v := first; ; {
		if r, id, err := src.ReadUp(v); err != nil {
			t.Errorf("ReadUp(%d): %v", v, err)
		} else {
			r.Close()
			if id == "" {
				t.Errorf("ReadUp(%d): empty identifier", v)
			}
		}
		if r, _, err := src.ReadDown(v); err != nil {
			t.Errorf("ReadDown(%d): %v", v, err)
		} else {
			r.Close()
		}
		next, err := src.Next(v)
		if err != nil {
			break
		}
		v = next
	}
}
