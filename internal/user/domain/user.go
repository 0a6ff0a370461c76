package domain

import (
	"errors"
	"time"
)

// User is the canonical local identity derived from a directory entry.
type User struct {
	ID        string
	Login     string // unique; never changed after creation
	Nickname  string
	FirstName string
	LastName  string
	Email     string
	Locale    string
	Status    UserStatus
	// PasswordHash holds the bcrypt hash of the generated opaque credential.
	// Directory-backed users never learn this secret; it exists so the local
	// row is never passwordless and never matches a stale local secret.
	PasswordHash string
	GroupID      string // primary group; assigned once at creation
	AvatarFileID string // optional; empty until a photo is attached
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserStatus string

const (
	UserStatusNew           UserStatus = "new"
	UserStatusAutoActivated UserStatus = "autoactivated"
	UserStatusClosed        UserStatus = "closed"
)

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Login == "" {
		return errors.New("login is required")
	}
	if u.Nickname == "" {
		u.Nickname = u.Login
	}
	if u.Status == "" {
		u.Status = UserStatusNew
	}
	return nil
}
