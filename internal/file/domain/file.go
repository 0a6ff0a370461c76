package domain

import (
	"errors"
	"time"
)

// File is a stored image asset attached to a user (currently only directory
// photos used as avatars).
type File struct {
	ID          string
	UserID      string
	ContentType string
	Content     []byte
	CreatedAt   time.Time
}

// Validate validates the file for persistence.
func (f *File) Validate() error {
	if f.UserID == "" {
		return errors.New("user id is required")
	}
	if len(f.Content) == 0 {
		return errors.New("content is required")
	}
	return nil
}
