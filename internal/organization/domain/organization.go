package domain

import (
	"errors"
	"time"
)

// Org is an organization a user can be a member of. Organizations are created
// on demand from directory attributes and identified by exact name.
type Org struct {
	ID        string
	Name      string // unique
	CreatedAt time.Time
}

// Validate validates the organization for persistence. Returns an error describing the first validation failure.
func (o *Org) Validate() error {
	if o.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
