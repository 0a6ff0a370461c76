package domain

import (
	"errors"
	"time"
)

// Group is a local user group. A user has exactly one primary group and may
// additionally belong to any number of secondary groups.
type Group struct {
	ID   string
	Name string // unique
	// Level orders groups by privilege; copied when a group is cloned from a
	// template.
	Level int
	// TemplateID records which group this one was cloned from, if any.
	TemplateID string
	CreatedAt  time.Time
}

// Validate validates the group for persistence. Returns an error describing the first validation failure.
func (g *Group) Validate() error {
	if g.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// CloneNamed returns a copy of g usable as a new group with the given name.
// The copy keeps every setting of the template, drops its identity, and
// records g as the template it came from. The caller assigns the new ID.
func (g *Group) CloneNamed(name string) *Group {
	clone := *g
	clone.ID = ""
	clone.Name = name
	clone.TemplateID = g.ID
	clone.CreatedAt = time.Time{}
	return &clone
}
