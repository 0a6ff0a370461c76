package domain

import "errors"

// FieldGroup is a named group of custom field definitions (e.g. "Phone").
type FieldGroup struct {
	ID   string
	Name string // unique
}

// FieldDefinition describes one custom profile field. Definitions are created
// on demand the first time a directory attribute that maps to them is seen.
type FieldDefinition struct {
	ID      string
	Code    string // unique, stable key (e.g. "officephone")
	Name    string // display name (e.g. "Office phone")
	GroupID string // owning field group
}

// Validate validates the definition for persistence.
func (d *FieldDefinition) Validate() error {
	if d.Code == "" {
		return errors.New("code is required")
	}
	if d.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
