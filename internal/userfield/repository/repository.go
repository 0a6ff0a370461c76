package repository

import (
	"context"

	"ldap-identity-bridge/internal/userfield/domain"
)

// Repository defines persistence for custom field groups, definitions, and values.
type Repository interface {
	GetGroupByName(ctx context.Context, name string) (*domain.FieldGroup, error)
	CreateGroup(ctx context.Context, g *domain.FieldGroup) error
	GetDefinitionByCode(ctx context.Context, code string) (*domain.FieldDefinition, error)
	CreateDefinition(ctx context.Context, d *domain.FieldDefinition) error
	// SetUserValue upserts the user's value for the given field definition.
	SetUserValue(ctx context.Context, userID, fieldID, value string) error
}
