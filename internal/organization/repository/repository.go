package repository

import (
	"context"

	"ldap-identity-bridge/internal/organization/domain"
)

// Repository defines persistence for organizations and user memberships.
type Repository interface {
	GetByName(ctx context.Context, name string) (*domain.Org, error)
	Create(ctx context.Context, o *domain.Org) error
	// ListIDsByUser returns the IDs of the organizations the user belongs to.
	ListIDsByUser(ctx context.Context, userID string) ([]string, error)
	// MergeUserOrganizations adds the given organizations to the user's
	// memberships. Existing memberships are never dropped, only extended.
	MergeUserOrganizations(ctx context.Context, userID string, orgIDs []string) error
}
