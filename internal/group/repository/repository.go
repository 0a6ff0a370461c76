package repository

import (
	"context"

	"ldap-identity-bridge/internal/group/domain"
)

// Repository defines persistence for groups and secondary memberships.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Group, error)
	GetByName(ctx context.Context, name string) (*domain.Group, error)
	Create(ctx context.Context, g *domain.Group) error
	// ListSecondaryGroupIDs returns the IDs of the user's secondary groups.
	ListSecondaryGroupIDs(ctx context.Context, userID string) ([]string, error)
	// MergeSecondaryGroups adds the given groups to the user's secondary
	// memberships. Existing memberships are kept; duplicates are ignored.
	MergeSecondaryGroups(ctx context.Context, userID string, groupIDs []string) error
}
