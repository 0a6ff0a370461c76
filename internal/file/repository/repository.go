package repository

import (
	"context"

	"ldap-identity-bridge/internal/file/domain"
)

// Repository defines persistence for image assets.
type Repository interface {
	Create(ctx context.Context, f *domain.File) error
}
