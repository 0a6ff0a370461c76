package repository

import (
	"context"

	"ldap-identity-bridge/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// Update rewrites every mutable column. Login is immutable and is not
	// part of the update statement.
	Update(ctx context.Context, u *domain.User) error
}
