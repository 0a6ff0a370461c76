package repository

import (
	"context"
	"database/sql"

	"ldap-identity-bridge/internal/file/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a file repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the file. The file must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, f *domain.File) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO files (id, user_id, content_type, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		f.ID, f.UserID, f.ContentType, f.Content, f.CreatedAt)
	return err
}
