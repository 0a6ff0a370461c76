package repository

import (
	"context"
	"database/sql"
	"errors"

	"ldap-identity-bridge/internal/organization/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an organization repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByName returns the organization with the given name, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.Org, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM organizations WHERE name = $1`, name)
	var o domain.Org
	if err := row.Scan(&o.ID, &o.Name, &o.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// Create persists the organization. The organization must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Org) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, created_at) VALUES ($1, $2, $3)`,
		o.ID, o.Name, o.CreatedAt)
	return err
}

// ListIDsByUser returns the IDs of the organizations the user belongs to.
func (r *PostgresRepository) ListIDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT org_id FROM user_organizations WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MergeUserOrganizations adds memberships, keeping existing ones.
func (r *PostgresRepository) MergeUserOrganizations(ctx context.Context, userID string, orgIDs []string) error {
	for _, oid := range orgIDs {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO user_organizations (user_id, org_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, org_id) DO NOTHING`, userID, oid)
		if err != nil {
			return err
		}
	}
	return nil
}
