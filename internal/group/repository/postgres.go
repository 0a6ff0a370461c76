package repository

import (
	"context"
	"database/sql"
	"errors"

	"ldap-identity-bridge/internal/group/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a group repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const groupColumns = `id, name, level, template_id, created_at`

// GetByID returns the group for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id)
	return scanGroup(row)
}

// GetByName returns the group with the given name, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE name = $1`, name)
	return scanGroup(row)
}

// Create persists the group. The group must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, g *domain.Group) error {
	var template sql.NullString
	if g.TemplateID != "" {
		template = sql.NullString{String: g.TemplateID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO groups (id, name, level, template_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		g.ID, g.Name, g.Level, template, g.CreatedAt)
	return err
}

// ListSecondaryGroupIDs returns the IDs of the user's secondary groups.
func (r *PostgresRepository) ListSecondaryGroupIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT group_id FROM user_secondary_groups WHERE user_id = $1`, userID)
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

// MergeSecondaryGroups adds memberships, keeping existing ones.
func (r *PostgresRepository) MergeSecondaryGroups(ctx context.Context, userID string, groupIDs []string) error {
	for _, gid := range groupIDs {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO user_secondary_groups (user_id, group_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, group_id) DO NOTHING`, userID, gid)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanGroup(row *sql.Row) (*domain.Group, error) {
	var g domain.Group
	var template sql.NullString
	err := row.Scan(&g.ID, &g.Name, &g.Level, &template, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	g.TemplateID = template.String
	return &g, nil
}
