package repository

import (
	"context"
	"database/sql"
	"errors"

	"ldap-identity-bridge/internal/userfield/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a custom-field repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetGroupByName returns the field group with the given name, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetGroupByName(ctx context.Context, name string) (*domain.FieldGroup, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM userfield_groups WHERE name = $1`, name)
	var g domain.FieldGroup
	if err := row.Scan(&g.ID, &g.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// CreateGroup persists the field group. The group must have ID set.
func (r *PostgresRepository) CreateGroup(ctx context.Context, g *domain.FieldGroup) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO userfield_groups (id, name) VALUES ($1, $2)`, g.ID, g.Name)
	return err
}

// GetDefinitionByCode returns the field definition with the given code, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetDefinitionByCode(ctx context.Context, code string) (*domain.FieldDefinition, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, code, name, group_id FROM userfield_definitions WHERE code = $1`, code)
	var d domain.FieldDefinition
	if err := row.Scan(&d.ID, &d.Code, &d.Name, &d.GroupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// CreateDefinition persists the field definition. The definition must have ID set.
func (r *PostgresRepository) CreateDefinition(ctx context.Context, d *domain.FieldDefinition) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO userfield_definitions (id, code, name, group_id) VALUES ($1, $2, $3, $4)`,
		d.ID, d.Code, d.Name, d.GroupID)
	return err
}

// SetUserValue upserts the user's value for the given field definition.
func (r *PostgresRepository) SetUserValue(ctx context.Context, userID, fieldID, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_field_values (user_id, field_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, field_id) DO UPDATE SET value = EXCLUDED.value`,
		userID, fieldID, value)
	return err
}
