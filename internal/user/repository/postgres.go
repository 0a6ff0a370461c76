package repository

import (
	"context"
	"database/sql"
	"errors"

	"ldap-identity-bridge/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, login, nickname, first_name, last_name, email, locale, status, password_hash, group_id, avatar_file_id, created_at, updated_at`

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByLogin returns the user with the given login, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE login = $1`, login)
	return scanUser(row)
}

// Create persists the user. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, login, nickname, first_name, last_name, email, locale, status, password_hash, group_id, avatar_file_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		u.ID, u.Login, u.Nickname, nullString(u.FirstName), nullString(u.LastName),
		nullString(u.Email), nullString(u.Locale), string(u.Status), u.PasswordHash,
		nullString(u.GroupID), nullString(u.AvatarFileID), u.CreatedAt, u.UpdatedAt)
	return err
}

// Update rewrites the mutable columns of the existing user row. Login and
// group_id are not touched; the primary group is fixed at creation.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET nickname = $2, first_name = $3, last_name = $4, email = $5, locale = $6,
		    status = $7, password_hash = $8, avatar_file_id = $9, updated_at = $10
		WHERE id = $1`,
		u.ID, u.Nickname, nullString(u.FirstName), nullString(u.LastName),
		nullString(u.Email), nullString(u.Locale), string(u.Status), u.PasswordHash,
		nullString(u.AvatarFileID), u.UpdatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var first, last, email, locale, group, avatar sql.NullString
	var status string
	err := row.Scan(&u.ID, &u.Login, &u.Nickname, &first, &last, &email, &locale,
		&status, &u.PasswordHash, &group, &avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.FirstName = first.String
	u.LastName = last.String
	u.Email = email.String
	u.Locale = locale.String
	u.Status = domain.UserStatus(status)
	u.GroupID = group.String
	u.AvatarFileID = avatar.String
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
