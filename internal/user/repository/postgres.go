package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"echo-memory/backend/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for
// persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, uid, email, password_hash, full_name, language_code,
	ui_settings, is_active, last_login, created_at, updated_at`

// GetByUID returns the user for uid, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE uid = $1`, uid)
	return scanUser(row)
}

// GetByEmail returns the user with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// EmailTakenByOther reports whether email belongs to a user other than uid.
func (r *PostgresRepository) EmailTakenByOther(ctx context.Context, email, uid string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = $1 AND uid != $2`, email, uid).Scan(&n)
	return n > 0, err
}

// Create persists the user and fills in its database ID.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO users (uid, email, password_hash, full_name, language_code, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		u.UID, u.Email, u.PasswordHash, u.FullName, u.LanguageCode, u.IsActive,
		u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
}

// UpdateProfile sets full name and email for the user identified by uid.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, uid, fullName, email string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET full_name = $1, email = $2, updated_at = NOW() WHERE uid = $3`,
		fullName, email, uid)
	return err
}

// UpdateSettings replaces the user's UI settings JSON.
func (r *PostgresRepository) UpdateSettings(ctx context.Context, uid, settings string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET ui_settings = $1, updated_at = NOW() WHERE uid = $2`,
		settings, uid)
	return err
}

// UpdateLastLogin stamps the user's last successful login.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	return err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var settings sql.NullString
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.UID, &u.Email, &u.PasswordHash, &u.FullName,
		&u.LanguageCode, &settings, &u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if settings.Valid {
		u.UISettings = settings.String
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}
