package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"echo-memory/backend/internal/admin/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an admin repository that uses the given db
// for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByUsername returns the admin for username, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	var a domain.Admin
	var lastLogin sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, last_login, created_at
		 FROM admins WHERE username = $1`, username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &lastLogin, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLogin = &t
	}
	return &a, nil
}

// Create persists the admin and fills in its database ID.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Admin) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO admins (username, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		a.Username, a.PasswordHash, a.Role, a.CreatedAt,
	).Scan(&a.ID)
}

// UpdateLastLogin stamps the admin's last successful login.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE admins SET last_login = $1 WHERE id = $2`, at, id)
	return err
}

type PostgresStatsRepository struct {
	db *sql.DB
}

// NewPostgresStatsRepository returns dashboard aggregates backed by db.
func NewPostgresStatsRepository(db *sql.DB) *PostgresStatsRepository {
	return &PostgresStatsRepository{db: db}
}

func (r *PostgresStatsRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *PostgresStatsRepository) CountProcessedMemories(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE narrative_text IS NOT NULL`).Scan(&n)
	return n, err
}

func (r *PostgresStatsRepository) AvgConfidence(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(confidence_score) FROM memories WHERE narrative_text IS NOT NULL`).Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}
