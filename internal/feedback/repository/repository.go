package repository

import (
	"context"
	"database/sql"
	"time"
)

// Repository is the persistence interface for user feedback.
type Repository interface {
	Create(ctx context.Context, userID int64, rating int, comment string) error
}

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a feedback repository that uses the given db
// for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64, rating int, comment string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback (user_id, rating, comment, created_at) VALUES ($1, $2, $3, $4)`,
		userID, rating, comment, time.Now().UTC())
	return err
}
