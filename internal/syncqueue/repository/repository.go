package repository

import (
	"context"
	"database/sql"
	"time"
)

// StatusPending marks items awaiting server-side processing.
const StatusPending = "pending"

// Repository is the persistence interface for the offline sync queue.
type Repository interface {
	// Enqueue stores one batch item for later processing.
	Enqueue(ctx context.Context, userID int64, deviceID, payloadType, payload string) error
}

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a sync queue repository that uses the given
// db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Enqueue(ctx context.Context, userID int64, deviceID, payloadType, payload string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sync_queue (user_id, device_id, payload_type, payload, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, deviceID, payloadType, payload, StatusPending, time.Now().UTC())
	return err
}
