package repository

import (
	"context"
	"database/sql"

	"echo-memory/backend/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit event repository that uses the given
// db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends the event. The event must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Event) error {
	details := sql.NullString{String: e.Details, Valid: e.Details != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, action, ip_address, user_agent, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Action, e.ActorAddr, e.UserAgent, details, e.CreatedAt)
	return err
}

// ListRecent returns the newest events first, at most limit of them.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int32) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, action, ip_address, user_agent, details, created_at
		 FROM audit_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Event
	for rows.Next() {
		var e domain.Event
		var details sql.NullString
		if err := rows.Scan(&e.ID, &e.Action, &e.ActorAddr, &e.UserAgent, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if details.Valid {
			e.Details = details.String
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// CountSecurityAlerts counts failed-login and bot-detection events.
func (r *PostgresRepository) CountSecurityAlerts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_logs WHERE action LIKE '%failed%' OR action LIKE '%bot_detected%'`,
	).Scan(&n)
	return n, err
}
