package repository

import (
	"context"
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a rate-limit repository that uses the given db
// for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// upsertHit is a single conditional upsert so the window check, reset,
// increment, and limit decision commit atomically; there is no separate
// read-then-write pair to race through. Every SET expression reads the row as
// it was before this statement. At the limit the hit count is left untouched
// and only last_hit advances.
const upsertHit = `
INSERT INTO rate_limits (ip_address, endpoint, hits, window_start, last_hit, limited)
VALUES ($1, $2, 1, $3, $3, FALSE)
ON CONFLICT (ip_address, endpoint) DO UPDATE SET
    limited      = rate_limits.window_start + $4 > EXCLUDED.last_hit
                   AND rate_limits.hits >= $5,
    hits         = CASE
                       WHEN rate_limits.window_start + $4 <= EXCLUDED.last_hit THEN 1
                       WHEN rate_limits.hits >= $5 THEN rate_limits.hits
                       ELSE rate_limits.hits + 1
                   END,
    window_start = CASE
                       WHEN rate_limits.window_start + $4 <= EXCLUDED.last_hit THEN EXCLUDED.last_hit
                       ELSE rate_limits.window_start
                   END,
    last_hit     = EXCLUDED.last_hit
RETURNING limited`

// Upsert records a hit for (clientAddr, endpoint) at now and returns whether
// the request exceeded maxRequests within the current window.
func (r *PostgresRepository) Upsert(ctx context.Context, clientAddr, endpoint string, now, windowSeconds int64, maxRequests int) (bool, error) {
	var limited bool
	err := r.db.QueryRowContext(ctx, upsertHit, clientAddr, endpoint, now, windowSeconds, maxRequests).Scan(&limited)
	if err != nil {
		return false, err
	}
	return limited, nil
}

// DeleteExpired removes rows whose last_hit is strictly before cutoff.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rate_limits WHERE last_hit < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
