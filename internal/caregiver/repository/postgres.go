package repository

import (
	"context"
	"database/sql"

	"echo-memory/backend/internal/caregiver/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a caregiver repository that uses the given db
// for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// RequestAccess records a read-only access request from caregiver to patient.
func (r *PostgresRepository) RequestAccess(ctx context.Context, caregiverID, patientID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO caregivers (user_id, patient_id, access_level)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, patient_id) DO UPDATE SET updated_at = NOW()`,
		caregiverID, patientID, domain.AccessLevelReadOnly)
	return err
}

// ListPatients returns the patients the user cares for.
func (r *PostgresRepository) ListPatients(ctx context.Context, caregiverID int64) ([]*domain.Connection, error) {
	return r.listConnections(ctx,
		`SELECT u.full_name, u.email, c.access_level, c.is_verified
		 FROM caregivers c JOIN users u ON c.patient_id = u.id
		 WHERE c.user_id = $1`, caregiverID)
}

// ListCaregivers returns the caregivers linked to the patient.
func (r *PostgresRepository) ListCaregivers(ctx context.Context, patientID int64) ([]*domain.Connection, error) {
	return r.listConnections(ctx,
		`SELECT u.full_name, u.email, c.access_level, c.is_verified
		 FROM caregivers c JOIN users u ON c.user_id = u.id
		 WHERE c.patient_id = $1`, patientID)
}

func (r *PostgresRepository) listConnections(ctx context.Context, query string, id int64) ([]*domain.Connection, error) {
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Connection
	for rows.Next() {
		var conn domain.Connection
		if err := rows.Scan(&conn.FullName, &conn.Email, &conn.AccessLevel, &conn.IsVerified); err != nil {
			return nil, err
		}
		out = append(out, &conn)
	}
	return out, rows.Err()
}
