package repository

import (
	"context"
	"database/sql"

	"echo-memory/backend/internal/chat/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a chat message repository that uses the given
// db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends a message to the user's conversation.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Message) error {
	media := sql.NullString{String: m.MediaPath, Valid: m.MediaPath != ""}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO chat_messages (user_id, role, content, type, media_path, is_edited, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		m.UserID, m.Role, m.Content, m.Type, media, m.IsEdited, m.CreatedAt,
	).Scan(&m.ID)
}

// ListByUser returns the user's conversation in chronological order.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, role, content, type, media_path, is_edited, created_at
		 FROM chat_messages WHERE user_id = $1 ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Message
	for rows.Next() {
		var m domain.Message
		var media sql.NullString
		err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.Type,
			&media, &m.IsEdited, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		m.MediaPath = media.String
		out = append(out, &m)
	}
	return out, rows.Err()
}
