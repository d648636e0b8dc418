package repository

import (
	"context"
	"database/sql"
	"time"

	"echo-memory/backend/internal/memory/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a memory repository that uses the given db
// for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the memory and its entities in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Memory, entities []domain.Entity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	narrative := sql.NullString{String: m.NarrativeText, Valid: m.NarrativeText != ""}
	audio := sql.NullString{String: m.AudioPath, Valid: m.AudioPath != ""}
	media := sql.NullString{String: m.MediaPath, Valid: m.MediaPath != ""}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO memories (uid, user_id, language_code, source_type, narrative_text,
		                       audio_path, media_path, memory_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 RETURNING id`,
		m.UID, m.UserID, m.LanguageCode, string(m.SourceType), narrative,
		audio, media, m.MemoryDate, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return err
	}

	for _, e := range entities {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO memory_entities (memory_id, entity_type, entity_name, relevance_score)
			 VALUES ($1, $2, $3, $4)`,
			m.ID, e.Type, e.Name, e.Relevance)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListByOwnerUID returns the owner's memories, newest memory date first.
func (r *PostgresRepository) ListByOwnerUID(ctx context.Context, ownerUID string) ([]*domain.Memory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.uid, m.language_code, m.source_type, m.narrative_text,
		        m.audio_path, m.media_path, m.memory_date, m.confidence_score,
		        m.created_at, m.updated_at, u.full_name
		 FROM memories m
		 JOIN users u ON m.user_id = u.id
		 WHERE u.uid = $1
		 ORDER BY m.memory_date DESC, m.id DESC`, ownerUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Memory
	for rows.Next() {
		var m domain.Memory
		var narrative, audio, media sql.NullString
		var source string
		var memoryDate time.Time
		err := rows.Scan(&m.ID, &m.UID, &m.LanguageCode, &source, &narrative,
			&audio, &media, &memoryDate, &m.ConfidenceScore,
			&m.CreatedAt, &m.UpdatedAt, &m.OwnerName)
		if err != nil {
			return nil, err
		}
		m.SourceType = domain.SourceType(source)
		m.MemoryDate = memoryDate.Format("2006-01-02")
		m.NarrativeText = narrative.String
		m.AudioPath = audio.String
		m.MediaPath = media.String
		out = append(out, &m)
	}
	return out, rows.Err()
}

// RecentNarratives returns up to limit narrative texts for the user, newest
// first.
func (r *PostgresRepository) RecentNarratives(ctx context.Context, userID int64, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT narrative_text FROM memories
		 WHERE user_id = $1 AND narrative_text IS NOT NULL
		 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
