package repository

import (
	"context"

	"echo-memory/backend/internal/memory/domain"
)

// Repository is the persistence interface for memories.
type Repository interface {
	// Create persists the memory and its entities in one transaction and
	// fills in the memory's database ID.
	Create(ctx context.Context, m *domain.Memory, entities []domain.Entity) error
	// ListByOwnerUID returns the owner's memories, newest memory date first.
	ListByOwnerUID(ctx context.Context, ownerUID string) ([]*domain.Memory, error)
	// RecentNarratives returns up to limit narrative texts for the user,
	// newest first. Memories without a narrative are skipped.
	RecentNarratives(ctx context.Context, userID int64, limit int) ([]string, error)
}
