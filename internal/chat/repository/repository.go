package repository

import (
	"context"

	"echo-memory/backend/internal/chat/domain"
)

// Repository is the persistence interface for chat messages.
type Repository interface {
	// Create appends a message to the user's conversation.
	Create(ctx context.Context, m *domain.Message) error
	// ListByUser returns the user's conversation in chronological order.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Message, error)
}
