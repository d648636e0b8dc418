package repository

import (
	"context"
	"time"

	"echo-memory/backend/internal/admin/domain"
)

// Repository is the persistence interface for admin accounts.
type Repository interface {
	// GetByUsername returns the admin for username, or nil if not found.
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	// Create persists the admin and fills in its database ID.
	Create(ctx context.Context, a *domain.Admin) error
	// UpdateLastLogin stamps the admin's last successful login.
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// StatsRepository aggregates the numbers shown on the admin dashboard.
type StatsRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	// CountProcessedMemories counts memories that already carry a narrative.
	CountProcessedMemories(ctx context.Context) (int64, error)
	// AvgConfidence averages the confidence score over processed memories.
	// Returns 0 when there are none.
	AvgConfidence(ctx context.Context) (float64, error)
}
