package repository

import (
	"context"

	"echo-memory/backend/internal/audit/domain"
)

// Repository defines persistence for audit events.
type Repository interface {
	Create(ctx context.Context, e *domain.Event) error
	// ListRecent returns the newest events first, at most limit of them.
	ListRecent(ctx context.Context, limit int32) ([]*domain.Event, error)
	// CountSecurityAlerts counts events whose action marks a security
	// concern (failed logins, bot detections).
	CountSecurityAlerts(ctx context.Context) (int64, error)
}
