package repository

import (
	"context"
	"time"

	"echo-memory/backend/internal/user/domain"
)

// Repository is the persistence interface for users.
type Repository interface {
	// GetByUID returns the user for uid, or nil if not found.
	GetByUID(ctx context.Context, uid string) (*domain.User, error)
	// GetByEmail returns the user with the given email, or nil if not found.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// EmailTakenByOther reports whether email belongs to a user other than uid.
	EmailTakenByOther(ctx context.Context, email, uid string) (bool, error)
	// Create persists the user and fills in its database ID.
	Create(ctx context.Context, u *domain.User) error
	// UpdateProfile sets full name and email for the user identified by uid.
	UpdateProfile(ctx context.Context, uid, fullName, email string) error
	// UpdateSettings replaces the user's UI settings JSON.
	UpdateSettings(ctx context.Context, uid, settings string) error
	// UpdateLastLogin stamps the user's last successful login.
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}
