package domain

import "time"

// Event is one append-only audit log entry. Events are never updated or
// deleted by the backend.
type Event struct {
	ID        string
	Action    string
	ActorAddr string
	UserAgent string
	// Details is a JSON object with action-specific context.
	Details   string
	CreatedAt time.Time
}
