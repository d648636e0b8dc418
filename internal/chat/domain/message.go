package domain

import "time"

// Message is one turn of the assistant conversation.
type Message struct {
	ID        int64
	UserID    int64
	Role      string // "user" or "assistant"
	Content   string
	Type      string // "text", "audio", "image"
	MediaPath string
	IsEdited  bool
	CreatedAt time.Time
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	TypeText = "text"
)
