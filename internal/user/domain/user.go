package domain

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"time"
)

// User is the core account entity. ID is the internal database key and is
// never exposed on the wire; UID is the 32 character hex identifier clients
// see in tokens and responses.
type User struct {
	ID           int64
	UID          string
	Email        string
	PasswordHash string
	FullName     string
	LanguageCode string
	UISettings   string // JSON blob of accessibility preferences, may be empty
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUID returns a fresh wire-visible identifier: 32 hex characters from 16
// random bytes.
func NewUID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
