package domain

import "time"

// Memory is a journaled recollection. UID is the wire identifier; UserID is
// the internal owner key and never leaves the server.
type Memory struct {
	ID              int64
	UID             string
	UserID          int64
	LanguageCode    string
	SourceType      SourceType
	NarrativeText   string
	AudioPath       string
	MediaPath       string
	MemoryDate      string // YYYY-MM-DD
	ConfidenceScore float64
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// OwnerName is populated by list queries that join the owner.
	OwnerName string
}

type SourceType string

const (
	SourceVoice  SourceType = "voice"
	SourceText   SourceType = "text"
	SourceManual SourceType = "manual"
)

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool {
	switch s {
	case SourceVoice, SourceText, SourceManual:
		return true
	}
	return false
}

// Entity is a person, place, or emotion extracted from a memory.
type Entity struct {
	ID        int64
	MemoryID  int64
	Type      string
	Name      string
	Relevance float64
}

// Confidence label thresholds used on every client surface.
const (
	confidenceHigh   = 0.8
	confidenceMedium = 0.6
)

// ConfidenceLabel maps a confidence score to the indicator shown to users.
func ConfidenceLabel(score float64) string {
	switch {
	case score >= confidenceHigh:
		return "High"
	case score >= confidenceMedium:
		return "Medium"
	default:
		return "Low/In review"
	}
}
