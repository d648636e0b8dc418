package domain

import "testing"

func TestConfidenceLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{1.0, "High"},
		{0.8, "High"},
		{0.79, "Medium"},
		{0.6, "Medium"},
		{0.59, "Low/In review"},
		{0, "Low/In review"},
	}
	for _, tt := range tests {
		if got := ConfidenceLabel(tt.score); got != tt.want {
			t.Errorf("ConfidenceLabel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestSourceTypeValid(t *testing.T) {
	for _, s := range []SourceType{SourceVoice, SourceText, SourceManual} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if SourceType("telepathy").Valid() {
		t.Error("unknown source type should be invalid")
	}
}
