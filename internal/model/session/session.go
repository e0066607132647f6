package session

import (
	"time"

	"github.com/gemsales/voice-trainer/backend/internal/model/grading"
	"github.com/gemsales/voice-trainer/backend/internal/model/transcript"
)

// Status tracks where a session is in its lifecycle.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Session captures one practice call. It is held in memory only.
type Session struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`

	// Set once, at grading time.
	Duration         time.Duration            `json:"duration"`
	Transcript       string                   `json:"transcript,omitempty"`
	TranscriptSource transcript.Source        `json:"transcriptSource,omitempty"`
	Grading          *grading.Result          `json:"grading,omitempty"`
	CustomerProfile  *grading.CustomerProfile `json:"customerProfile,omitempty"`
	ProfileTag       string                   `json:"profileTag,omitempty"`
	Layers           map[string]string        `json:"layers,omitempty"`
	Handoff          transcript.Handoff       `json:"handoff"`
	CustomerMood     string                   `json:"customerMood,omitempty"`
	MoodIntensity    int                      `json:"moodIntensity,omitempty"`
	GradedAt         time.Time                `json:"gradedAt,omitzero"`

	ReportPath string `json:"reportPath,omitempty"`
}

// Graded reports whether the session carries a grading result.
func (s *Session) Graded() bool {
	return s.Status == StatusCompleted && s.Grading != nil
}

// Mutator applies a partial update to a session.
type Mutator func(*Session)

// Clone returns a deep copy so callers never share mutable state with the store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Grading != nil {
		g := *s.Grading
		g.Strengths = append([]string(nil), s.Grading.Strengths...)
		g.Improvements = append([]string(nil), s.Grading.Improvements...)
		out.Grading = &g
	}
	if s.Layers != nil {
		out.Layers = make(map[string]string, len(s.Layers))
		for k, v := range s.Layers {
			out.Layers[k] = v
		}
	}
	if s.CustomerProfile != nil {
		p := *s.CustomerProfile
		out.CustomerProfile = &p
	}
	return &out
}
