package speech

import "time"

// Segment is a timed span of recognized speech. Start and End are seconds
// from the beginning of the recording.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptionResponse is the recognizer output for one recording.
type TranscriptionResponse struct {
	SessionID string    `json:"sessionId"`
	Text      string    `json:"text"`
	Language  string    `json:"language,omitempty"`
	Duration  float64   `json:"duration"` // seconds
	Segments  []Segment `json:"segments"`
	CreatedAt time.Time `json:"createdAt"`
}
