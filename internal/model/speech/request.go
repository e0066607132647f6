package speech

import "io"

// TranscriptionRequest carries one recorded audio track of the sales rep.
type TranscriptionRequest struct {
	SessionID string    `json:"sessionId"`
	Audio     io.Reader `json:"-"`
	Filename  string    `json:"filename"`
	// MIME type reported by the client, e.g. audio/webm.
	ContentType string `json:"contentType"`
	Language    string `json:"language,omitempty"`
}
