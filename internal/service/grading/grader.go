package grading

import (
	"context"
	"errors"
	"strings"

	"github.com/gemsales/voice-trainer/backend/internal/model/grading"
)

var (
	// ErrEmptyTranscript is a precondition failure: graders never call the
	// provider without dialogue.
	ErrEmptyTranscript = errors.New("transcript is empty")
	// ErrGradingUnavailable wraps every provider or parse failure.
	ErrGradingUnavailable = errors.New("grading unavailable")
)

// Grader scores a transcript with an external language model.
type Grader interface {
	Grade(ctx context.Context, req grading.Request) (*grading.Result, error)
	Provider() string
}

func checkRequest(req grading.Request) error {
	if strings.TrimSpace(req.Transcript) == "" {
		return ErrEmptyTranscript
	}
	return nil
}
