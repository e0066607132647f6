// Package apierror maps service errors to HTTP statuses and user-facing messages.
package apierror

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/gemsales/voice-trainer/backend/internal/service/grading"
	"github.com/gemsales/voice-trainer/backend/internal/service/report"
	"github.com/gemsales/voice-trainer/backend/internal/service/session"
	"github.com/gemsales/voice-trainer/backend/internal/service/transcript"
	"github.com/gemsales/voice-trainer/backend/pkg/utils"
)

var mappings = []struct {
	target  error
	status  int
	message string
}{
	{session.ErrSessionNotFound, http.StatusNotFound, "Session not found"},
	{session.ErrInvalidPersona, http.StatusBadRequest, "Invalid personality"},
	{session.ErrAlreadyGraded, http.StatusConflict, "Session already graded"},
	{transcript.ErrNoTranscriptAvailable, http.StatusBadRequest, "No transcript available"},
	{grading.ErrEmptyTranscript, http.StatusBadRequest, "No transcript available"},
	{grading.ErrGradingUnavailable, http.StatusInternalServerError, "Grading unavailable"},
	{report.ErrNotGraded, http.StatusBadRequest, "Session has not been graded yet"},
	{report.ErrInvalidID, http.StatusBadRequest, "Invalid session id"},
	{report.ErrRenderFailure, http.StatusInternalServerError, "Report generation failed"},
}

// Status returns the HTTP status and message for err.
func Status(err error) (int, string) {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// Respond writes the mapped error envelope. Server-side failures are logged
// with the underlying cause, which never reaches the client.
func Respond(w http.ResponseWriter, logger logrus.FieldLogger, err error) {
	status, message := Status(err)
	if status >= http.StatusInternalServerError {
		logger.WithError(err).Error(message)
	} else {
		logger.WithError(err).Debug(message)
	}
	utils.RespondError(w, status, message)
}
