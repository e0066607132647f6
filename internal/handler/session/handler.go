package session

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/gemsales/voice-trainer/backend/internal/handler/apierror"
	"github.com/gemsales/voice-trainer/backend/internal/model/transcript"
	"github.com/gemsales/voice-trainer/backend/internal/service/training"
	"github.com/gemsales/voice-trainer/backend/pkg/utils"
)

// Lifecycle is the part of the training service this handler drives.
type Lifecycle interface {
	CreateSession(ctx context.Context, personaKey string) (*training.CreateResult, error)
	GradeSession(ctx context.Context, in training.GradeInput) (*training.GradeOutcome, error)
}

// Handler serves session creation and grading.
type Handler struct {
	svc            Lifecycle
	maxUploadBytes int64
	logger         logrus.FieldLogger
}

// New creates a session handler. Grade uploads larger than maxUploadBytes
// are rejected.
func New(svc Lifecycle, maxUploadBytes int64, logger logrus.FieldLogger) *Handler {
	return &Handler{
		svc:            svc,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.WithField("component", "session_handler"),
	}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session/create", h.handleCreate)
	r.Post("/session/grade", h.handleGrade)
}

type createResponse struct {
	Success          bool       `json:"success"`
	SessionID        string     `json:"session_id"`
	EphemeralKey     *string    `json:"ephemeral_key"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	Model            string     `json:"model,omitempty"`
	SystemPrompt     string     `json:"system_prompt"`
	Voice            string     `json:"voice"`
	CredentialStatus string     `json:"credential_status"`
	Warning          string     `json:"warning,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Personality string `json:"personality"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.CreateSession(r.Context(), strings.TrimSpace(payload.Personality))
	if err != nil {
		apierror.Respond(w, h.logger, err)
		return
	}

	resp := createResponse{
		Success:          true,
		SessionID:        res.Session.ID,
		SystemPrompt:     res.Script,
		Voice:            res.Voice,
		CredentialStatus: res.Credential.Status(),
	}
	if cred := res.Credential.Credential; cred != nil {
		resp.EphemeralKey = &cred.Value
		resp.Model = cred.Model
		if !cred.ExpiresAt.IsZero() {
			resp.ExpiresAt = &cred.ExpiresAt
		}
	} else {
		resp.Warning = "Voice credential unavailable: " + res.Credential.Degraded
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

type gradeResponse struct {
	Success    bool   `json:"success"`
	SessionID  string `json:"session_id"`
	Score      int    `json:"score"`
	LeadStatus string `json:"lead_status"`
	ReportURL  string `json:"report_url"`
}

func (h *Handler) handleGrade(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	in, cleanup, err := h.decodeGrade(r)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			utils.RespondError(w, http.StatusRequestEntityTooLarge, "upload too large")
		default:
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	out, err := h.svc.GradeSession(r.Context(), in)
	if err != nil {
		apierror.Respond(w, h.logger.WithField("session_id", in.SessionID), err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, gradeResponse{
		Success:    true,
		SessionID:  out.Session.ID,
		Score:      out.Result.OverallScore,
		LeadStatus: string(out.Result.LeadStatus),
		ReportURL:  "/api/report/" + out.Session.ID,
	})
}

// decodeGrade accepts multipart (with optional audio) or JSON bodies.
func (h *Handler) decodeGrade(r *http.Request) (training.GradeInput, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return h.decodeMultipart(r)
	}

	var payload struct {
		SessionID   string            `json:"session_id"`
		Personality string            `json:"personality"`
		Duration    float64           `json:"duration"`
		Transcript  string            `json:"transcript"`
		AIResponses []transcript.Turn `json:"ai_responses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return training.GradeInput{}, nil, err
		}
		return training.GradeInput{}, nil, errors.New("invalid request body")
	}

	return training.GradeInput{
		SessionID:  strings.TrimSpace(payload.SessionID),
		PersonaKey: strings.TrimSpace(payload.Personality),
		Duration:   seconds(payload.Duration),
		Fallback:   payload.Transcript,
		Turns:      payload.AIResponses,
	}, nil, nil
}

func (h *Handler) decodeMultipart(r *http.Request) (training.GradeInput, func(), error) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return training.GradeInput{}, nil, err
		}
		return training.GradeInput{}, nil, errors.New("invalid multipart body")
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	in := training.GradeInput{
		SessionID:  strings.TrimSpace(r.FormValue("session_id")),
		PersonaKey: strings.TrimSpace(r.FormValue("personality")),
		Fallback:   r.FormValue("fallback_transcript"),
	}
	if in.Fallback == "" {
		in.Fallback = r.FormValue("transcript")
	}

	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		secs, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return in, cleanup, errors.New("invalid duration")
		}
		in.Duration = seconds(secs)
	}

	if raw := strings.TrimSpace(r.FormValue("ai_responses")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Turns); err != nil {
			return in, cleanup, errors.New("invalid ai_responses")
		}
	}

	file, header, err := r.FormFile("audio")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return in, cleanup, errors.New("invalid audio upload")
	case header.Size > 0:
		in.Audio = file
		in.AudioFilename = header.Filename
		in.AudioContentType = header.Header.Get("Content-Type")
		cleanup = closeAfter(file, cleanup)
	default:
		file.Close()
	}

	return in, cleanup, nil
}

func closeAfter(f multipart.File, next func()) func() {
	return func() {
		f.Close()
		next()
	}
}

func seconds(v float64) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v * float64(time.Second)).Truncate(time.Second)
}
