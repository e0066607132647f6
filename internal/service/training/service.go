package training

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gemsales/voice-trainer/backend/internal/metrics"
	"github.com/gemsales/voice-trainer/backend/internal/model/grading"
	"github.com/gemsales/voice-trainer/backend/internal/model/persona"
	model "github.com/gemsales/voice-trainer/backend/internal/model/session"
	"github.com/gemsales/voice-trainer/backend/internal/model/speech"
	"github.com/gemsales/voice-trainer/backend/internal/model/transcript"
	gradingsvc "github.com/gemsales/voice-trainer/backend/internal/service/grading"
	"github.com/gemsales/voice-trainer/backend/internal/service/realtime"
	"github.com/gemsales/voice-trainer/backend/internal/service/report"
	sessionsvc "github.com/gemsales/voice-trainer/backend/internal/service/session"
	speechsvc "github.com/gemsales/voice-trainer/backend/internal/service/speech"
	transcriptsvc "github.com/gemsales/voice-trainer/backend/internal/service/transcript"
)

// Service drives a session from creation through grading to its report.
type Service struct {
	personas    persona.Store
	sessions    *sessionsvc.Store
	broker      realtime.Provisioner
	transcriber speechsvc.Transcriber
	grader      gradingsvc.Grader
	reports     *report.Renderer
	logger      logrus.FieldLogger
}

// Deps bundles the collaborators. Transcriber may be nil.
type Deps struct {
	Personas    persona.Store
	Sessions    *sessionsvc.Store
	Broker      realtime.Provisioner
	Transcriber speechsvc.Transcriber
	Grader      gradingsvc.Grader
	Reports     *report.Renderer
	Logger      logrus.FieldLogger
}

// NewService wires the lifecycle.
func NewService(deps Deps) *Service {
	return &Service{
		personas:    deps.Personas,
		sessions:    deps.Sessions,
		broker:      deps.Broker,
		transcriber: deps.Transcriber,
		grader:      deps.Grader,
		reports:     deps.Reports,
		logger:      deps.Logger.WithField("component", "training"),
	}
}

// CreateResult is everything the browser needs to start the voice call.
type CreateResult struct {
	Session    *model.Session
	Persona    persona.Persona
	Credential realtime.Result
	Script     string
	Voice      string
}

// CreateSession stores a new session and provisions a voice credential. A
// failed credential does not fail the call; the result carries the reason.
func (s *Service) CreateSession(ctx context.Context, personaKey string) (*CreateResult, error) {
	p, ok := s.personas.FindByID(personaKey)
	if !ok {
		return nil, sessionsvc.ErrInvalidPersona
	}

	sess, err := s.sessions.Create(ctx, personaKey)
	if err != nil {
		return nil, err
	}
	metrics.RecordSessionCreated(personaKey)

	cred := s.broker.CreateVoiceCredential(ctx)
	log := s.logger.WithFields(logrus.Fields{"session_id": sess.ID, "persona": personaKey})
	if cred.OK() {
		log.Info("session created")
	} else {
		log.WithField("reason", cred.Degraded).Warn("session created without voice credential")
	}

	return &CreateResult{
		Session:    sess,
		Persona:    p,
		Credential: cred,
		Script:     p.Script,
		Voice:      p.Voice(),
	}, nil
}

// GradeInput is what the client submits when the call ends.
type GradeInput struct {
	SessionID  string
	PersonaKey string
	Duration   time.Duration
	// Fallback is the client's own running transcript.
	Fallback string
	Turns    []transcript.Turn

	Audio            io.Reader
	AudioFilename    string
	AudioContentType string
}

// GradeOutcome reports the stored grading and where the report landed.
type GradeOutcome struct {
	Session    *model.Session
	Result     *grading.Result
	ReportPath string
	ReportErr  error
}

// GradeSession transcribes, assembles, grades and renders. The work is
// detached from ctx cancellation: a client that disconnects does not abort a
// grade in flight. A session is graded at most once; a failed attempt
// releases it for retry.
func (s *Service) GradeSession(ctx context.Context, in GradeInput) (*GradeOutcome, error) {
	ctx = context.WithoutCancel(ctx)
	log := s.logger.WithField("session_id", in.SessionID)

	sess, err := s.sessions.Get(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if in.PersonaKey != "" && in.PersonaKey != sess.PersonaID {
		log.WithFields(logrus.Fields{
			"persona":   sess.PersonaID,
			"submitted": in.PersonaKey,
		}).Warn("grade request persona differs from session; using session persona")
	}
	p, ok := s.personas.FindByID(sess.PersonaID)
	if !ok {
		return nil, sessionsvc.ErrInvalidPersona
	}

	if _, err := s.sessions.BeginGrading(ctx, in.SessionID); err != nil {
		return nil, err
	}
	completed := false
	defer func() {
		if !completed {
			s.sessions.AbortGrading(in.SessionID)
		}
	}()

	segments := s.transcribe(ctx, log, in)

	assembled, err := transcriptsvc.Assemble(segments, in.Turns, in.Fallback)
	if err != nil {
		log.WithError(err).Warn("no usable transcript")
		return nil, err
	}

	duration := in.Duration
	if duration < 0 {
		duration = 0
	}

	result, err := s.grader.Grade(ctx, grading.Request{
		Transcript: assembled.Text,
		Persona:    labels(p),
		Duration:   duration,
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.sessions.CompleteGrading(ctx, in.SessionID, func(sess *model.Session) {
		profile := result.CustomerProfile
		sess.Duration = duration
		sess.Transcript = assembled.Text
		sess.TranscriptSource = assembled.Source
		sess.Grading = result
		sess.CustomerProfile = &profile
		sess.ProfileTag = assembled.ProfileTag
		sess.Layers = assembled.Layers
		sess.Handoff = assembled.Handoff
		sess.CustomerMood = string(assembled.Mood.Mood)
		sess.MoodIntensity = assembled.Mood.Intensity
	})
	if err != nil {
		return nil, err
	}
	completed = true
	metrics.RecordSessionCompleted()

	log.WithFields(logrus.Fields{
		"persona":     p.ID,
		"score":       result.OverallScore,
		"lead_status": result.LeadStatus,
		"source":      assembled.Source,
		"provider":    s.grader.Provider(),
	}).Info("session graded")

	outcome := &GradeOutcome{Session: updated, Result: result}
	path, err := s.reports.Render(updated, p, report.TriggerGrade)
	if err != nil {
		// The grade stands; the report is rebuilt on retrieval.
		log.WithError(err).Error("report render failed after grading")
		outcome.ReportErr = err
		return outcome, nil
	}

	outcome.ReportPath = path
	if stored, err := s.sessions.Update(ctx, in.SessionID, func(sess *model.Session) { sess.ReportPath = path }); err == nil {
		outcome.Session = stored
	}
	return outcome, nil
}

func (s *Service) transcribe(ctx context.Context, log logrus.FieldLogger, in GradeInput) []transcript.Segment {
	if in.Audio == nil {
		return nil
	}
	if s.transcriber == nil {
		log.Debug("audio supplied but no transcriber configured")
		return nil
	}

	resp, err := s.transcriber.Transcribe(ctx, &speech.TranscriptionRequest{
		SessionID:   in.SessionID,
		Audio:       in.Audio,
		Filename:    in.AudioFilename,
		ContentType: in.AudioContentType,
	})
	if err != nil {
		log.WithError(err).Warn("transcription failed; continuing with client transcript")
		return nil
	}
	return transcriptsvc.FromSpeech(resp.Segments)
}

// Report returns the path of the session's report, rendering it again when
// the file is missing.
func (s *Service) Report(ctx context.Context, id string) (string, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.reports.Exists(id) {
		return s.reports.Path(id)
	}
	if !sess.Graded() {
		return "", report.ErrNotGraded
	}

	p, ok := s.personas.FindByID(sess.PersonaID)
	if !ok {
		return "", fmt.Errorf("%w: persona %q no longer configured", report.ErrRenderFailure, sess.PersonaID)
	}

	path, err := s.reports.Render(sess, p, report.TriggerRegenerate)
	if err != nil {
		return "", err
	}
	if _, err := s.sessions.Update(ctx, id, func(sess *model.Session) { sess.ReportPath = path }); err != nil && !errors.Is(err, sessionsvc.ErrSessionNotFound) {
		return "", err
	}
	return path, nil
}

// ReportSummary is one row of the report listing.
type ReportSummary struct {
	SessionID   string             `json:"session_id"`
	Personality string             `json:"personality"`
	Score       int                `json:"score"`
	LeadStatus  grading.LeadStatus `json:"lead_status"`
	Date        string             `json:"date"`
	Duration    string             `json:"duration"`

	createdAt time.Time
}

// ListReports summarizes completed sessions, newest first.
func (s *Service) ListReports(ctx context.Context) []ReportSummary {
	completed := s.sessions.Completed(ctx)
	out := make([]ReportSummary, 0, len(completed))
	for _, sess := range completed {
		name := sess.PersonaID
		if p, ok := s.personas.FindByID(sess.PersonaID); ok {
			name = p.Name
		}
		out = append(out, ReportSummary{
			SessionID:   sess.ID,
			Personality: name,
			Score:       sess.Grading.OverallScore,
			LeadStatus:  sess.Grading.LeadStatus,
			Date:        sess.CreatedAt.Format("2006-01-02"),
			Duration:    grading.ShortDuration(sess.Duration),
			createdAt:   sess.CreatedAt,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].createdAt.After(out[j].createdAt)
	})
	return out
}

func labels(p persona.Persona) grading.PersonaLabels {
	return grading.PersonaLabels{
		Key:          p.ID,
		Name:         p.Name,
		StoneEnglish: p.StoneEnglish,
		StoneHindi:   p.StoneHindi,
		Planet:       p.Planet,
	}
}
