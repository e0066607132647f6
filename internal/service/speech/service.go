package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"

	"github.com/gemsales/voice-trainer/backend/internal/config"
	"github.com/gemsales/voice-trainer/backend/internal/metrics"
	"github.com/gemsales/voice-trainer/backend/internal/model/speech"
)

var (
	ErrNotConfigured = errors.New("speech transcription not configured")
	ErrNoAudio       = errors.New("no audio supplied")
)

// Transcriber turns a recording of the sales rep into timed segments.
type Transcriber interface {
	Transcribe(ctx context.Context, req *speech.TranscriptionRequest) (*speech.TranscriptionResponse, error)
}

// Service transcribes recordings with the OpenAI audio API.
type Service struct {
	client   openai.Client
	enabled  bool
	model    string
	language string
	logger   logrus.FieldLogger
}

// NewService builds a transcriber from cfg. Extra options are applied last.
func NewService(cfg config.OpenAIConfig, logger logrus.FieldLogger, opts ...option.RequestOption) *Service {
	return &Service{
		client:   cfg.NewClient(opts...),
		enabled:  cfg.Enabled(),
		model:    cfg.TranscriptionModel,
		language: cfg.TranscriptionLanguage,
		logger:   logger.WithField("component", "speech"),
	}
}

// Transcribe sends the recording for recognition with segment timestamps.
func (s *Service) Transcribe(ctx context.Context, req *speech.TranscriptionRequest) (*speech.TranscriptionResponse, error) {
	resp, err := s.transcribe(ctx, req)
	if err != nil {
		metrics.RecordTranscription("error")
		return nil, err
	}
	if len(resp.Segments) == 0 {
		metrics.RecordTranscription("empty")
	} else {
		metrics.RecordTranscription("ok")
	}
	return resp, nil
}

func (s *Service) transcribe(ctx context.Context, req *speech.TranscriptionRequest) (*speech.TranscriptionResponse, error) {
	if !s.enabled {
		return nil, ErrNotConfigured
	}
	if req == nil || req.Audio == nil {
		return nil, ErrNoAudio
	}

	language := req.Language
	if language == "" {
		language = s.language
	}
	filename := req.Filename
	if filename == "" {
		filename = "recording.webm"
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "audio/webm"
	}

	params := openai.AudioTranscriptionNewParams{
		File:                   openai.File(req.Audio, filename, contentType),
		Model:                  openai.AudioModel(s.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}
	if language != "" {
		params.Language = openai.String(language)
	}

	started := time.Now()
	result, err := s.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcribe audio: %w", err)
	}

	resp, err := parseVerbose(result.RawJSON())
	if err != nil {
		return nil, fmt.Errorf("decode transcription: %w", err)
	}
	if resp.Text == "" {
		resp.Text = strings.TrimSpace(result.Text)
	}
	resp.SessionID = req.SessionID
	resp.CreatedAt = time.Now().UTC()

	// Recognizers sometimes return text without segments; keep it as one
	// segment at the start of the call.
	if len(resp.Segments) == 0 && resp.Text != "" {
		resp.Segments = []speech.Segment{{Text: resp.Text, Start: 0, End: resp.Duration}}
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": req.SessionID,
		"segments":   len(resp.Segments),
		"elapsed":    time.Since(started).Round(time.Millisecond).String(),
	}).Info("audio transcribed")

	return resp, nil
}

type verboseTranscription struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}

func parseVerbose(raw string) (*speech.TranscriptionResponse, error) {
	if strings.TrimSpace(raw) == "" {
		return &speech.TranscriptionResponse{}, nil
	}

	var v verboseTranscription
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}

	resp := &speech.TranscriptionResponse{
		Text:     strings.TrimSpace(v.Text),
		Language: v.Language,
		Duration: v.Duration,
		Segments: make([]speech.Segment, 0, len(v.Segments)),
	}
	for _, seg := range v.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		resp.Segments = append(resp.Segments, speech.Segment{Text: text, Start: seg.Start, End: seg.End})
	}
	return resp, nil
}
