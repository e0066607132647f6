package grading

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemsales/voice-trainer/backend/internal/config"
	"github.com/gemsales/voice-trainer/backend/internal/logging"
	"github.com/gemsales/voice-trainer/backend/internal/model/grading"
)

func chatCompletion(content, finish string) []byte {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1760000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": finish,
			"message": map[string]any{
				"role":    "assistant",
				"content": content,
				"refusal": nil,
			},
		}},
	})
	return body
}

func newOpenAIGrader(t *testing.T, handler http.HandlerFunc) *OpenAIGrader {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIGrader(config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL}, "gpt-4o-mini", logging.Discard())
}

func TestOpenAIGraderRequestsStructuredOutput(t *testing.T) {
	grader := newOpenAIGrader(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var body struct {
			Model          string `json:"model"`
			ResponseFormat struct {
				Type       string `json:"type"`
				JSONSchema struct {
					Name   string         `json:"name"`
					Strict bool           `json:"strict"`
					Schema map[string]any `json:"schema"`
				} `json:"json_schema"`
			} `json:"response_format"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		assert.Equal(t, "json_schema", body.ResponseFormat.Type)
		assert.True(t, body.ResponseFormat.JSONSchema.Strict)
		assert.Equal(t, schemaName, body.ResponseFormat.JSONSchema.Name)
		assert.Equal(t, false, body.ResponseFormat.JSONSchema.Schema["additionalProperties"])
		require.Len(t, body.Messages, 1)
		assert.Contains(t, body.Messages[0].Content, "Stone: Blue Sapphire (Neelam)")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(chatCompletion(validResponse, "stop"))
	})

	result, err := grader.Grade(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, 55, result.OverallScore)
	assert.Equal(t, grading.LeadWarm, result.LeadStatus)
}

func TestOpenAIGraderEmptyTranscriptNeverCallsProvider(t *testing.T) {
	var calls atomic.Int32
	grader := newOpenAIGrader(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	req := sampleRequest()
	req.Transcript = "  \n "
	_, err := grader.Grade(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmptyTranscript)
	assert.Zero(t, calls.Load())
}

func TestOpenAIGraderFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"provider error": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
		},
		"malformed content": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(chatCompletion(`{"overall_score": 80`, "stop"))
		},
		"truncated by length": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(chatCompletion(validResponse, "length"))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			grader := newOpenAIGrader(t, handler)
			_, err := grader.Grade(context.Background(), sampleRequest())
			assert.ErrorIs(t, err, ErrGradingUnavailable)
		})
	}
}

type fakeChatModel struct {
	reply string
	err   error
	input []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func TestArkGrader(t *testing.T) {
	ctx := context.Background()
	chatModel := &fakeChatModel{reply: "```json\n" + validResponse + "\n```"}

	grader, err := NewArkGrader(ctx, chatModel, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, config.ProviderArk, grader.Provider())

	result, err := grader.Grade(ctx, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, 55, result.OverallScore)

	require.Len(t, chatModel.input, 2)
	assert.Equal(t, schema.System, chatModel.input[0].Role)
	assert.Contains(t, chatModel.input[1].Content, "CALL DURATION: 2 minutes 5 seconds")
}

func TestArkGraderFailures(t *testing.T) {
	ctx := context.Background()

	grader, err := NewArkGrader(ctx, &fakeChatModel{err: errors.New("quota exceeded")}, logging.Discard())
	require.NoError(t, err)
	_, err = grader.Grade(ctx, sampleRequest())
	assert.ErrorIs(t, err, ErrGradingUnavailable)

	grader, err = NewArkGrader(ctx, &fakeChatModel{reply: "I think the rep did well."}, logging.Discard())
	require.NoError(t, err)
	_, err = grader.Grade(ctx, sampleRequest())
	assert.ErrorIs(t, err, ErrGradingUnavailable)

	req := sampleRequest()
	req.Transcript = ""
	_, err = grader.Grade(ctx, req)
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestFromConfigSelectsProvider(t *testing.T) {
	cfg := &config.Config{
		OpenAI:  config.OpenAIConfig{APIKey: "sk-test", BaseURL: "http://127.0.0.1:1"},
		Grading: config.GradingConfig{Provider: config.ProviderOpenAI, Model: "gpt-4o-mini"},
	}
	g, err := FromConfig(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, config.ProviderOpenAI, g.Provider())

	cfg.Grading.Provider = config.ProviderArk
	_, err = FromConfig(context.Background(), cfg, logging.Discard())
	assert.Error(t, err, "ark without credentials")
}
