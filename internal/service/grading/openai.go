package grading

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/sirupsen/logrus"

	"github.com/gemsales/voice-trainer/backend/internal/config"
	"github.com/gemsales/voice-trainer/backend/internal/metrics"
	"github.com/gemsales/voice-trainer/backend/internal/model/grading"
)

const finishReasonStop = "stop"

// OpenAIGrader requests a schema-constrained evaluation from a chat
// completion model.
type OpenAIGrader struct {
	client openai.Client
	model  string
	logger logrus.FieldLogger
}

// NewOpenAIGrader builds a grader using the shared OpenAI configuration.
func NewOpenAIGrader(cfg config.OpenAIConfig, model string, logger logrus.FieldLogger, opts ...option.RequestOption) *OpenAIGrader {
	return &OpenAIGrader{
		client: cfg.NewClient(opts...),
		model:  model,
		logger: logger.WithField("provider", config.ProviderOpenAI),
	}
}

// Provider names the backend.
func (g *OpenAIGrader) Provider() string { return config.ProviderOpenAI }

// Grade sends the rubric and transcript and parses the structured reply.
func (g *OpenAIGrader) Grade(ctx context.Context, req grading.Request) (*grading.Result, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	done := metrics.ObserveGrading(g.Provider())
	result, err := g.grade(ctx, req)
	if err != nil {
		done("error")
		g.logger.WithError(err).WithField("persona", req.Persona.Key).Warn("grading failed")
		return nil, err
	}
	done("ok")
	return result, nil
}

func (g *OpenAIGrader) grade(ctx context.Context, req grading.Request) (*grading.Result, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("%w: build prompt: %v", ErrGradingUnavailable, err)
	}
	schema, err := ResultSchema()
	if err != nil {
		return nil, fmt.Errorf("%w: build schema: %v", ErrGradingUnavailable, err)
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        schemaName,
					Description: param.NewOpt(schemaDescription),
					Schema:      schema,
					Strict:      param.NewOpt(true),
				},
			},
		},
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGradingUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrGradingUnavailable)
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, fmt.Errorf("%w: refused: %s", ErrGradingUnavailable, choice.Message.Refusal)
	}
	if choice.FinishReason != finishReasonStop {
		return nil, fmt.Errorf("%w: unexpected finish reason %q", ErrGradingUnavailable, choice.FinishReason)
	}

	return Parse(choice.Message.Content)
}
