package grading

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"github.com/gemsales/voice-trainer/backend/internal/config"
	"github.com/gemsales/voice-trainer/backend/internal/metrics"
	"github.com/gemsales/voice-trainer/backend/internal/model/grading"
)

const arkSystemPrompt = "You grade sales training calls. Reply with a single JSON object and nothing else."

// ArkGrader runs the rubric through an eino chain backed by an Ark chat model.
// Ark has no schema-constrained mode here, so the reply is validated against
// the same schema after the fact.
type ArkGrader struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	logger logrus.FieldLogger
}

// NewArkGrader compiles the grading chain around chatModel.
func NewArkGrader(ctx context.Context, chatModel model.BaseChatModel, logger logrus.FieldLogger) (*ArkGrader, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{rubric}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile grading chain: %w", err)
	}

	return &ArkGrader{
		chain:  runnable,
		logger: logger.WithField("provider", config.ProviderArk),
	}, nil
}

// Provider names the backend.
func (g *ArkGrader) Provider() string { return config.ProviderArk }

// Grade renders the rubric, invokes the chain and parses the reply.
func (g *ArkGrader) Grade(ctx context.Context, req grading.Request) (*grading.Result, error) {
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

func (g *ArkGrader) grade(ctx context.Context, req grading.Request) (*grading.Result, error) {
	text, err := BuildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("%w: build prompt: %v", ErrGradingUnavailable, err)
	}

	msg, err := g.chain.Invoke(ctx, map[string]any{
		"system": arkSystemPrompt,
		"rubric": text,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: run grading chain: %v", ErrGradingUnavailable, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty reply", ErrGradingUnavailable)
	}
	return Parse(msg.Content)
}
