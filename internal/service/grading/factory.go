package grading

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gemsales/voice-trainer/backend/internal/config"
)

// FromConfig builds the grader selected by GRADING_PROVIDER.
func FromConfig(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (Grader, error) {
	switch cfg.Grading.Provider {
	case config.ProviderArk:
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("ark grading model: %w", err)
		}
		return NewArkGrader(ctx, chatModel, logger)
	default:
		if !cfg.OpenAI.Enabled() {
			logger.Warn("OPENAI_API_KEY not set; grading requests will fail until it is configured")
		}
		return NewOpenAIGrader(cfg.OpenAI, cfg.Grading.Model, logger), nil
	}
}
