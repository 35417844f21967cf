package ai

import (
	"context"

	"github.com/rs/zerolog"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter stands in when no provider key is configured. Every call
// reports the generator as disabled so callers use static copy.
type NoopAIAdapter struct {
	log *zerolog.Logger
}

func NewNoopAIAdapter(logger *zerolog.Logger) *NoopAIAdapter {
	return &NoopAIAdapter{log: logger}
}

func (a *NoopAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message, _ adapter.ChatOptions) (string, error) {
	a.log.Debug().Str("model", model).Int("messages", len(messages)).Msg("noop-ai: chat skipped")
	return "", domain.ErrGeneratorDisabled
}
