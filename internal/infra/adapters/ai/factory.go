package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"nomadlybot/internal/config"
	"nomadlybot/internal/domain/ports/adapter"
)

// Build wires every provider that has a key behind one router. enabled is
// false when no provider is usable, in which case the noop adapter is returned.
func Build(ctx context.Context, cfg config.AIConfig, logger *zerolog.Logger) (a adapter.AIServiceAdapter, enabled bool, err error) {
	compLog := logger.With().Str("component", "AI").Logger()
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "noop" {
		return NewNoopAIAdapter(&compLog), false, nil
	}

	byProvider := map[string]adapter.AIServiceAdapter{}
	if cfg.OpenAIKey != "" {
		oa, err := NewOpenAIAdapter("openai", cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.Model, cfg.Timeout)
		if err != nil {
			return nil, false, err
		}
		byProvider["openai"] = NewLimitedAI(oa, "openai", cfg.ConcurrentLimit)
	}
	if cfg.MetisKey != "" {
		ma, err := NewOpenAIAdapter("metis", cfg.MetisKey, cfg.MetisBaseURL, cfg.Model, cfg.Timeout)
		if err != nil {
			return nil, false, err
		}
		byProvider["metis"] = NewLimitedAI(ma, "metis", cfg.ConcurrentLimit)
	}
	if cfg.GeminiKey != "" {
		ga, err := NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.Model, cfg.Timeout)
		if err != nil {
			return nil, false, err
		}
		byProvider["gemini"] = NewLimitedAI(ga, "gemini", cfg.ConcurrentLimit)
	}

	if len(byProvider) == 0 {
		compLog.Warn().Msg("no AI provider key configured; promo generation disabled")
		return NewNoopAIAdapter(&compLog), false, nil
	}
	if provider == "" {
		for _, p := range []string{"openai", "metis", "gemini"} {
			if byProvider[p] != nil {
				provider = p
				break
			}
		}
	}
	if byProvider[provider] == nil {
		return nil, false, fmt.Errorf("ai.provider %q has no api key", provider)
	}

	m := NewMultiAIAdapter(provider, byProvider, nil)
	compLog.Info().Str("default_provider", provider).Strs("providers", m.Providers()).Str("model", cfg.Model).Msg("AI adapters ready")
	return m, true, nil
}
