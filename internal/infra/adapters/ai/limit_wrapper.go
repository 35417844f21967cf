package ai

import (
	"context"

	"nomadlybot/internal/domain/ports/adapter"
	"nomadlybot/internal/infra/metrics"
)

// Compile-time check
var _ adapter.AIServiceAdapter = (*limitedAI)(nil)

type limitedAI struct {
	inner adapter.AIServiceAdapter
	name  string
	sem   chan struct{}
}

// NewLimitedAI bounds concurrent calls to inner. A caller whose context ends
// while waiting for a slot gets the context error.
func NewLimitedAI(inner adapter.AIServiceAdapter, name string, maxConcurrent int) adapter.AIServiceAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		name:  name,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) Chat(ctx context.Context, model string, messages []adapter.Message, opts adapter.ChatOptions) (string, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		metrics.IncLimiterRejection(l.name)
		return "", ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Chat(ctx, model, messages, opts)
}
