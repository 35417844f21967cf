package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"nomadlybot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter logs outgoing messages instead of sending them. Used when
// bot.mode is noop.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	l := logger.With().Str("component", "NoopBot").Logger()
	return &NoopBotAdapter{log: &l}
}

func (b *NoopBotAdapter) SendText(ctx context.Context, chatID int64, text string, opts adapter.SendOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Bool("html", opts.HTML).Str("text", text).Msg("send text")
	return nil
}

func (b *NoopBotAdapter) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, _ adapter.SendOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Str("photo", photoURL).Str("caption", caption).Msg("send photo")
	return nil
}

func (b *NoopBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Int("rows", len(rows)).Str("text", text).Msg("send buttons")
	return nil
}
