package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"nomadlybot/internal/domain/ports/adapter"
)

const alertPrefix = "[AutoPromo Alert] "

var _ adapter.AdminAlerter = (*TelegramAlerter)(nil)

// TelegramAlerter posts operational alerts to the admin chat. Delivery
// failures are logged and never reach the caller.
type TelegramAlerter struct {
	transport   adapter.Transport
	adminChatID int64
	log         *zerolog.Logger
}

func NewTelegramAlerter(transport adapter.Transport, adminChatID int64, logger *zerolog.Logger) *TelegramAlerter {
	l := logger.With().Str("component", "AdminAlerter").Logger()
	return &TelegramAlerter{transport: transport, adminChatID: adminChatID, log: &l}
}

func (a *TelegramAlerter) Alert(ctx context.Context, text string) {
	if a.adminChatID == 0 {
		a.log.Warn().Str("alert", text).Msg("admin chat not configured; alert dropped")
		return
	}
	if err := a.transport.SendText(ctx, a.adminChatID, alertPrefix+text, adapter.SendOptions{}); err != nil {
		a.log.Error().Err(err).Msg("admin alert delivery failed")
	}
}
