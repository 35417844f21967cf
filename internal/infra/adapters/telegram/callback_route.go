package telegram

import (
	"context"
	"fmt"
	"strings"
)

type cbHandler func(ctx context.Context, chatID int64, data string) error
type prefixCB struct {
	Prefix string
	Fn     cbHandler
}

func (r *RealTelegramBotAdapter) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		"cmd:lang":   r.langMenuCBRoute,
		"promo:stop": r.stopPromoCBRoute,
	}
}

// Prefix-match callbacks
func (r *RealTelegramBotAdapter) cbPrefixRoutes() []prefixCB {
	return []prefixCB{
		{
			Prefix: "lang:",
			Fn:     r.langPrefixCBRoute,
		},
	}
}

func (r *RealTelegramBotAdapter) langMenuCBRoute(ctx context.Context, chatID int64, _ string) error {
	return r.sendLanguageMenu(ctx, chatID)
}

func (r *RealTelegramBotAdapter) stopPromoCBRoute(ctx context.Context, chatID int64, _ string) error {
	text, _ := r.facade.HandleStopPromo(ctx, chatID)
	return r.SendMessage(ctx, chatID, text)
}

func (r *RealTelegramBotAdapter) langPrefixCBRoute(ctx context.Context, chatID int64, data string) error {
	code := strings.TrimPrefix(data, "lang:")
	text, _ := r.facade.HandleSetLanguage(ctx, chatID, code)
	return r.SendMessage(ctx, chatID, text)
}

func relaySummary(groups, delivered, removed, failed int) string {
	return fmt.Sprintf("Relayed to %d group(s): %d delivered, %d removed, %d failed.", groups, delivered, removed, failed)
}
