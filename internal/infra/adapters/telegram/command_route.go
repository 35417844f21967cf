package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nomadlybot/internal/domain/ports/adapter"
	"nomadlybot/internal/infra/metrics"
)

const rateWindow = time.Minute

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":      r.handleStartCommand,
		"stoppromo":  r.handleStopPromoCommand,
		"startpromo": r.handleStartPromoCommand,
		"lang":       r.handleLangCommand,
		"links":      r.handleLinksCommand,
		"help":       r.handleHelpCommand,

		"relay": r.adminOnly(r.handleRelayCommand),
	}
}

func (r *RealTelegramBotAdapter) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if _, isAdmin := r.adminIDsMap[message.From.ID]; !isAdmin {
			metrics.IncAdminRequest("/"+message.Command(), "unauthorized")
			return r.SendMessage(ctx, message.Chat.ID, r.facade.Text(ctx, message.Chat.ID, "unauthorized"))
		}
		metrics.IncAdminRequest("/"+message.Command(), "authorized")
		return next(ctx, message)
	}
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	text, err := r.facade.HandleStart(ctx, chatID, message.From.UserName, message.From.LanguageCode)
	if err != nil {
		return r.SendMessage(ctx, chatID, text)
	}
	metrics.IncRecipientsRegistered()

	rows := [][]adapter.InlineButton{
		{{Text: r.facade.Text(ctx, chatID, "btn_language"), Data: "cmd:lang"}},
		{{Text: r.facade.Text(ctx, chatID, "btn_stop_promo"), Data: "promo:stop"}},
	}
	return r.SendButtons(ctx, chatID, text, rows)
}

func (r *RealTelegramBotAdapter) handleStopPromoCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, _ := r.facade.HandleStopPromo(ctx, message.Chat.ID)
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleStartPromoCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, _ := r.facade.HandleStartPromo(ctx, message.Chat.ID)
	return r.SendMessage(ctx, message.Chat.ID, text)
}

// handleLangCommand sets the language directly with "/lang fr", otherwise shows the menu.
func (r *RealTelegramBotAdapter) handleLangCommand(ctx context.Context, message *tgbotapi.Message) error {
	if code := strings.TrimSpace(message.CommandArguments()); code != "" {
		text, _ := r.facade.HandleSetLanguage(ctx, message.Chat.ID, code)
		return r.SendMessage(ctx, message.Chat.ID, text)
	}
	return r.sendLanguageMenu(ctx, message.Chat.ID)
}

func (r *RealTelegramBotAdapter) handleLinksCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, _ := r.facade.HandleLinks(ctx, message.Chat.ID)
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.Text(ctx, message.Chat.ID, "help"))
}

// handleRelayCommand forwards "/relay <text>" to every registered group.
func (r *RealTelegramBotAdapter) handleRelayCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.CommandArguments())
	if text == "" {
		return r.SendMessage(ctx, chatID, "Usage: /relay <message>")
	}
	if r.facade.RelayUC == nil {
		return r.SendMessage(ctx, chatID, r.facade.GenericError(ctx, chatID))
	}
	res := r.facade.RelayUC.NotifyGroups(ctx, text)
	metrics.ObserveGroupRelay(res.Delivered, res.Removed, res.Failed)
	return r.SendMessage(ctx, chatID, relaySummary(res.Groups, res.Delivered, res.Removed, res.Failed))
}

func (r *RealTelegramBotAdapter) sendLanguageMenu(ctx context.Context, chatID int64) error {
	prompt, opts := r.facade.LanguageMenu(ctx, chatID)
	rows := make([][]adapter.InlineButton, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, []adapter.InlineButton{{Text: o.Label, Data: "lang:" + string(o.Code)}})
	}
	return r.SendButtons(ctx, chatID, prompt, rows)
}
