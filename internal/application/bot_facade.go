package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/usecase"
)

// BotFacade composes usecases into high-level bot commands.
// Facade methods return localized strings so the Telegram adapter just forwards them to the chat.
type BotFacade struct {
	RecipientUC usecase.RecipientUseCase
	OptOutUC    usecase.OptOutUseCase
	FreeLinksUC usecase.FreeLinksUseCase
	RelayUC     usecase.GroupRelayUseCase

	tr      Translator
	botName string
	log     *zerolog.Logger
}

// NewBotFacade constructs a facade from provided usecases. FreeLinksUC and
// RelayUC may be nil; the commands using them then report a generic error.
func NewBotFacade(
	recipientUC usecase.RecipientUseCase,
	optOutUC usecase.OptOutUseCase,
	freeLinksUC usecase.FreeLinksUseCase,
	relayUC usecase.GroupRelayUseCase,
	tr Translator,
	botName string,
	logger *zerolog.Logger,
) *BotFacade {
	compLog := logger.With().Str("component", "BotFacade").Logger()
	return &BotFacade{
		RecipientUC: recipientUC,
		OptOutUC:    optOutUC,
		FreeLinksUC: freeLinksUC,
		RelayUC:     relayUC,
		tr:          tr,
		botName:     botName,
		log:         &compLog,
	}
}

var languageLabels = map[model.Language]string{
	"en": "English",
	"fr": "Français",
	"zh": "中文",
	"hi": "हिन्दी",
}

// HandleStart registers the chat (clearing any opt-out) and returns the welcome text.
// A first-time user is announced to the registered groups.
func (b *BotFacade) HandleStart(ctx context.Context, chatID int64, username, langCode string) (string, error) {
	r, created, err := b.RecipientUC.Register(ctx, chatID, username, langCode)
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("registration failed")
		return b.tr.T(model.DefaultLanguage, "generic_error"), err
	}
	if created && b.RelayUC != nil {
		res := b.RelayUC.NotifyNewUser(ctx, username)
		b.log.Debug().Int64("chat_id", chatID).Int("delivered", res.Delivered).Msg("new user announced")
	}
	return b.tr.T(r.Language, "start_welcome", b.botName), nil
}

// HandleStopPromo opts the chat out of promotional broadcasts.
func (b *BotFacade) HandleStopPromo(ctx context.Context, chatID int64) (string, error) {
	return b.togglePromo(ctx, chatID, true, "promo_stopped")
}

// HandleStartPromo opts the chat back in.
func (b *BotFacade) HandleStartPromo(ctx context.Context, chatID int64) (string, error) {
	return b.togglePromo(ctx, chatID, false, "promo_started")
}

func (b *BotFacade) togglePromo(ctx context.Context, chatID int64, optOut bool, key string) (string, error) {
	lang := b.RecipientUC.Language(ctx, chatID)
	if err := b.OptOutUC.SetOptedOut(ctx, chatID, optOut); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Bool("opted_out", optOut).Msg("opt-out update failed")
		return b.tr.T(lang, "generic_error"), err
	}
	return b.tr.T(lang, key), nil
}

// LanguageMenu returns the prompt and the supported languages in configured order.
func (b *BotFacade) LanguageMenu(ctx context.Context, chatID int64) (string, []LanguageOption) {
	lang := b.RecipientUC.Language(ctx, chatID)
	supported := b.RecipientUC.Supported()
	opts := make([]LanguageOption, 0, len(supported))
	for _, l := range supported {
		label := languageLabels[l]
		if label == "" {
			label = string(l)
		}
		opts = append(opts, LanguageOption{Code: l, Label: label})
	}
	return b.tr.T(lang, "lang_prompt"), opts
}

// HandleSetLanguage stores the preference and confirms in the new language.
func (b *BotFacade) HandleSetLanguage(ctx context.Context, chatID int64, code string) (string, error) {
	err := b.RecipientUC.SetLanguage(ctx, chatID, code)
	switch {
	case errors.Is(err, domain.ErrUnsupportedLanguage):
		return b.tr.T(b.RecipientUC.Language(ctx, chatID), "lang_unsupported"), nil
	case err != nil:
		b.log.Error().Err(err).Int64("chat_id", chatID).Str("code", code).Msg("language update failed")
		return b.tr.T(model.DefaultLanguage, "generic_error"), err
	}
	return b.tr.T(b.RecipientUC.Language(ctx, chatID), "lang_set"), nil
}

// HandleLinks reports the free short links left to the chat.
func (b *BotFacade) HandleLinks(ctx context.Context, chatID int64) (string, error) {
	lang := b.RecipientUC.Language(ctx, chatID)
	if b.FreeLinksUC == nil {
		return b.tr.T(lang, "generic_error"), fmt.Errorf("free links usecase not available")
	}
	n, err := b.FreeLinksUC.Remaining(ctx, chatID)
	if err != nil {
		return b.tr.T(lang, "generic_error"), err
	}
	return b.RemainingMessage(lang, n), nil
}

// RemainingMessage renders the free-link counter with the right plural form.
func (b *BotFacade) RemainingMessage(lang model.Language, n int) string {
	return b.tr.Plural(lang, "links_remaining", n)
}

// HandleMembership forwards a bot membership change to the group registry.
func (b *BotFacade) HandleMembership(ctx context.Context, ev model.MembershipEvent) error {
	if b.RelayUC == nil {
		return nil
	}
	return b.RelayUC.HandleMembership(ctx, ev)
}

// RateLimited returns the localized throttle reply.
func (b *BotFacade) RateLimited(ctx context.Context, chatID int64) string {
	return b.tr.T(b.RecipientUC.Language(ctx, chatID), "rate_limited")
}

// GenericError returns the localized failure reply.
func (b *BotFacade) GenericError(ctx context.Context, chatID int64) string {
	return b.tr.T(b.RecipientUC.Language(ctx, chatID), "generic_error")
}

// Text returns the localized string key for the chat's language.
func (b *BotFacade) Text(ctx context.Context, chatID int64, key string) string {
	return b.tr.T(b.RecipientUC.Language(ctx, chatID), key)
}
