package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"nomadlybot/internal/application"
	"nomadlybot/internal/config"
	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/adapter"
	"nomadlybot/internal/infra/metrics"
	red "nomadlybot/internal/infra/redis"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// botAPI is the subset of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// RealTelegramBotAdapter uses tgbotapi to send messages, poll updates and
// delegate commands to the BotFacade.
type RealTelegramBotAdapter struct {
	bot         botAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	limiter     *rate.Limiter

	adminIDsMap   map[int64]struct{}
	updateWorkers int
	cancelPolling context.CancelFunc
	log           *zerolog.Logger
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, rateLimiter *red.RateLimiter, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return newAdapter(bot, cfg, rateLimiter, logger), nil
}

func newAdapter(bot botAPI, cfg *config.BotConfig, rateLimiter *red.RateLimiter, logger *zerolog.Logger) *RealTelegramBotAdapter {
	compLog := logger.With().Str("component", "TelegramBot").Logger()
	adminMap := map[int64]struct{}{}
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	burst := cfg.SendBurst
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if cfg.SendRatePerSec > 0 {
		limit = rate.Limit(cfg.SendRatePerSec)
	}
	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		rateLimiter:   rateLimiter,
		limiter:       rate.NewLimiter(limit, burst),
		adminIDsMap:   adminMap,
		updateWorkers: workers,
		log:           &compLog,
	}
}

// AttachFacade must be called before StartPolling. The facade depends on the
// adapter as its transport, so it cannot be a constructor argument.
func (r *RealTelegramBotAdapter) AttachFacade(f *application.BotFacade) {
	r.facade = f
}

// ---------------- outbound ----------------

func (r *RealTelegramBotAdapter) SendText(ctx context.Context, chatID int64, text string, opts adapter.SendOptions) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if opts.HTML {
		msg.ParseMode = tgbotapi.ModeHTML
	}
	msg.DisableWebPagePreview = opts.DisableLinkPreview
	return r.send(ctx, "sendMessage", msg)
}

func (r *RealTelegramBotAdapter) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, opts adapter.SendOptions) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(photoURL))
	photo.Caption = caption
	if opts.HTML {
		photo.ParseMode = tgbotapi.ModeHTML
	}
	return r.send(ctx, "sendPhoto", photo)
}

func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	var kbRows [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kr := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				kr = append(kr, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				kr = append(kr, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				// safe fallback: use text as callback data
				kr = append(kr, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, kr)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if len(kbRows) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	}
	return r.send(ctx, "sendMessage", msg)
}

// SendMessage is the plain-text shortcut used by command replies.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	return r.SendText(ctx, chatID, text, adapter.SendOptions{})
}

// send waits for the global send budget, then performs the call. The Bot API
// client has no context support, so a cancelled ctx abandons the wait for the
// response but not the request itself.
func (r *RealTelegramBotAdapter) send(ctx context.Context, method string, c tgbotapi.Chattable) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	type result struct{ err error }
	done := make(chan result, 1)
	go func() {
		_, err := r.bot.Send(c)
		done <- result{err: err}
	}()

	select {
	case <-ctx.Done():
		metrics.IncTelegramSend(method, "timeout")
		return ctx.Err()
	case res := <-done:
		if res.err != nil {
			terr := toTransportError(res.err)
			status := "network"
			if terr.Code != 0 {
				status = strconv.Itoa(terr.Code)
			}
			metrics.IncTelegramSend(method, status)
			return terr
		}
		metrics.IncTelegramSend(method, "200")
		return nil
	}
}

// toTransportError maps tgbotapi failures onto the transport error port.
// Network failures carry no status code.
func toTransportError(err error) *adapter.TransportError {
	if apiErr, ok := err.(tgbotapi.Error); ok {
		return &adapter.TransportError{Code: apiErr.Code, Description: apiErr.Message, RetryAfter: apiErr.ResponseParameters.RetryAfter}
	}
	if apiErrPtr, ok := err.(*tgbotapi.Error); ok {
		return &adapter.TransportError{Code: apiErrPtr.Code, Description: apiErrPtr.Message, RetryAfter: apiErrPtr.ResponseParameters.RetryAfter}
	}
	return &adapter.TransportError{Description: err.Error()}
}

// ---------------- inbound ----------------

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.facade == nil {
		return errors.New("bot facade is nil")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query", "my_chat_member"}
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Int("update_id", up.UpdateID).Msg("update handling failed")
					}
				}
			}
		}(i)
	}
	r.log.Info().Int("workers", r.updateWorkers).Msg("polling started")

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			wg.Wait()
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				cancel()
				wg.Wait()
				return nil
			}
			select {
			case updateChan <- up:
			case <-ctx.Done():
			}
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) (err error) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error().Interface("panic", p).Int("update_id", update.UpdateID).Msg("update handler panicked")
			err = nil
		}
	}()

	switch {
	case update.MyChatMember != nil:
		return r.handleMembership(ctx, update.MyChatMember)
	case update.CallbackQuery != nil:
		return r.handleQuery(ctx, update.CallbackQuery)
	case update.Message != nil:
		return r.handleMessage(ctx, update.Message)
	}
	return nil
}

func (r *RealTelegramBotAdapter) handleMembership(ctx context.Context, m *tgbotapi.ChatMemberUpdated) error {
	ev := model.MembershipEvent{
		ChatID:    m.Chat.ID,
		ChatType:  m.Chat.Type,
		Title:     m.Chat.Title,
		NewStatus: m.NewChatMember.Status,
	}
	return r.facade.HandleMembership(ctx, ev)
}

func (r *RealTelegramBotAdapter) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if message.From == nil || message.Chat == nil || !message.Chat.IsPrivate() || !message.IsCommand() {
		return nil
	}
	command := strings.ToLower(message.Command())
	metrics.IncTelegramCommand("/" + command)

	if !r.allow(ctx, message.Chat.ID, message.From.ID, "/"+command, 20) {
		return r.SendMessage(ctx, message.Chat.ID, r.facade.RateLimited(ctx, message.Chat.ID))
	}

	if fn, ok := r.commandRoutes()[command]; ok {
		return fn(ctx, message)
	}
	return r.SendMessage(ctx, message.Chat.ID, r.facade.Text(ctx, message.Chat.ID, "help"))
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	// Stop telegram spinner when we return
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	var chatID int64
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	} else {
		chatID = query.From.ID
	}
	if chatID == 0 {
		return nil
	}

	data := strings.TrimSpace(query.Data)
	if !r.allow(ctx, chatID, query.From.ID, "cb:"+data, 30) {
		return r.SendMessage(ctx, chatID, r.facade.RateLimited(ctx, chatID))
	}

	if fn, ok := r.cbRoutes()[data]; ok {
		return fn(ctx, chatID, data)
	}
	for _, pr := range r.cbPrefixRoutes() {
		if strings.HasPrefix(data, pr.Prefix) {
			return pr.Fn(ctx, chatID, data)
		}
	}
	return errors.New("unknown callback data")
}

// allow applies the per-user Redis window. Limiter failures let the request through.
func (r *RealTelegramBotAdapter) allow(ctx context.Context, chatID, userID int64, key string, limit int) bool {
	if r.rateLimiter == nil {
		return true
	}
	if _, isAdmin := r.adminIDsMap[userID]; isAdmin {
		return true
	}
	allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(userID, key), limit, rateWindow)
	if err != nil {
		r.log.Warn().Err(err).Int64("chat_id", chatID).Msg("rate limiter unavailable")
		return true
	}
	if !allowed {
		metrics.IncRateLimitTriggered()
	}
	return allowed
}
