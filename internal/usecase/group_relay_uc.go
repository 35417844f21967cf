package usecase

import (
	"context"
	"fmt"
	"html"
	"path"
	"strings"
	"time"

	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/adapter"
	"nomadlybot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

var _ GroupRelayUseCase = (*groupRelayUC)(nil)

// RelayResult summarizes one relay over the registered groups.
type RelayResult struct {
	Groups    int `json:"groups"`
	Delivered int `json:"delivered"`
	Removed   int `json:"removed"`
	Failed    int `json:"failed"`
}

type GroupRelayUseCase interface {
	// NotifyGroups signs message and sends it to every registered group in turn.
	// Groups the bot lost access to are unregistered.
	NotifyGroups(ctx context.Context, message string) RelayResult
	HandleMembership(ctx context.Context, ev model.MembershipEvent) error

	NotifyNewUser(ctx context.Context, name string) RelayResult
	NotifySubscription(ctx context.Context, name, plan string) RelayResult
	NotifyDomainPurchased(ctx context.Context, name, domain string) RelayResult
	NotifyWalletFunded(ctx context.Context, name string, amount float64, currency string) RelayResult
	NotifyLinkShortened(ctx context.Context, name string) RelayResult
	NotifyLeadsPurchased(ctx context.Context, name string, count int) RelayResult
}

type groupRelayUC struct {
	groups       repository.GroupRepository
	transport    adapter.Transport
	botName      string
	sendTimeout  time.Duration
	storeTimeout time.Duration
	now          func() time.Time
	log          *zerolog.Logger
}

func NewGroupRelayUseCase(groups repository.GroupRepository, transport adapter.Transport, botName string, sendTimeout, storeTimeout time.Duration, logger *zerolog.Logger) *groupRelayUC {
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &groupRelayUC{
		groups:       groups,
		transport:    transport,
		botName:      botName,
		sendTimeout:  sendTimeout,
		storeTimeout: storeTimeout,
		now:          time.Now,
		log:          logger,
	}
}

func (uc *groupRelayUC) NotifyGroups(ctx context.Context, message string) RelayResult {
	var res RelayResult
	listCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	groups, err := uc.groups.ListAll(listCtx, repository.NoTX)
	cancel()
	if err != nil {
		uc.log.Error().Err(err).Msg("failed to list registered groups")
		return res
	}
	res.Groups = len(groups)
	tagged := message + "\n— <b>" + html.EscapeString(uc.botName) + "</b>"

	for _, g := range groups {
		sendCtx, cancel := context.WithTimeout(ctx, uc.sendTimeout)
		err := uc.transport.SendText(sendCtx, g.ChatID, tagged, adapter.SendOptions{HTML: true})
		cancel()
		if err == nil {
			res.Delivered++
			continue
		}
		if IsGroupAccessLost(err) {
			delCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
			derr := uc.groups.Delete(delCtx, repository.NoTX, g.ChatID)
			cancel()
			if derr != nil {
				uc.log.Error().Err(derr).Int64("chat_id", g.ChatID).Msg("failed to unregister group")
			} else {
				res.Removed++
			}
			uc.log.Info().Err(err).Int64("chat_id", g.ChatID).Msg("bot lost access to group; unregistered")
			continue
		}
		res.Failed++
		uc.log.Warn().Err(err).Int64("chat_id", g.ChatID).Msg("group notification failed")
	}
	return res
}

func (uc *groupRelayUC) HandleMembership(ctx context.Context, ev model.MembershipEvent) error {
	if !ev.IsGroupChat() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()
	switch {
	case ev.Joined():
		uc.log.Info().Int64("chat_id", ev.ChatID).Str("title", ev.Title).Msg("group registered")
		return uc.groups.Upsert(ctx, repository.NoTX, &model.RegisteredGroup{
			ChatID:       ev.ChatID,
			Title:        ev.Title,
			RegisteredAt: uc.now().UTC(),
		})
	case ev.Removed():
		uc.log.Info().Int64("chat_id", ev.ChatID).Msg("group unregistered")
		return uc.groups.Delete(ctx, repository.NoTX, ev.ChatID)
	}
	return nil
}

// MaskName hides most of a user's name: "Alice" -> "Al***". The result is HTML-escaped.
func MaskName(name string) string {
	r := []rune(strings.TrimSpace(name))
	switch {
	case len(r) == 0:
		return "User***"
	case len(r) <= 2:
		return html.EscapeString(string(r)) + "***"
	default:
		return html.EscapeString(string(r[:2])) + "***"
	}
}

func (uc *groupRelayUC) NotifyNewUser(ctx context.Context, name string) RelayResult {
	return uc.NotifyGroups(ctx, fmt.Sprintf("<b>New User Joined!</b>\n%s just signed up on %s", MaskName(name), html.EscapeString(uc.botName)))
}

func (uc *groupRelayUC) NotifySubscription(ctx context.Context, name, plan string) RelayResult {
	return uc.NotifyGroups(ctx, fmt.Sprintf("<b>New Subscription!</b>\n%s subscribed to the %s plan", MaskName(name), html.EscapeString(plan)))
}

// NotifyDomainPurchased only reveals the extension of the purchased domain.
func (uc *groupRelayUC) NotifyDomainPurchased(ctx context.Context, name, domain string) RelayResult {
	ext := path.Ext(strings.ToLower(strings.TrimSpace(domain)))
	if ext == "" {
		ext = "new"
	}
	return uc.NotifyGroups(ctx, fmt.Sprintf("<b>Domain Purchased!</b>\n%s just registered a %s domain", MaskName(name), html.EscapeString(ext)))
}

func (uc *groupRelayUC) NotifyWalletFunded(ctx context.Context, name string, amount float64, currency string) RelayResult {
	return uc.NotifyGroups(ctx, fmt.Sprintf("<b>Wallet Funded!</b>\n%s topped up %.2f %s", MaskName(name), amount, html.EscapeString(strings.ToUpper(currency))))
}

func (uc *groupRelayUC) NotifyLinkShortened(ctx context.Context, name string) RelayResult {
	return uc.NotifyGroups(ctx, fmt.Sprintf("<b>Link Shortened!</b>\n%s just created a branded short link", MaskName(name)))
}

func (uc *groupRelayUC) NotifyLeadsPurchased(ctx context.Context, name string, count int) RelayResult {
	return uc.NotifyGroups(ctx, fmt.Sprintf("<b>Leads Purchased!</b>\n%s bought %d phone leads", MaskName(name), count))
}
