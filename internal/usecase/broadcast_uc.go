package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/adapter"
	"nomadlybot/internal/domain/ports/repository"
	"nomadlybot/internal/markup"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// PromoCatalog is the static variant lookup used when generation is unavailable.
type PromoCatalog interface {
	Variant(lang model.Language, theme model.Theme, index int) string
	Supports(lang model.Language) bool
}

type BroadcastUseCase interface {
	// Broadcast runs one promo for (theme, lang). It never returns an error;
	// failures are logged and reflected in the returned record.
	Broadcast(ctx context.Context, theme model.Theme, lang model.Language) model.BroadcastRun
	RecentRuns(ctx context.Context, limit int) ([]*model.BroadcastRun, error)
}

// BroadcastOptions tunes pacing and timeouts of a run.
type BroadcastOptions struct {
	BatchSize       int
	MessageDelay    time.Duration
	BatchDelay      time.Duration
	SendTimeout     time.Duration
	StoreTimeout    time.Duration
	GenerateTimeout time.Duration
	SilentFallback  bool
	RunLockTTL      time.Duration
	Banners         map[model.Theme]string
}

// BroadcastDeps are the collaborators of the broadcast engine.
// Alerter and Locker may be nil.
type BroadcastDeps struct {
	Recipients repository.RecipientRepository
	Runs       repository.BroadcastRunRepository
	Rotation   RotationUseCase
	OptOut     OptOutUseCase
	Catalog    PromoCatalog
	Generator  adapter.PromoGenerator
	Transport  adapter.Transport
	Alerter    adapter.AdminAlerter
	Locker     adapter.Locker
}

var _ BroadcastUseCase = (*broadcastUC)(nil)

type broadcastUC struct {
	deps BroadcastDeps
	opts BroadcastOptions
	now  func() time.Time
	log  *zerolog.Logger
}

func NewBroadcastUseCase(deps BroadcastDeps, opts BroadcastOptions, logger *zerolog.Logger) *broadcastUC {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 25
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 15 * time.Second
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 30 * time.Second
	}
	if deps.Generator == nil {
		deps.Generator = NewNoopPromoGenerator()
	}
	return &broadcastUC{deps: deps, opts: opts, now: time.Now, log: logger}
}

type outcome int

const (
	outcomeSent outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (uc *broadcastUC) Broadcast(ctx context.Context, theme model.Theme, lang model.Language) (run model.BroadcastRun) {
	run = *model.NewBroadcastRun(theme, lang, uc.now().UTC())
	log := uc.log.With().Str("run_id", run.ID).Str("theme", string(theme)).Str("lang", string(lang)).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("broadcast aborted by panic")
		}
	}()

	if uc.deps.Locker != nil && uc.opts.RunLockTTL > 0 {
		lockKey := "promo:run:" + model.RotationKey(theme, lang)
		token, err := uc.deps.Locker.TryLock(ctx, lockKey, uc.opts.RunLockTTL)
		switch {
		case errors.Is(err, domain.ErrLockHeld):
			log.Warn().Msg("another run of this promo is in progress; skipping")
			return run
		case err != nil:
			log.Warn().Err(err).Msg("run lock unavailable; continuing unlocked")
		default:
			defer func() {
				unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.opts.StoreTimeout)
				defer cancel()
				if err := uc.deps.Locker.Unlock(unlockCtx, lockKey, token); err != nil {
					log.Warn().Err(err).Msg("run lock release failed")
				}
			}()
		}
	}

	rotCtx, cancelRot := context.WithTimeout(ctx, uc.opts.StoreTimeout)
	idx, err := uc.deps.Rotation.NextVariation(rotCtx, theme, lang)
	cancelRot()
	if err != nil {
		log.Warn().Err(err).Int("variation", idx+1).Msg("rotation degraded")
	}

	targets, err := uc.targets(ctx, lang)
	if err != nil {
		log.Error().Err(err).Msg("recipient directory read failed; run aborted")
		return run
	}
	if len(targets) == 0 {
		log.Info().Msg("no recipients for this language; nothing to send")
		return run
	}
	run.Total = len(targets)

	text, usedAI := uc.content(ctx, theme, lang, idx, &log)
	run.UsedAI = usedAI
	run.Variation = model.VariationLabel(usedAI, idx)

	log.Info().Int("recipients", run.Total).Str("variation", run.Variation).Msg("broadcast started")

	var sent, failed, skipped atomic.Int64
	for start := 0; start < len(targets); start += uc.opts.BatchSize {
		end := min(start+uc.opts.BatchSize, len(targets))

		var g errgroup.Group
		for i, chatID := range targets[start:end] {
			g.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						log.Error().Interface("panic", r).Int64("chat_id", chatID).Msg("send task panicked")
						failed.Add(1)
					}
				}()
				if !sleepCtx(ctx, time.Duration(i)*uc.opts.MessageDelay) {
					failed.Add(1)
					return nil
				}
				switch uc.deliver(ctx, chatID, theme, text, &log) {
				case outcomeSent:
					sent.Add(1)
				case outcomeSkipped:
					skipped.Add(1)
				default:
					failed.Add(1)
				}
				return nil
			})
		}
		_ = g.Wait()

		if end < len(targets) {
			sleepCtx(ctx, uc.opts.BatchDelay)
		}
	}

	run.Success = int(sent.Load())
	run.Errors = int(failed.Load())
	run.Skipped = int(skipped.Load())
	run.CompletedAt = uc.now().UTC()

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.opts.StoreTimeout)
	defer cancel()
	if err := uc.deps.Runs.Save(storeCtx, repository.NoTX, &run); err != nil {
		log.Error().Err(err).Msg("failed to persist broadcast run")
	}

	log.Info().
		Int("total", run.Total).
		Int("success", run.Success).
		Int("errors", run.Errors).
		Int("skipped", run.Skipped).
		Dur("duration", run.Duration()).
		Msg("broadcast finished")
	return run
}

// targets returns the de-duplicated private chat ids whose resolved language is lang.
func (uc *broadcastUC) targets(ctx context.Context, lang model.Language) ([]int64, error) {
	readCtx, cancel := context.WithTimeout(ctx, uc.opts.StoreTimeout)
	defer cancel()

	all, err := uc.deps.Recipients.ListAll(readCtx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]struct{}, len(all))
	out := make([]int64, 0, len(all))
	for _, r := range all {
		if r == nil || r.ChatID <= 0 {
			continue
		}
		rl := r.Language
		if !uc.deps.Catalog.Supports(rl) {
			rl = model.DefaultLanguage
		}
		if rl != lang {
			continue
		}
		if _, dup := seen[r.ChatID]; dup {
			continue
		}
		seen[r.ChatID] = struct{}{}
		out = append(out, r.ChatID)
	}
	return out, nil
}

func (uc *broadcastUC) content(ctx context.Context, theme model.Theme, lang model.Language, idx int, log *zerolog.Logger) (string, bool) {
	genCtx, cancel := context.WithTimeout(ctx, uc.opts.GenerateTimeout)
	defer cancel()

	text, err := uc.deps.Generator.Generate(genCtx, theme, lang)
	if err == nil && text != "" {
		return text, true
	}
	static := uc.deps.Catalog.Variant(lang, theme, idx)
	if errors.Is(err, domain.ErrGeneratorDisabled) {
		return static, false
	}
	if err == nil {
		err = domain.ErrEmptyGeneration
	}
	log.Warn().Err(err).Msg("promo generation failed; using static variant")
	if uc.deps.Alerter != nil && !uc.opts.SilentFallback {
		alertCtx, cancelAlert := context.WithTimeout(ctx, uc.opts.SendTimeout)
		defer cancelAlert()
		uc.deps.Alerter.Alert(alertCtx, fmt.Sprintf("Promo generation failed for %s/%s. Using static fallback. Check the AI provider key.", theme, lang))
	}
	return static, false
}

func (uc *broadcastUC) deliver(ctx context.Context, chatID int64, theme model.Theme, text string, log *zerolog.Logger) outcome {
	optCtx, cancel := context.WithTimeout(ctx, uc.opts.StoreTimeout)
	optedOut, err := uc.deps.OptOut.IsOptedOut(optCtx, chatID)
	cancel()
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("opt-out lookup failed; sending anyway")
	}
	if optedOut {
		return outcomeSkipped
	}

	err = uc.send(ctx, chatID, theme, text)
	if err == nil {
		return outcomeSent
	}

	class := ClassifyDeliveryError(err)
	ev := log.Warn().Err(err).Int64("chat_id", chatID).Int("status", adapter.StatusCode(err)).Str("class", class.String())
	switch class {
	case FailureUnreachable:
		setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.opts.StoreTimeout)
		defer cancel()
		if serr := uc.deps.OptOut.SetOptedOut(setCtx, chatID, true); serr != nil {
			log.Error().Err(serr).Int64("chat_id", chatID).Msg("failed to opt out unreachable recipient")
		}
		ev.Msg("recipient unreachable; opted out")
	case FailureRateLimited:
		ev.Int("retry_after", retryAfter(err)).Msg("rate limited")
	default:
		ev.Msg("promo delivery failed")
	}
	return outcomeFailed
}

// send tries the banner photo first and falls back to a text message on any
// photo failure. A caption rejected for its markup is retried once as plain
// text before giving up on the photo.
func (uc *broadcastUC) send(ctx context.Context, chatID int64, theme model.Theme, text string) error {
	if banner := uc.opts.Banners[theme]; banner != "" {
		photoCtx, cancel := context.WithTimeout(ctx, uc.opts.SendTimeout)
		err := uc.deps.Transport.SendPhoto(photoCtx, chatID, banner, text, adapter.SendOptions{HTML: true})
		cancel()
		if err == nil {
			return nil
		}
		if ClassifyDeliveryError(err) == FailureMarkupRejected {
			retryCtx, cancel := context.WithTimeout(ctx, uc.opts.SendTimeout)
			err = uc.deps.Transport.SendPhoto(retryCtx, chatID, banner, markup.PlainText(text), adapter.SendOptions{})
			cancel()
			if err == nil {
				return nil
			}
		}
	}
	return uc.sendText(ctx, chatID, text)
}

// sendText retries once without a parse mode when the markup is rejected.
func (uc *broadcastUC) sendText(ctx context.Context, chatID int64, text string) error {
	sendCtx, cancel := context.WithTimeout(ctx, uc.opts.SendTimeout)
	err := uc.deps.Transport.SendText(sendCtx, chatID, text, adapter.SendOptions{HTML: true, DisableLinkPreview: true})
	cancel()
	if err == nil || ClassifyDeliveryError(err) != FailureMarkupRejected {
		return err
	}

	retryCtx, cancel := context.WithTimeout(ctx, uc.opts.SendTimeout)
	defer cancel()
	return uc.deps.Transport.SendText(retryCtx, chatID, markup.PlainText(text), adapter.SendOptions{DisableLinkPreview: true})
}

func (uc *broadcastUC) RecentRuns(ctx context.Context, limit int) ([]*model.BroadcastRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.deps.Runs.ListRecent(ctx, repository.NoTX, limit)
}

// sleepCtx waits for d or until ctx is done; it reports whether the full wait elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
