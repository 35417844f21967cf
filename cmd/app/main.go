// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"nomadlybot/internal/application"
	"nomadlybot/internal/config"
	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/adapter"
	aiAdapters "nomadlybot/internal/infra/adapters/ai"
	tele "nomadlybot/internal/infra/adapters/telegram"
	pg "nomadlybot/internal/infra/db/postgres"
	"nomadlybot/internal/infra/i18n"
	"nomadlybot/internal/infra/logging"
	"nomadlybot/internal/infra/metrics"
	red "nomadlybot/internal/infra/redis"
	"nomadlybot/internal/infra/sched"
	"nomadlybot/internal/infra/web"
	"nomadlybot/internal/infra/worker"
	"nomadlybot/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, dev token)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit, cfg.Runtime.Environment)
	logger.Info().
		Str("version", version).
		Str("environment", cfg.Runtime.Environment).
		Str("bot_token", logging.Redact(cfg.Bot.Token, cfg.Runtime.Dev)).
		Msg("starting")

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Catalog & translations ----
	langs := make([]model.Language, 0, len(cfg.Promo.Languages))
	for _, code := range cfg.Promo.LanguageCodes() {
		langs = append(langs, model.Language(code))
	}
	catalog, err := i18n.LoadCatalog(i18n.PromosFS, langs)
	if err != nil {
		logger.Fatal().Err(err).Msg("promo catalog")
	}
	bundle, err := i18n.NewBundle(i18n.LocalesFS, langs)
	if err != nil {
		logger.Fatal().Err(err).Msg("translations")
	}

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	recipientRepo := pg.NewRecipientRepo(pool)
	groupRepo := pg.NewGroupRepo(pool)
	rotationRepo := pg.NewRotationRepo(pool)
	runRepo := pg.NewBroadcastRunRepo(pool)
	freeLinkRepo := pg.NewFreeLinkRepo(pool)
	optOutRepo := pg.NewOptOutRepoCacheDecorator(pg.NewOptOutRepo(pool), redisClient, cfg.Redis.TTL, logger)

	// ---- Telegram transport ----
	var transport adapter.TelegramBotAdapter
	var realBot *tele.RealTelegramBotAdapter
	if strings.ToLower(cfg.Bot.Mode) == "noop" {
		transport = tele.NewNoopBotAdapter(logger)
	} else {
		if cfg.Bot.Mode != "polling" {
			logger.Warn().Str("mode", cfg.Bot.Mode).Msg("unknown bot.mode; falling back to polling")
		}
		realBot, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, rateLimiter, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		transport = realBot
	}
	alerter := tele.NewTelegramAlerter(transport, cfg.Bot.AdminChatID, logger)

	// ---- AI ----
	ai, aiEnabled, err := aiAdapters.Build(ctx, cfg.AI, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("ai")
	}
	generator := usecase.NewNoopPromoGenerator()
	if aiEnabled {
		generator = usecase.NewAIPromoGenerator(ai, aiAdapters.NewTiktokenCounter(), usecase.GeneratorOptions{
			Model:       cfg.AI.Model,
			MaxTokens:   cfg.AI.MaxTokens,
			Temperature: cfg.AI.Temperature,
		}, logging.Component(logger, "PromoGenerator"))
	}

	// ---- Use cases ----
	recipientUC := usecase.NewRecipientUseCase(recipientRepo, optOutRepo, txManager, langs, logging.Component(logger, "RecipientUC"))
	optOutUC := usecase.NewOptOutUseCase(optOutRepo)
	rotationUC := usecase.NewRotationUseCase(rotationRepo, logging.Component(logger, "RotationUC"))
	freeLinksUC := usecase.NewFreeLinksUseCase(freeLinkRepo, cfg.FreeLinks.Default)
	relayUC := usecase.NewGroupRelayUseCase(groupRepo, transport, cfg.Bot.Name, cfg.Broadcast.SendTimeout, cfg.Broadcast.StoreTimeout, logging.Component(logger, "GroupRelayUC"))

	banners := make(map[model.Theme]string, len(cfg.Promo.Banners))
	for theme, url := range cfg.Promo.Banners {
		banners[model.Theme(theme)] = url
	}
	broadcastUC := usecase.NewBroadcastUseCase(usecase.BroadcastDeps{
		Recipients: recipientRepo,
		Runs:       runRepo,
		Rotation:   rotationUC,
		OptOut:     optOutUC,
		Catalog:    catalog,
		Generator:  generator,
		Transport:  transport,
		Alerter:    alerter,
		Locker:     locker,
	}, usecase.BroadcastOptions{
		BatchSize:       cfg.Broadcast.BatchSize,
		MessageDelay:    cfg.Broadcast.MessageDelay,
		BatchDelay:      cfg.Broadcast.BatchDelay,
		SendTimeout:     cfg.Broadcast.SendTimeout,
		StoreTimeout:    cfg.Broadcast.StoreTimeout,
		GenerateTimeout: cfg.Broadcast.GenerateTimeout,
		SilentFallback:  cfg.Broadcast.SilentFallback,
		RunLockTTL:      cfg.Broadcast.RunLockTTL,
		Banners:         banners,
	}, logging.Component(logger, "BroadcastUC"))

	// ---- Facade & polling ----
	facade := application.NewBotFacade(recipientUC, optOutUC, freeLinksUC, relayUC, bundle, cfg.Bot.Name, logger)
	if realBot != nil {
		realBot.AttachFacade(facade)
		go func() {
			if err := realBot.StartPolling(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	// ---- Scheduler ----
	cron, err := sched.NewCronScheduler(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler")
	}
	offsets := make([]usecase.LanguageOffset, 0, len(cfg.Promo.Languages))
	for _, l := range cfg.Promo.Languages {
		offsets = append(offsets, usecase.LanguageOffset{Language: model.NormalizeLanguage(l.Code), UTCOffset: l.UTCOffset})
	}
	slots := make([]usecase.PromoSlot, 0, len(cfg.Promo.Slots))
	for _, s := range cfg.Promo.Slots {
		slots = append(slots, usecase.PromoSlot{Theme: model.Theme(s.Theme), Hour: s.Hour, Minute: s.Minute})
	}
	promoScheduler := usecase.NewPromoScheduler(cron, broadcastUC, usecase.BuildPromoSchedule(offsets, slots), logging.Component(logger, "PromoScheduler"))
	promoScheduler.OnRun(observeRun)
	if cfg.Promo.Disabled {
		logger.Warn().Msg("promo.disabled is set; no daily broadcasts scheduled")
	} else if err := promoScheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("promo schedule")
	}

	// ---- Stats worker ----
	statsWorker := sched.NewStatsWorker(time.Minute, pool, groupRepo, logger)
	go func() { _ = statsWorker.Run(ctx) }()

	// ---- Manual broadcast queue ----
	jobs := worker.NewPool(2, 8, logger)
	jobs.Start(ctx)

	// ---- Admin API ----
	srv := web.NewServer(web.Deps{
		Broadcasts:       broadcastUC,
		Relay:            relayUC,
		FreeLinks:        freeLinksUC,
		Queue:            jobs,
		SupportsLanguage: catalog.Supports,
		OnRun:            observeRun,
	}, web.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.APIKey, cfg.Admin.TokenTTL), cfg.Admin.Port, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("admin API stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("admin API shutdown")
	}
	if realBot != nil {
		realBot.StopPolling()
	}
	if err := promoScheduler.Stop(); err != nil {
		logger.Warn().Err(err).Msg("scheduler shutdown")
	}
	cancel()
	jobs.Stop()
	logger.Info().Msg("bye")
}

// observeRun records a finished broadcast, scheduled or manual.
func observeRun(run model.BroadcastRun) {
	metrics.ObserveBroadcastRun(string(run.Theme), string(run.Language), run.UsedAI, run.Success, run.Errors, run.Skipped, run.Duration())
}
