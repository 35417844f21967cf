package sched

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"nomadlybot/internal/domain/ports/repository"
	"nomadlybot/internal/infra/metrics"
)

// StatsWorker periodically publishes gauges that no request path updates.
type StatsWorker struct {
	interval time.Duration
	pool     *pgxpool.Pool
	groups   repository.GroupRepository
	log      *zerolog.Logger
}

func NewStatsWorker(interval time.Duration, pool *pgxpool.Pool, groups repository.GroupRepository, logger *zerolog.Logger) *StatsWorker {
	compLog := logger.With().Str("component", "StatsWorker").Logger()
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StatsWorker{
		interval: interval,
		pool:     pool,
		groups:   groups,
		log:      &compLog,
	}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting stats worker")
	// Run once on startup, then on every tick
	w.collect(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stats worker")
			return ctx.Err()
		case <-ticker.C:
			w.collect(ctx)
		}
	}
}

func (w *StatsWorker) collect(ctx context.Context) {
	if w.pool != nil {
		s := w.pool.Stat()
		metrics.SetDBPoolStats(s.TotalConns(), s.IdleConns(), s.AcquiredConns())
	}
	if w.groups == nil {
		return
	}
	groups, err := w.groups.ListAll(ctx, repository.NoTX)
	if err != nil {
		w.log.Error().Err(err).Msg("group count failed")
		return
	}
	metrics.SetRegisteredGroups(len(groups))
}
