// File: internal/infra/sched/cron.go
package sched

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"nomadlybot/internal/domain/ports/adapter"
	"nomadlybot/internal/infra/metrics"
)

var _ adapter.JobScheduler = (*CronScheduler)(nil)

// CronScheduler runs named jobs on five-field cron expressions in UTC.
// A job never overlaps with itself; a tick that lands during a run is skipped.
type CronScheduler struct {
	s      gocron.Scheduler
	ctx    context.Context
	cancel context.CancelFunc
	log    *zerolog.Logger

	mu      sync.Mutex
	started bool
}

func NewCronScheduler(logger *zerolog.Logger) (*CronScheduler, error) {
	compLog := logger.With().Str("component", "CronScheduler").Logger()
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(&gocronLogAdapter{log: &compLog}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CronScheduler{s: s, ctx: ctx, cancel: cancel, log: &compLog}, nil
}

func (c *CronScheduler) Register(name, cronExpr string, fn func(ctx context.Context)) (adapter.JobHandle, error) {
	if name == "" {
		return nil, errors.New("empty job name")
	}
	if cronExpr == "" {
		return nil, errors.New("empty cron expression")
	}
	if fn == nil {
		return nil, errors.New("nil job function")
	}

	task := func() {
		start := time.Now()
		status := "completed"
		defer func() {
			if r := recover(); r != nil {
				status = "failed"
				c.log.Error().Interface("panic", r).Str("job", name).Msg("scheduled job panicked")
			}
			d := time.Since(start)
			metrics.ObserveJob(name, status, d)
			if d > 5*time.Minute {
				c.log.Warn().Str("job", name).Dur("duration", d).Msg("slow scheduled job execution")
			}
		}()
		fn(c.ctx)
	}

	job, err := c.s.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	return &cronJob{job: job, s: c.s}, nil
}

func (c *CronScheduler) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	c.s.Start()
	c.log.Info().Int("jobs", len(c.s.Jobs())).Msg("scheduler started")
}

// Stop cancels the context handed to running jobs and waits for them to return.
func (c *CronScheduler) Stop() error {
	c.cancel()
	if err := c.s.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	c.log.Info().Msg("scheduler stopped")
	return nil
}

type cronJob struct {
	job gocron.Job
	s   gocron.Scheduler
}

func (j *cronJob) Name() string { return j.job.Name() }
func (j *cronJob) NextRun() (time.Time, error) { return j.job.NextRun() }
func (j *cronJob) Cancel() error { return j.s.RemoveJob(j.job.ID()) }

// gocronLogAdapter forwards gocron's key/value logging to zerolog.
type gocronLogAdapter struct {
	log *zerolog.Logger
}

func (l *gocronLogAdapter) Debug(msg string, args ...any) { l.emit(l.log.Debug(), msg, args) }
func (l *gocronLogAdapter) Info(msg string, args ...any) { l.emit(l.log.Info(), msg, args) }
func (l *gocronLogAdapter) Warn(msg string, args ...any) { l.emit(l.log.Warn(), msg, args) }
func (l *gocronLogAdapter) Error(msg string, args ...any) { l.emit(l.log.Error(), msg, args) }

func (l *gocronLogAdapter) emit(ev *zerolog.Event, msg string, args []any) {
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			ev = ev.Interface("value", args[i])
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", args[i])
		}
		ev = ev.Interface(key, args[i+1])
	}
	ev.Msg(msg)
}
