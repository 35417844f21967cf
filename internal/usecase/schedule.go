package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"

	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// LanguageOffset is the audience timezone of a language, in hours from UTC.
type LanguageOffset struct {
	Language  model.Language
	UTCOffset float64
}

// PromoSlot is a local wall-clock time at which a theme is broadcast.
type PromoSlot struct {
	Theme  model.Theme
	Hour   int
	Minute int
}

// ScheduledPromo is one daily (theme, language) job.
type ScheduledPromo struct {
	Theme       model.Theme
	Language    model.Language
	LocalHour   int
	LocalMinute int
	UTCHour     int
	UTCMinute   int
	CronExpr    string
	JobName     string
}

// LocalToUTC converts a local time at offsetHours to UTC, wrapping across midnight.
// Fractional offsets such as 5.5 or -3.5 shift the minutes.
func LocalToUTC(hour, minute int, offsetHours float64) (int, int) {
	whole := math.Floor(offsetHours)
	frac := offsetHours - whole // always in [0,1)

	h := hour - int(whole)
	m := minute - int(math.Round(frac*60))
	for m < 0 {
		m += 60
		h--
	}
	for m >= 60 {
		m -= 60
		h++
	}
	h %= 24
	if h < 0 {
		h += 24
	}
	return h, m
}

// BuildPromoSchedule returns one entry per language and slot, languages outermost.
func BuildPromoSchedule(langs []LanguageOffset, slots []PromoSlot) []ScheduledPromo {
	out := make([]ScheduledPromo, 0, len(langs)*len(slots))
	for _, l := range langs {
		for _, s := range slots {
			h, m := LocalToUTC(s.Hour, s.Minute, l.UTCOffset)
			out = append(out, ScheduledPromo{
				Theme:       s.Theme,
				Language:    l.Language,
				LocalHour:   s.Hour,
				LocalMinute: s.Minute,
				UTCHour:     h,
				UTCMinute:   m,
				CronExpr:    fmt.Sprintf("%d %d * * *", m, h),
				JobName:     fmt.Sprintf("promo:%s:%s", s.Theme, l.Language),
			})
		}
	}
	return out
}

// PromoScheduler registers a daily broadcast job per ScheduledPromo.
type PromoScheduler struct {
	sched     adapter.JobScheduler
	broadcast BroadcastUseCase
	entries   []ScheduledPromo
	observe   func(model.BroadcastRun)
	log       *zerolog.Logger

	mu      sync.Mutex
	handles []adapter.JobHandle
}

func NewPromoScheduler(sched adapter.JobScheduler, broadcast BroadcastUseCase, entries []ScheduledPromo, logger *zerolog.Logger) *PromoScheduler {
	return &PromoScheduler{sched: sched, broadcast: broadcast, entries: entries, log: logger}
}

// OnRun sets a callback invoked with every finished scheduled run.
func (s *PromoScheduler) OnRun(fn func(model.BroadcastRun)) { s.observe = fn }

// Start registers all jobs. On failure, jobs registered so far are cancelled.
func (s *PromoScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		h, err := s.sched.Register(e.JobName, e.CronExpr, s.job(e))
		if err != nil {
			for _, prev := range s.handles {
				_ = prev.Cancel()
			}
			s.handles = nil
			return fmt.Errorf("register %s: %w", e.JobName, err)
		}
		s.handles = append(s.handles, h)
		s.log.Info().
			Str("job", e.JobName).
			Str("local", fmt.Sprintf("%02d:%02d", e.LocalHour, e.LocalMinute)).
			Str("utc", fmt.Sprintf("%02d:%02d", e.UTCHour, e.UTCMinute)).
			Msg("promo scheduled")
	}
	s.sched.Start()
	return nil
}

func (s *PromoScheduler) job(e ScheduledPromo) func(ctx context.Context) {
	return func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error().Interface("panic", r).Str("job", e.JobName).Msg("promo job panicked")
			}
		}()
		run := s.broadcast.Broadcast(ctx, e.Theme, e.Language)
		if s.observe != nil {
			s.observe(run)
		}
	}
}

// Handles returns the registered jobs.
func (s *PromoScheduler) Handles() []adapter.JobHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]adapter.JobHandle, len(s.handles))
	copy(out, s.handles)
	return out
}

func (s *PromoScheduler) Stop() error {
	s.mu.Lock()
	s.handles = nil
	s.mu.Unlock()
	return s.sched.Stop()
}
