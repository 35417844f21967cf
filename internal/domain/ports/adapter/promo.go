package adapter

import (
	"context"
	"time"

	"nomadlybot/internal/domain/model"
)

// PromoGenerator produces dynamic promo copy. It is optional: implementations
// may return domain.ErrGeneratorDisabled and callers fall back to static copy.
type PromoGenerator interface {
	Generate(ctx context.Context, theme model.Theme, lang model.Language) (string, error)
}

// AdminAlerter is a one-way, best-effort operator channel. Failures are swallowed.
type AdminAlerter interface {
	Alert(ctx context.Context, text string)
}

// Locker guards a key for a bounded time.
type Locker interface {
	// TryLock returns domain.ErrLockHeld when another holder owns key.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// JobScheduler registers recurring jobs on cron expressions evaluated in UTC.
type JobScheduler interface {
	Register(name, cronExpr string, fn func(ctx context.Context)) (JobHandle, error)
	Start()
	Stop() error
}

// JobHandle identifies a registered job.
type JobHandle interface {
	Name() string
	NextRun() (time.Time, error)
	Cancel() error
}
