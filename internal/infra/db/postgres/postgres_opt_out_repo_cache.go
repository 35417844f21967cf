package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/repository"
	"nomadlybot/internal/infra/metrics"
	red "nomadlybot/internal/infra/redis"
)

var (
	_ repository.OptOutRepository      = (*optOutRepoCacheDecorator)(nil)
	_ repository.OptOutCacheInvalidator = (*optOutRepoCacheDecorator)(nil)
)

// optOutRepoCacheDecorator serves opt-out lookups from Redis. A broadcast
// consults every recipient's flag, so hits keep the database out of the send loop.
type optOutRepoCacheDecorator struct {
	inner repository.OptOutRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewOptOutRepoCacheDecorator(inner repository.OptOutRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.OptOutRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &optOutRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: logger}
}

func optOutKey(chatID int64) string { return fmt.Sprintf("opt_out:%d", chatID) }

func (d *optOutRepoCacheDecorator) Get(ctx context.Context, tx repository.Tx, chatID int64) (*model.OptOut, error) {
	// Reads inside a transaction must see uncommitted writes.
	if tx != nil {
		metrics.IncCacheRequest("opt_out", "bypass")
		return d.inner.Get(ctx, tx, chatID)
	}

	key := optOutKey(chatID)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var o model.OptOut
		if json.Unmarshal([]byte(val), &o) == nil {
			metrics.IncCacheRequest("opt_out", "hit")
			return &o, nil
		}
	} else if !errors.Is(err, red.Nil) {
		d.log.Warn().Err(err).Int64("chat_id", chatID).Msg("opt-out cache read failed")
	}

	metrics.IncCacheRequest("opt_out", "miss")
	o, err := d.inner.Get(ctx, tx, chatID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(o); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return o, nil
}

// Save drops the cached flag after a direct write. Inside a transaction the
// row is not visible yet, so the caller must Invalidate after commit.
func (d *optOutRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, o *model.OptOut) error {
	if err := d.inner.Save(ctx, tx, o); err != nil {
		return err
	}
	if tx != nil {
		return nil
	}
	if err := d.Invalidate(ctx, o.ChatID); err != nil {
		d.log.Warn().Err(err).Int64("chat_id", o.ChatID).Msg("opt-out cache invalidation failed")
	}
	return nil
}

func (d *optOutRepoCacheDecorator) Invalidate(ctx context.Context, chatID int64) error {
	return d.cache.Del(ctx, optOutKey(chatID))
}
