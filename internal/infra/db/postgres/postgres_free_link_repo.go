package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/ports/repository"
)

var _ repository.FreeLinkRepository = (*PostgresFreeLinkRepo)(nil)

type PostgresFreeLinkRepo struct {
	pool *pgxpool.Pool
}

func NewFreeLinkRepo(pool *pgxpool.Pool) *PostgresFreeLinkRepo {
	return &PostgresFreeLinkRepo{pool: pool}
}

func (r *PostgresFreeLinkRepo) Get(ctx context.Context, tx repository.Tx, chatID int64) (int, error) {
	const q = `SELECT remaining FROM free_link_counters WHERE chat_id = $1;`
	return r.scanRemaining(pickRow(ctx, r.pool, tx, q, chatID))
}

func (r *PostgresFreeLinkRepo) Set(ctx context.Context, tx repository.Tx, chatID int64, remaining int) error {
	const q = `
INSERT INTO free_link_counters (chat_id, remaining, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (chat_id) DO UPDATE SET
  remaining  = EXCLUDED.remaining,
  updated_at = EXCLUDED.updated_at;`
	_, err := execSQL(ctx, r.pool, tx, q, chatID, remaining)
	return err
}

func (r *PostgresFreeLinkRepo) Decrement(ctx context.Context, tx repository.Tx, chatID int64) (int, error) {
	const q = `
UPDATE free_link_counters
   SET remaining = GREATEST(remaining - 1, 0), updated_at = NOW()
 WHERE chat_id = $1
RETURNING remaining;`
	return r.scanRemaining(pickRow(ctx, r.pool, tx, q, chatID))
}

func (r *PostgresFreeLinkRepo) scanRemaining(row pgx.Row, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, readRowError(err)
	}
	return n, nil
}
