package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/repository"
)

var _ repository.OptOutRepository = (*PostgresOptOutRepo)(nil)

type PostgresOptOutRepo struct {
	pool *pgxpool.Pool
}

func NewOptOutRepo(pool *pgxpool.Pool) *PostgresOptOutRepo {
	return &PostgresOptOutRepo{pool: pool}
}

func (r *PostgresOptOutRepo) Get(ctx context.Context, tx repository.Tx, chatID int64) (*model.OptOut, error) {
	const q = `SELECT chat_id, opted_out, updated_at FROM promo_opt_outs WHERE chat_id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, chatID)
	if err != nil {
		return nil, err
	}
	var o model.OptOut
	if err := row.Scan(&o.ChatID, &o.OptedOut, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, readRowError(err)
	}
	return &o, nil
}

func (r *PostgresOptOutRepo) Save(ctx context.Context, tx repository.Tx, o *model.OptOut) error {
	const q = `
INSERT INTO promo_opt_outs (chat_id, opted_out, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (chat_id) DO UPDATE SET
  opted_out  = EXCLUDED.opted_out,
  updated_at = EXCLUDED.updated_at;`
	_, err := execSQL(ctx, r.pool, tx, q, o.ChatID, o.OptedOut, o.UpdatedAt)
	return err
}
