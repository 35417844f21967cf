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

var _ repository.RotationRepository = (*PostgresRotationRepo)(nil)

type PostgresRotationRepo struct {
	pool *pgxpool.Pool
}

func NewRotationRepo(pool *pgxpool.Pool) *PostgresRotationRepo {
	return &PostgresRotationRepo{pool: pool}
}

func (r *PostgresRotationRepo) Get(ctx context.Context, tx repository.Tx, id string) (*model.RotationCursor, error) {
	const q = `SELECT id, current_index, last_sent FROM promo_rotation WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var c model.RotationCursor
	if err := row.Scan(&c.ID, &c.Index, &c.LastSent); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, readRowError(err)
	}
	return &c, nil
}

func (r *PostgresRotationRepo) Save(ctx context.Context, tx repository.Tx, c *model.RotationCursor) error {
	const q = `
INSERT INTO promo_rotation (id, current_index, last_sent)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET
  current_index = EXCLUDED.current_index,
  last_sent     = EXCLUDED.last_sent;`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Index, c.LastSent)
	return err
}
