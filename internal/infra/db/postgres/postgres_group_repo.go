package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/repository"
)

var _ repository.GroupRepository = (*PostgresGroupRepo)(nil)

type PostgresGroupRepo struct {
	pool *pgxpool.Pool
}

func NewGroupRepo(pool *pgxpool.Pool) *PostgresGroupRepo {
	return &PostgresGroupRepo{pool: pool}
}

// Upsert keeps the original registration time when the bot is re-added.
func (r *PostgresGroupRepo) Upsert(ctx context.Context, tx repository.Tx, g *model.RegisteredGroup) error {
	const q = `
INSERT INTO registered_groups (chat_id, title, registered_at)
VALUES ($1, $2, $3)
ON CONFLICT (chat_id) DO UPDATE SET title = EXCLUDED.title;`
	_, err := execSQL(ctx, r.pool, tx, q, g.ChatID, g.Title, g.RegisteredAt)
	return err
}

func (r *PostgresGroupRepo) Delete(ctx context.Context, tx repository.Tx, chatID int64) error {
	const q = `DELETE FROM registered_groups WHERE chat_id = $1;`
	_, err := execSQL(ctx, r.pool, tx, q, chatID)
	return err
}

func (r *PostgresGroupRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.RegisteredGroup, error) {
	const q = `SELECT chat_id, title, registered_at FROM registered_groups ORDER BY registered_at;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.RegisteredGroup
	for rows.Next() {
		var g model.RegisteredGroup
		if err := rows.Scan(&g.ChatID, &g.Title, &g.RegisteredAt); err != nil {
			return nil, readRowError(err)
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}
