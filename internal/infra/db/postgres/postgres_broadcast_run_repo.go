package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/repository"
)

var _ repository.BroadcastRunRepository = (*broadcastRunRepo)(nil)

type broadcastRunRepo struct {
	pool *pgxpool.Pool
}

func NewBroadcastRunRepo(pool *pgxpool.Pool) repository.BroadcastRunRepository {
	return &broadcastRunRepo{pool: pool}
}

func (r *broadcastRunRepo) Save(ctx context.Context, tx repository.Tx, run *model.BroadcastRun) error {
	const q = `
INSERT INTO broadcast_runs (
  id, theme, language, variation, used_ai, total, success, errors, skipped, started_at, completed_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

	// Records are append-only; a duplicate id surfaces as a primary key violation.
	_, err := execSQL(ctx, r.pool, tx, q,
		run.ID, string(run.Theme), string(run.Language), run.Variation, run.UsedAI,
		run.Total, run.Success, run.Errors, run.Skipped, run.StartedAt, run.CompletedAt)
	return err
}

func (r *broadcastRunRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.BroadcastRun, error) {
	const q = `
SELECT id, theme, language, variation, used_ai, total, success, errors, skipped, started_at, completed_at
  FROM broadcast_runs
 ORDER BY completed_at DESC, id DESC
 LIMIT $1`
	rows, err := queryRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.BroadcastRun
	for rows.Next() {
		var (
			run         model.BroadcastRun
			theme, lang string
		)
		if err := rows.Scan(&run.ID, &theme, &lang, &run.Variation, &run.UsedAI,
			&run.Total, &run.Success, &run.Errors, &run.Skipped, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, readRowError(err)
		}
		run.Theme, run.Language = model.Theme(theme), model.Language(lang)
		out = append(out, &run)
	}
	return out, rows.Err()
}
