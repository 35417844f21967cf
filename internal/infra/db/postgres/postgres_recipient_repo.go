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

var _ repository.RecipientRepository = (*PostgresRecipientRepo)(nil)

type PostgresRecipientRepo struct {
	pool *pgxpool.Pool
}

func NewRecipientRepo(pool *pgxpool.Pool) *PostgresRecipientRepo {
	return &PostgresRecipientRepo{pool: pool}
}

func (r *PostgresRecipientRepo) Upsert(ctx context.Context, tx repository.Tx, rc *model.Recipient) error {
	const q = `
INSERT INTO recipients (chat_id, username, language, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (chat_id) DO UPDATE SET
  username   = EXCLUDED.username,
  language   = EXCLUDED.language,
  updated_at = EXCLUDED.updated_at;`
	_, err := execSQL(ctx, r.pool, tx, q, rc.ChatID, rc.Username, string(rc.Language), rc.CreatedAt, rc.UpdatedAt)
	return err
}

func (r *PostgresRecipientRepo) FindByChatID(ctx context.Context, tx repository.Tx, chatID int64) (*model.Recipient, error) {
	const q = `
SELECT chat_id, username, language, created_at, updated_at
  FROM recipients WHERE chat_id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, chatID)
	if err != nil {
		return nil, err
	}
	rc, err := scanRecipient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, readRowError(err)
	}
	return rc, nil
}

func (r *PostgresRecipientRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Recipient, error) {
	const q = `
SELECT chat_id, username, language, created_at, updated_at
  FROM recipients ORDER BY created_at, chat_id;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Recipient
	for rows.Next() {
		rc, err := scanRecipient(rows)
		if err != nil {
			return nil, readRowError(err)
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func scanRecipient(row pgx.Row) (*model.Recipient, error) {
	var (
		rc   model.Recipient
		lang string
	)
	if err := row.Scan(&rc.ChatID, &rc.Username, &lang, &rc.CreatedAt, &rc.UpdatedAt); err != nil {
		return nil, err
	}
	rc.Language = model.Language(lang)
	return &rc, nil
}
