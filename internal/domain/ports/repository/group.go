package repository

import (
	"context"

	"nomadlybot/internal/domain/model"
)

// -----------------------------
// Registered groups
// -----------------------------

type GroupRepository interface {
	Upsert(ctx context.Context, tx Tx, g *model.RegisteredGroup) error
	Delete(ctx context.Context, tx Tx, chatID int64) error
	ListAll(ctx context.Context, tx Tx) ([]*model.RegisteredGroup, error)
}
