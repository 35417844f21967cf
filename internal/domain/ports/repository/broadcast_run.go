package repository

import (
	"context"

	"nomadlybot/internal/domain/model"
)

// -----------------------------
// Broadcast run records
// -----------------------------

type BroadcastRunRepository interface {
	// Save appends a record; records are never updated.
	Save(ctx context.Context, tx Tx, run *model.BroadcastRun) error
	ListRecent(ctx context.Context, tx Tx, limit int) ([]*model.BroadcastRun, error)
}
