package repository

import (
	"context"

	"nomadlybot/internal/domain/model"
)

// -----------------------------
// Rotation cursors
// -----------------------------

type RotationRepository interface {
	// Get returns domain.ErrNotFound when the cursor was never written.
	Get(ctx context.Context, tx Tx, id string) (*model.RotationCursor, error)
	Save(ctx context.Context, tx Tx, c *model.RotationCursor) error
}
