package repository

import (
	"context"

	"nomadlybot/internal/domain/model"
)

// -----------------------------
// Promo opt-outs
// -----------------------------

type OptOutRepository interface {
	// Get returns domain.ErrNotFound when the chat never had a record.
	Get(ctx context.Context, tx Tx, chatID int64) (*model.OptOut, error)
	Save(ctx context.Context, tx Tx, o *model.OptOut) error
}

// OptOutCacheInvalidator is implemented by caching opt-out repositories.
// Writers that save inside a transaction call Invalidate once it has committed.
type OptOutCacheInvalidator interface {
	Invalidate(ctx context.Context, chatID int64) error
}
