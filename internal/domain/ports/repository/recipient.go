package repository

import (
	"context"

	"nomadlybot/internal/domain/model"
)

// -----------------------------
// Recipients
// -----------------------------

type RecipientRepository interface {
	Upsert(ctx context.Context, tx Tx, r *model.Recipient) error
	FindByChatID(ctx context.Context, tx Tx, chatID int64) (*model.Recipient, error)
	// ListAll returns the whole directory; callers filter by language.
	ListAll(ctx context.Context, tx Tx) ([]*model.Recipient, error)
}
