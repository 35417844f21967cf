package repository

import "context"

// -----------------------------
// Free short-link counters
// -----------------------------

type FreeLinkRepository interface {
	// Get returns domain.ErrNotFound when the chat has no counter yet.
	Get(ctx context.Context, tx Tx, chatID int64) (int, error)
	Set(ctx context.Context, tx Tx, chatID int64, remaining int) error
	// Decrement lowers the counter by one without going below zero and returns
	// the new value. A missing counter yields domain.ErrNotFound.
	Decrement(ctx context.Context, tx Tx, chatID int64) (int, error)
}
