package usecase

import (
	"context"
	"errors"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/ports/repository"
)

var _ FreeLinksUseCase = (*freeLinksUC)(nil)

// FreeLinksUseCase tracks the free short links left to a chat.
type FreeLinksUseCase interface {
	// Decrement consumes one link and returns what is left. Never below zero.
	Decrement(ctx context.Context, chatID int64) (int, error)
	Available(ctx context.Context, chatID int64) (bool, error)
	Remaining(ctx context.Context, chatID int64) (int, error)
	Reset(ctx context.Context, chatID int64, n int) error
}

type freeLinksUC struct {
	repo    repository.FreeLinkRepository
	initial int
}

// NewFreeLinksUseCase seeds chats without a counter with initial links.
func NewFreeLinksUseCase(repo repository.FreeLinkRepository, initial int) *freeLinksUC {
	return &freeLinksUC{repo: repo, initial: initial}
}

func (uc *freeLinksUC) Remaining(ctx context.Context, chatID int64) (int, error) {
	n, err := uc.repo.Get(ctx, repository.NoTX, chatID)
	if errors.Is(err, domain.ErrNotFound) {
		return uc.initial, nil
	}
	return n, err
}

func (uc *freeLinksUC) Available(ctx context.Context, chatID int64) (bool, error) {
	n, err := uc.Remaining(ctx, chatID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (uc *freeLinksUC) Decrement(ctx context.Context, chatID int64) (int, error) {
	n, err := uc.repo.Decrement(ctx, repository.NoTX, chatID)
	if errors.Is(err, domain.ErrNotFound) {
		if err := uc.repo.Set(ctx, repository.NoTX, chatID, uc.initial); err != nil {
			return 0, err
		}
		return uc.repo.Decrement(ctx, repository.NoTX, chatID)
	}
	return n, err
}

func (uc *freeLinksUC) Reset(ctx context.Context, chatID int64, n int) error {
	if chatID == 0 || n < 0 {
		return domain.ErrInvalidArgument
	}
	return uc.repo.Set(ctx, repository.NoTX, chatID, n)
}
