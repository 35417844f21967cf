package usecase

import (
	"context"
	"errors"
	"time"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/repository"
)

var _ OptOutUseCase = (*optOutUC)(nil)

type OptOutUseCase interface {
	IsOptedOut(ctx context.Context, chatID int64) (bool, error)
	SetOptedOut(ctx context.Context, chatID int64, optedOut bool) error
}

type optOutUC struct {
	repo repository.OptOutRepository
	now  func() time.Time
}

func NewOptOutUseCase(repo repository.OptOutRepository) *optOutUC {
	return &optOutUC{repo: repo, now: time.Now}
}

func (uc *optOutUC) IsOptedOut(ctx context.Context, chatID int64) (bool, error) {
	o, err := uc.repo.Get(ctx, repository.NoTX, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return o.OptedOut, nil
}

func (uc *optOutUC) SetOptedOut(ctx context.Context, chatID int64, optedOut bool) error {
	if chatID == 0 {
		return domain.ErrInvalidArgument
	}
	return uc.repo.Save(ctx, repository.NoTX, &model.OptOut{
		ChatID:    chatID,
		OptedOut:  optedOut,
		UpdatedAt: uc.now().UTC(),
	})
}
