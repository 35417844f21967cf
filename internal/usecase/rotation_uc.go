package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

var _ RotationUseCase = (*rotationUC)(nil)

type RotationUseCase interface {
	// NextVariation returns the index to show now and persists the following one.
	// The returned index is always usable, even when err is non-nil.
	NextVariation(ctx context.Context, theme model.Theme, lang model.Language) (int, error)
}

type rotationUC struct {
	repo repository.RotationRepository
	now  func() time.Time
	log  *zerolog.Logger
}

func NewRotationUseCase(repo repository.RotationRepository, logger *zerolog.Logger) *rotationUC {
	return &rotationUC{repo: repo, now: time.Now, log: logger}
}

func (uc *rotationUC) NextVariation(ctx context.Context, theme model.Theme, lang model.Language) (int, error) {
	key := model.RotationKey(theme, lang)

	idx := 0
	cur, err := uc.repo.Get(ctx, repository.NoTX, key)
	switch {
	case err == nil:
		idx = model.NormalizeIndex(cur.Index)
	case errors.Is(err, domain.ErrNotFound):
	default:
		uc.log.Warn().Err(err).Str("rotation", key).Msg("rotation read failed; using variation 1")
		return 0, fmt.Errorf("read rotation %s: %w", key, err)
	}

	next := &model.RotationCursor{
		ID:       key,
		Index:    model.NormalizeIndex(idx + 1),
		LastSent: uc.now().UTC(),
	}
	if err := uc.repo.Save(ctx, repository.NoTX, next); err != nil {
		uc.log.Warn().Err(err).Str("rotation", key).Msg("rotation save failed")
		return idx, fmt.Errorf("save rotation %s: %w", key, err)
	}
	return idx, nil
}
