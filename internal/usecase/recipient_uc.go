package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

var _ RecipientUseCase = (*recipientUC)(nil)

type RecipientUseCase interface {
	// Register creates or refreshes a recipient and clears any opt-out.
	// created reports whether the chat was unknown before this call.
	Register(ctx context.Context, chatID int64, username, langCode string) (r *model.Recipient, created bool, err error)
	SetLanguage(ctx context.Context, chatID int64, langCode string) error
	// Language returns the stored preference, resolved to a supported language.
	Language(ctx context.Context, chatID int64) model.Language
	Supported() []model.Language
}

type recipientUC struct {
	recipients repository.RecipientRepository
	optOuts    repository.OptOutRepository
	tm         repository.TransactionManager
	supported  map[model.Language]bool
	order      []model.Language
	log        *zerolog.Logger
}

func NewRecipientUseCase(
	recipients repository.RecipientRepository,
	optOuts repository.OptOutRepository,
	tm repository.TransactionManager,
	supported []model.Language,
	logger *zerolog.Logger,
) *recipientUC {
	set := make(map[model.Language]bool, len(supported))
	for _, l := range supported {
		set[l] = true
	}
	return &recipientUC{
		recipients: recipients,
		optOuts:    optOuts,
		tm:         tm,
		supported:  set,
		order:      supported,
		log:        logger,
	}
}

func (uc *recipientUC) resolve(code string) model.Language {
	l := model.NormalizeLanguage(code)
	if len(l) > 2 {
		l = l[:2] // telegram sends tags like "fr-FR"
	}
	if uc.supported[l] {
		return l
	}
	return model.DefaultLanguage
}

func (uc *recipientUC) Register(ctx context.Context, chatID int64, username, langCode string) (*model.Recipient, bool, error) {
	var (
		out     *model.Recipient
		created bool
	)
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		created = false
		existing, err := uc.recipients.FindByChatID(ctx, tx, chatID)
		switch {
		case err == nil:
			existing.Username = username
			existing.UpdatedAt = time.Now()
			out = existing
		case errors.Is(err, domain.ErrNotFound):
			r, err := model.NewRecipient(chatID, username, uc.resolve(langCode))
			if err != nil {
				return err
			}
			out = r
			created = true
		default:
			return err
		}
		if err := uc.recipients.Upsert(ctx, tx, out); err != nil {
			return err
		}
		return uc.optOuts.Save(ctx, tx, &model.OptOut{ChatID: chatID, OptedOut: false, UpdatedAt: time.Now().UTC()})
	})
	if err != nil {
		return nil, false, fmt.Errorf("register recipient %d: %w", chatID, err)
	}
	if inv, ok := uc.optOuts.(repository.OptOutCacheInvalidator); ok {
		if err := inv.Invalidate(ctx, chatID); err != nil {
			uc.log.Warn().Err(err).Int64("chat_id", chatID).Msg("opt-out cache invalidation failed")
		}
	}
	uc.log.Debug().Int64("chat_id", chatID).Str("lang", string(out.Language)).Bool("created", created).Msg("recipient registered")
	return out, created, nil
}

func (uc *recipientUC) SetLanguage(ctx context.Context, chatID int64, langCode string) error {
	l := model.NormalizeLanguage(langCode)
	if !uc.supported[l] {
		return domain.ErrUnsupportedLanguage
	}
	r, err := uc.recipients.FindByChatID(ctx, repository.NoTX, chatID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if r, err = model.NewRecipient(chatID, "", l); err != nil {
			return err
		}
	}
	r.Language = l
	r.UpdatedAt = time.Now()
	return uc.recipients.Upsert(ctx, repository.NoTX, r)
}

func (uc *recipientUC) Language(ctx context.Context, chatID int64) model.Language {
	r, err := uc.recipients.FindByChatID(ctx, repository.NoTX, chatID)
	if err != nil {
		return model.DefaultLanguage
	}
	if uc.supported[r.Language] {
		return r.Language
	}
	return model.DefaultLanguage
}

func (uc *recipientUC) Supported() []model.Language {
	out := make([]model.Language, len(uc.order))
	copy(out, uc.order)
	return out
}
