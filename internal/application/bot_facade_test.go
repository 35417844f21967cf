//go:build !integration

package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"nomadlybot/internal/application"
	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/usecase"
)

// fakeTranslator renders "lang:key" so assertions can check which reply was chosen.
type fakeTranslator struct{}

func (fakeTranslator) T(lang model.Language, key string, args ...interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf("%s:%s:%v", lang, key, args[0])
	}
	return fmt.Sprintf("%s:%s", lang, key)
}

func (f fakeTranslator) Plural(lang model.Language, key string, n int) string {
	if n == 1 {
		return f.T(lang, key+"_one", n)
	}
	return f.T(lang, key+"_other", n)
}

type mockRecipientUC struct {
	langs       map[int64]model.Language
	registerErr error
	setLangErr  error
}

func (m *mockRecipientUC) Register(ctx context.Context, chatID int64, username, langCode string) (*model.Recipient, bool, error) {
	if m.registerErr != nil {
		return nil, false, m.registerErr
	}
	_, known := m.langs[chatID]
	lang := model.NormalizeLanguage(langCode)
	m.langs[chatID] = lang
	return &model.Recipient{ChatID: chatID, Username: username, Language: lang}, !known, nil
}

func (m *mockRecipientUC) SetLanguage(ctx context.Context, chatID int64, code string) error {
	if m.setLangErr != nil {
		return m.setLangErr
	}
	m.langs[chatID] = model.Language(code)
	return nil
}

func (m *mockRecipientUC) Language(ctx context.Context, chatID int64) model.Language {
	if l, ok := m.langs[chatID]; ok {
		return l
	}
	return model.DefaultLanguage
}

func (m *mockRecipientUC) Supported() []model.Language { return []model.Language{"en", "fr", "xx"} }

type mockOptOutUC struct {
	state map[int64]bool
	err   error
}

func (m *mockOptOutUC) IsOptedOut(ctx context.Context, chatID int64) (bool, error) {
	return m.state[chatID], nil
}

func (m *mockOptOutUC) SetOptedOut(ctx context.Context, chatID int64, v bool) error {
	if m.err != nil {
		return m.err
	}
	m.state[chatID] = v
	return nil
}

type mockFreeLinksUC struct{ remaining int }

func (m *mockFreeLinksUC) Decrement(ctx context.Context, chatID int64) (int, error) { return 0, nil }
func (m *mockFreeLinksUC) Available(ctx context.Context, chatID int64) (bool, error) {
	return m.remaining > 0, nil
}
func (m *mockFreeLinksUC) Remaining(ctx context.Context, chatID int64) (int, error) {
	return m.remaining, nil
}
func (m *mockFreeLinksUC) Reset(ctx context.Context, chatID int64, n int) error { return nil }

var _ usecase.FreeLinksUseCase = (*mockFreeLinksUC)(nil)

// mockRelayUC records new-user announcements; the other hooks are unused here.
type mockRelayUC struct {
	usecase.GroupRelayUseCase
	newUsers []string
}

func (m *mockRelayUC) NotifyNewUser(ctx context.Context, name string) usecase.RelayResult {
	m.newUsers = append(m.newUsers, name)
	return usecase.RelayResult{Groups: 1, Delivered: 1}
}

func newFacade(rec *mockRecipientUC, opt *mockOptOutUC, links usecase.FreeLinksUseCase) *application.BotFacade {
	logger := zerolog.Nop()
	return application.NewBotFacade(rec, opt, links, nil, fakeTranslator{}, "NomadlyBot", &logger)
}

func TestBotFacade(t *testing.T) {
	ctx := context.Background()

	t.Run("should welcome in the registered language", func(t *testing.T) {
		rec := &mockRecipientUC{langs: map[int64]model.Language{}}
		f := newFacade(rec, &mockOptOutUC{state: map[int64]bool{}}, nil)

		got, err := f.HandleStart(ctx, 10, "alice", "fr")
		if err != nil {
			t.Fatalf("HandleStart failed: %v", err)
		}
		if got != "fr:start_welcome:NomadlyBot" {
			t.Errorf("unexpected welcome %q", got)
		}
	})

	t.Run("should announce only first-time users to the groups", func(t *testing.T) {
		rec := &mockRecipientUC{langs: map[int64]model.Language{}}
		relay := &mockRelayUC{}
		logger := zerolog.Nop()
		f := application.NewBotFacade(rec, &mockOptOutUC{state: map[int64]bool{}}, nil, relay, fakeTranslator{}, "NomadlyBot", &logger)

		if _, err := f.HandleStart(ctx, 12, "alice", "en"); err != nil {
			t.Fatal(err)
		}
		if _, err := f.HandleStart(ctx, 12, "alice", "en"); err != nil {
			t.Fatal(err)
		}
		if len(relay.newUsers) != 1 || relay.newUsers[0] != "alice" {
			t.Errorf("expected a single announcement for alice, got %v", relay.newUsers)
		}
	})

	t.Run("should not announce when registration fails", func(t *testing.T) {
		rec := &mockRecipientUC{langs: map[int64]model.Language{}, registerErr: errors.New("db down")}
		relay := &mockRelayUC{}
		logger := zerolog.Nop()
		f := application.NewBotFacade(rec, &mockOptOutUC{state: map[int64]bool{}}, nil, relay, fakeTranslator{}, "NomadlyBot", &logger)

		_, _ = f.HandleStart(ctx, 13, "bob", "en")
		if len(relay.newUsers) != 0 {
			t.Errorf("expected no announcement, got %v", relay.newUsers)
		}
	})

	t.Run("should return a generic error when registration fails", func(t *testing.T) {
		rec := &mockRecipientUC{langs: map[int64]model.Language{}, registerErr: errors.New("db down")}
		f := newFacade(rec, &mockOptOutUC{state: map[int64]bool{}}, nil)

		got, err := f.HandleStart(ctx, 10, "alice", "fr")
		if err == nil || got != "en:generic_error" {
			t.Fatalf("expected generic error reply, got %q, %v", got, err)
		}
	})

	t.Run("should toggle promo opt-out", func(t *testing.T) {
		rec := &mockRecipientUC{langs: map[int64]model.Language{11: "hi"}}
		opt := &mockOptOutUC{state: map[int64]bool{}}
		f := newFacade(rec, opt, nil)

		if got, _ := f.HandleStopPromo(ctx, 11); got != "hi:promo_stopped" || !opt.state[11] {
			t.Errorf("stop: got %q, opted out %v", got, opt.state[11])
		}
		if got, _ := f.HandleStartPromo(ctx, 11); got != "hi:promo_started" || opt.state[11] {
			t.Errorf("start: got %q, opted out %v", got, opt.state[11])
		}
	})

	t.Run("should reject unsupported languages without error", func(t *testing.T) {
		rec := &mockRecipientUC{langs: map[int64]model.Language{}, setLangErr: domain.ErrUnsupportedLanguage}
		f := newFacade(rec, &mockOptOutUC{state: map[int64]bool{}}, nil)

		got, err := f.HandleSetLanguage(ctx, 12, "de")
		if err != nil || got != "en:lang_unsupported" {
			t.Fatalf("got %q, %v", got, err)
		}
	})

	t.Run("should confirm a language change in the new language", func(t *testing.T) {
		rec := &mockRecipientUC{langs: map[int64]model.Language{}}
		f := newFacade(rec, &mockOptOutUC{state: map[int64]bool{}}, nil)

		if got, _ := f.HandleSetLanguage(ctx, 12, "fr"); got != "fr:lang_set" {
			t.Errorf("unexpected confirmation %q", got)
		}
	})

	t.Run("should list languages with labels", func(t *testing.T) {
		rec := &mockRecipientUC{langs: map[int64]model.Language{}}
		f := newFacade(rec, &mockOptOutUC{state: map[int64]bool{}}, nil)

		prompt, opts := f.LanguageMenu(ctx, 1)
		if prompt != "en:lang_prompt" || len(opts) != 3 {
			t.Fatalf("unexpected menu %q %+v", prompt, opts)
		}
		if opts[1].Label != "Français" || opts[2].Label != "xx" {
			t.Errorf("unexpected labels %+v", opts)
		}
	})

	t.Run("should pluralize the free link counter", func(t *testing.T) {
		rec := &mockRecipientUC{langs: map[int64]model.Language{}}
		f := newFacade(rec, &mockOptOutUC{state: map[int64]bool{}}, &mockFreeLinksUC{remaining: 1})

		if got, _ := f.HandleLinks(ctx, 1); got != "en:links_remaining_one:1" {
			t.Errorf("unexpected singular %q", got)
		}
		if got := f.RemainingMessage("fr", 3); got != "fr:links_remaining_other:3" {
			t.Errorf("unexpected plural %q", got)
		}
	})

	t.Run("should ignore membership events without a relay", func(t *testing.T) {
		rec := &mockRecipientUC{langs: map[int64]model.Language{}}
		f := newFacade(rec, &mockOptOutUC{state: map[int64]bool{}}, nil)
		if err := f.HandleMembership(ctx, model.MembershipEvent{ChatID: -1}); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})
}
