package web

import (
	"context"
	"fmt"
	"sync"

	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/infra/worker"
	"nomadlybot/internal/usecase"
)

type mockBroadcastUC struct {
	mu       sync.Mutex
	calls    []string
	runs     []*model.BroadcastRun
	listErr  error
	gotLimit int
}

func (m *mockBroadcastUC) Broadcast(ctx context.Context, theme model.Theme, lang model.Language) model.BroadcastRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, string(theme)+"/"+string(lang))
	return model.BroadcastRun{Theme: theme, Language: lang, Total: 3, Success: 3}
}

func (m *mockBroadcastUC) RecentRuns(ctx context.Context, limit int) ([]*model.BroadcastRun, error) {
	m.gotLimit = limit
	return m.runs, m.listErr
}

type mockRelayUC struct {
	usecase.GroupRelayUseCase
	messages []string
	events   []string
}

func (m *mockRelayUC) NotifyGroups(ctx context.Context, message string) usecase.RelayResult {
	m.messages = append(m.messages, message)
	return usecase.RelayResult{Groups: 3, Delivered: 2, Removed: 1}
}

func (m *mockRelayUC) event(e string) usecase.RelayResult {
	m.events = append(m.events, e)
	return usecase.RelayResult{Groups: 1, Delivered: 1}
}

func (m *mockRelayUC) NotifyNewUser(ctx context.Context, name string) usecase.RelayResult {
	return m.event("new-user:" + name)
}

func (m *mockRelayUC) NotifySubscription(ctx context.Context, name, plan string) usecase.RelayResult {
	return m.event("subscription:" + name + ":" + plan)
}

func (m *mockRelayUC) NotifyDomainPurchased(ctx context.Context, name, domain string) usecase.RelayResult {
	return m.event("domain:" + name + ":" + domain)
}

func (m *mockRelayUC) NotifyWalletFunded(ctx context.Context, name string, amount float64, currency string) usecase.RelayResult {
	return m.event(fmt.Sprintf("wallet:%s:%.2f:%s", name, amount, currency))
}

func (m *mockRelayUC) NotifyLinkShortened(ctx context.Context, name string) usecase.RelayResult {
	return m.event("short-link:" + name)
}

func (m *mockRelayUC) NotifyLeadsPurchased(ctx context.Context, name string, count int) usecase.RelayResult {
	return m.event(fmt.Sprintf("leads:%s:%d", name, count))
}

type mockFreeLinksUC struct {
	usecase.FreeLinksUseCase
	ResetFunc func(ctx context.Context, chatID int64, n int) error
}

func (m *mockFreeLinksUC) Reset(ctx context.Context, chatID int64, n int) error {
	return m.ResetFunc(ctx, chatID, n)
}

// inlineQueue runs tasks synchronously unless err is set.
type inlineQueue struct {
	err error
}

func (q *inlineQueue) Submit(task worker.Task) error {
	if q.err != nil {
		return q.err
	}
	return task(context.Background())
}
