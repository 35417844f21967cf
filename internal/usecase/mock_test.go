//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/adapter"
	"nomadlybot/internal/domain/ports/repository"
)

// =============================
// Adapters
// =============================

// ---- Mock Transport ----

type sentMessage struct {
	ChatID int64
	Text   string
	Photo  string
	Opts   adapter.SendOptions
}

type MockTransport struct {
	mu   sync.Mutex
	Sent []sentMessage

	SendTextFunc  func(ctx context.Context, chatID int64, text string, opts adapter.SendOptions) error
	SendPhotoFunc func(ctx context.Context, chatID int64, photoURL, caption string, opts adapter.SendOptions) error
}

var _ adapter.Transport = (*MockTransport)(nil)

func (m *MockTransport) SendText(ctx context.Context, chatID int64, text string, opts adapter.SendOptions) error {
	if m.SendTextFunc != nil {
		if err := m.SendTextFunc(ctx, chatID, text, opts); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMessage{ChatID: chatID, Text: text, Opts: opts})
	return nil
}

func (m *MockTransport) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, opts adapter.SendOptions) error {
	if m.SendPhotoFunc != nil {
		if err := m.SendPhotoFunc(ctx, chatID, photoURL, caption, opts); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMessage{ChatID: chatID, Text: caption, Photo: photoURL, Opts: opts})
	return nil
}

func (m *MockTransport) sentTo() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.Sent))
	for _, s := range m.Sent {
		ids = append(ids, s.ChatID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *MockTransport) messages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMessage, len(m.Sent))
	copy(out, m.Sent)
	return out
}

// ---- Mock PromoGenerator ----

type MockGenerator struct {
	GenerateFunc func(ctx context.Context, theme model.Theme, lang model.Language) (string, error)
}

func (m *MockGenerator) Generate(ctx context.Context, theme model.Theme, lang model.Language) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, theme, lang)
	}
	return "", domain.ErrGeneratorDisabled
}

// ---- Mock AdminAlerter ----

type MockAlerter struct {
	mu     sync.Mutex
	Alerts []string

	AlertFunc func(ctx context.Context, text string)
}

func (m *MockAlerter) Alert(ctx context.Context, text string) {
	if m.AlertFunc != nil {
		m.AlertFunc(ctx, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Alerts = append(m.Alerts, text)
}

func (m *MockAlerter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Alerts)
}

// ---- Mock AIServiceAdapter ----

type MockAI struct {
	ChatFunc func(ctx context.Context, model string, messages []adapter.Message, opts adapter.ChatOptions) (string, error)
}

func (m *MockAI) Chat(ctx context.Context, model string, messages []adapter.Message, opts adapter.ChatOptions) (string, error) {
	return m.ChatFunc(ctx, model, messages, opts)
}

// ---- Fake catalog ----

type fakeCatalog struct {
	langs map[model.Language]bool
}

func newFakeCatalog(langs ...model.Language) *fakeCatalog {
	c := &fakeCatalog{langs: map[model.Language]bool{}}
	for _, l := range langs {
		c.langs[l] = true
	}
	return c
}

func (c *fakeCatalog) Variant(lang model.Language, theme model.Theme, index int) string {
	if !c.langs[lang] {
		lang = model.DefaultLanguage
	}
	return string(lang) + "/" + string(theme) + "/" + model.VariationLabel(false, model.NormalizeIndex(index))
}

func (c *fakeCatalog) Supports(lang model.Language) bool { return c.langs[lang] }

// ---- Fake JobScheduler ----

type fakeJob struct {
	name      string
	expr      string
	fn        func(ctx context.Context)
	cancelled bool
}

func (j *fakeJob) Name() string                { return j.name }
func (j *fakeJob) NextRun() (time.Time, error) { return time.Time{}, nil }
func (j *fakeJob) Cancel() error               { j.cancelled = true; return nil }
func (j *fakeJob) fire(ctx context.Context)    { j.fn(ctx) }

type fakeScheduler struct {
	jobs     []*fakeJob
	started  bool
	stopped  bool
	failOn   string
	failWith error
}

func (s *fakeScheduler) Register(name, cronExpr string, fn func(ctx context.Context)) (adapter.JobHandle, error) {
	if name == s.failOn {
		return nil, s.failWith
	}
	j := &fakeJob{name: name, expr: cronExpr, fn: fn}
	s.jobs = append(s.jobs, j)
	return j, nil
}

func (s *fakeScheduler) Start()      { s.started = true }
func (s *fakeScheduler) Stop() error { s.stopped = true; return nil }

// =============================
// Repositories (in-memory)
// =============================

type memRecipientRepo struct {
	mu      sync.RWMutex
	store   map[int64]*model.Recipient
	listErr error
}

func newMemRecipientRepo(rs ...*model.Recipient) *memRecipientRepo {
	m := &memRecipientRepo{store: map[int64]*model.Recipient{}}
	for _, r := range rs {
		m.store[r.ChatID] = r
	}
	return m
}

func (m *memRecipientRepo) Upsert(ctx context.Context, tx repository.Tx, r *model.Recipient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.store[r.ChatID] = &cp
	return nil
}

func (m *memRecipientRepo) FindByChatID(ctx context.Context, tx repository.Tx, chatID int64) (*model.Recipient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.store[chatID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRecipientRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Recipient, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Recipient, 0, len(m.store))
	for _, r := range m.store {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out, nil
}

type memOptOutRepo struct {
	mu     sync.RWMutex
	store  map[int64]*model.OptOut
	getErr error
}

func newMemOptOutRepo() *memOptOutRepo {
	return &memOptOutRepo{store: map[int64]*model.OptOut{}}
}

func (m *memOptOutRepo) Get(ctx context.Context, tx repository.Tx, chatID int64) (*model.OptOut, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.store[chatID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOptOutRepo) Save(ctx context.Context, tx repository.Tx, o *model.OptOut) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store[o.ChatID] = &cp
	return nil
}

// invalidatingOptOutRepo records post-commit cache invalidations.
type invalidatingOptOutRepo struct {
	*memOptOutRepo
	invalidated  []int64
	onInvalidate func(chatID int64)
}

var _ repository.OptOutCacheInvalidator = (*invalidatingOptOutRepo)(nil)

func (m *invalidatingOptOutRepo) Invalidate(ctx context.Context, chatID int64) error {
	if m.onInvalidate != nil {
		m.onInvalidate(chatID)
	}
	m.invalidated = append(m.invalidated, chatID)
	return nil
}

type memGroupRepo struct {
	mu    sync.RWMutex
	store map[int64]*model.RegisteredGroup
	// hang makes every call block until its context is done.
	hang bool
}

func (m *memGroupRepo) wait(ctx context.Context) error {
	if !m.hang {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func newMemGroupRepo(ids ...int64) *memGroupRepo {
	m := &memGroupRepo{store: map[int64]*model.RegisteredGroup{}}
	for _, id := range ids {
		m.store[id] = &model.RegisteredGroup{ChatID: id, RegisteredAt: time.Now()}
	}
	return m
}

func (m *memGroupRepo) Upsert(ctx context.Context, tx repository.Tx, g *model.RegisteredGroup) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *g
	m.store[g.ChatID] = &cp
	return nil
}

func (m *memGroupRepo) Delete(ctx context.Context, tx repository.Tx, chatID int64) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, chatID)
	return nil
}

func (m *memGroupRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.RegisteredGroup, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.RegisteredGroup, 0, len(m.store))
	for _, g := range m.store {
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out, nil
}

type memRotationRepo struct {
	mu      sync.Mutex
	store   map[string]*model.RotationCursor
	getErr  error
	saveErr error
	hang    bool
}

func newMemRotationRepo() *memRotationRepo {
	return &memRotationRepo{store: map[string]*model.RotationCursor{}}
}

func (m *memRotationRepo) Get(ctx context.Context, tx repository.Tx, id string) (*model.RotationCursor, error) {
	if m.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRotationRepo) Save(ctx context.Context, tx repository.Tx, c *model.RotationCursor) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

type memRunRepo struct {
	mu   sync.Mutex
	runs []*model.BroadcastRun
}

func (m *memRunRepo) Save(ctx context.Context, tx repository.Tx, run *model.BroadcastRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *run
	m.runs = append(m.runs, &cp)
	return nil
}

func (m *memRunRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.BroadcastRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.BroadcastRun, 0, limit)
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

func (m *memRunRepo) all() []*model.BroadcastRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.BroadcastRun(nil), m.runs...)
}

type memFreeLinkRepo struct {
	mu    sync.Mutex
	store map[int64]int
}

func newMemFreeLinkRepo() *memFreeLinkRepo {
	return &memFreeLinkRepo{store: map[int64]int{}}
}

func (m *memFreeLinkRepo) Get(ctx context.Context, tx repository.Tx, chatID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.store[chatID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return n, nil
}

func (m *memFreeLinkRepo) Set(ctx context.Context, tx repository.Tx, chatID int64, remaining int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[chatID] = remaining
	return nil
}

func (m *memFreeLinkRepo) Decrement(ctx context.Context, tx repository.Tx, chatID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.store[chatID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if n > 0 {
		n--
	}
	m.store[chatID] = n
	return n, nil
}

// ---- Mock TxManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc overrides it.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- In-memory Locker ----

type MockLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tok, ok := l.held[key]; ok && tok != "" {
		return "", domain.ErrLockHeld
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func recipient(chatID int64, lang model.Language) *model.Recipient {
	return &model.Recipient{ChatID: chatID, Language: lang}
}
