// Package session ties one authenticated user to their ledger and sync
// coordinator. All state is held in explicit session objects owned by the
// manager; nothing lives in package globals.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/store"
	"fintrack/internal/syncer"
)

// Session is one user's live state: the in-memory ledger plus the
// coordinator persisting it.
type Session struct {
	User   core.User
	Ledger *ledger.Ledger
	// Seeded reports whether this session started from the starter dataset
	// rather than a stored snapshot.
	Seeded bool

	coordinator *syncer.Coordinator
}

// Flush writes the current snapshot immediately.
func (s *Session) Flush() {
	s.coordinator.Flush()
}

// SyncState exposes the coordinator lifecycle for health reporting.
func (s *Session) SyncState() syncer.State {
	return s.coordinator.State()
}

// LastSyncError reports the most recent snapshot write failure, if any.
func (s *Session) LastSyncError() error {
	return s.coordinator.LastSyncError()
}

// Manager creates and tracks sessions over a shared store.
type Manager struct {
	store    store.Store
	clock    syncer.Clock
	delay    time.Duration
	notifier syncer.Notifier
	logger   *log.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

type Options struct {
	Clock    syncer.Clock
	Delay    time.Duration
	Notifier syncer.Notifier
	Logger   *log.Logger
}

func NewManager(st store.Store, opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = syncer.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentSession)
	}
	return &Manager{
		store:    st,
		clock:    opts.Clock,
		delay:    opts.Delay,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		sessions: make(map[string]*Session),
	}
}

// Attach returns the user's session, creating it on first sight: the stored
// snapshot is loaded (or seeded) and the ledger is wired to schedule a
// debounced sync on every mutation.
func (m *Manager) Attach(ctx context.Context, user core.User) (*Session, error) {
	if user.ID == "" {
		return nil, core.ErrEmptyID
	}

	m.mu.Lock()
	if s, ok := m.sessions[user.ID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	coordinator := syncer.NewCoordinator(m.store, syncer.Options{
		Clock:    m.clock,
		Delay:    m.delay,
		Notifier: m.notifier,
	})

	accounts, transactions, seeded, err := coordinator.LoadOrSeed(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load session data: %w", err)
	}

	s := &Session{
		User:        user,
		Seeded:      seeded,
		coordinator: coordinator,
	}
	s.Ledger = ledger.New(accounts, transactions, coordinator.ScheduleSync)
	coordinator.Bind(func() (core.User, []core.Account, []core.Transaction) {
		a, t := s.Ledger.Snapshot()
		return s.User, a, t
	})

	m.mu.Lock()
	// Another request may have attached the same user while we loaded;
	// the first session in wins.
	if existing, ok := m.sessions[user.ID]; ok {
		m.mu.Unlock()
		coordinator.Stop()
		return existing, nil
	}
	m.sessions[user.ID] = s
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "Session attached",
		log.FieldUserID, user.ID, "seeded", seeded)
	return s, nil
}

// Get returns an existing session without creating one.
func (m *Manager) Get(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Detach ends a session. Any pending debounced write is cancelled: every
// previously completed window has already persisted, and discarding the
// in-flight one loses at most the last burst, matching sign-out semantics.
func (m *Manager) Detach(userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if ok {
		s.coordinator.Stop()
		m.logger.Info("Session detached", log.FieldUserID, userID)
	}
}

// Shutdown flushes every live session so no debounced write is lost on a
// graceful stop.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Flush()
	}
}
