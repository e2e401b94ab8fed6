package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopease/storefront/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const flushConcurrency = 16

// Manager owns the sessions of all clients, keyed by client id.
type Manager struct {
	deps    *Deps
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

type ManagerOption func(*Manager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(deps Deps, idleTTL time.Duration, opts ...ManagerOption) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	m := &Manager{
		deps:     &deps,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Get returns the session of clientID, creating it from the local store on
// first use.
func (m *Manager) Get(ctx context.Context, clientID string) *Session {
	now := m.now()

	m.mu.Lock()
	if sess, ok := m.sessions[clientID]; ok {
		m.mu.Unlock()
		sess.touch(now)
		return sess
	}
	m.mu.Unlock()

	initial := m.deps.Store.LoadCart(ctx, clientID)
	created := newSession(clientID, initial, m.deps, now)

	m.mu.Lock()
	defer m.mu.Unlock()

	// another request may have created it meanwhile
	if sess, ok := m.sessions[clientID]; ok {
		sess.touch(now)
		return sess
	}

	if m.closed {
		// not tracked; it has no adapters until Identify, which a closed
		// session ignores
		created.closed = true
		return created
	}

	m.sessions[clientID] = created
	metrics.SessionOpened()

	return created
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// EvictIdle closes sessions unused for longer than the idle TTL and returns
// how many were evicted.
func (m *Manager) EvictIdle() int {
	now := m.now()

	m.mu.Lock()
	var idle []*Session
	for id, sess := range m.sessions {
		if sess.idleSince(now) > m.idleTTL {
			idle = append(idle, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range idle {
		sess.Close()
		metrics.SessionClosed()
	}

	if len(idle) > 0 {
		m.deps.Logger.Info("Evicted idle sessions", slog.Int("count", len(idle)))
	}

	return len(idle)
}

// Run evicts idle sessions periodically until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	interval := m.idleTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle()
		}
	}
}

// Flush writes every pending cart write without waiting for its debounce.
// Call it before Close on shutdown.
func (m *Manager) Flush() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.mu.Unlock()

	var g errgroup.Group
	g.SetLimit(flushConcurrency)

	for _, sess := range sessions {
		g.Go(func() error {
			sess.Flush()
			return nil
		})
	}

	_ = g.Wait()
}

// Close tears every session down. Pending cart writes are dropped.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
		metrics.SessionClosed()
	}
}
