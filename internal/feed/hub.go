package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"
)

type subscriptionKey struct {
	table  Table
	userID string
}

// Hub fans notifications from one LISTEN connection out to per-user
// subscriptions.
type Hub struct {
	notifications <-chan *pq.Notification
	pinger        Pinger
	pingInterval  time.Duration
	logger        *slog.Logger

	mu     sync.Mutex
	subs   map[subscriptionKey]map[*Subscription]struct{}
	closed bool
}

// Pinger checks the LISTEN connection. *pq.Listener satisfies it.
type Pinger interface {
	Ping() error
}

type HubOption func(*Hub)

// WithPinger makes Run ping the connection when no notification arrived for
// interval.
func WithPinger(p Pinger, interval time.Duration) HubOption {
	return func(h *Hub) {
		h.pinger = p
		h.pingInterval = interval
	}
}

func WithLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

func NewHub(notifications <-chan *pq.Notification, opts ...HubOption) *Hub {
	h := &Hub{
		notifications: notifications,
		logger:        slog.Default(),
		subs:          make(map[subscriptionKey]map[*Subscription]struct{}),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Run dispatches notifications until ctx is done or the notification channel
// is closed. All subscriptions are closed on return.
func (h *Hub) Run(ctx context.Context) {
	defer h.closeAll()

	var tick <-chan time.Time
	if h.pinger != nil && h.pingInterval > 0 {
		ticker := time.NewTicker(h.pingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case n, ok := <-h.notifications:
			if !ok {
				return
			}
			h.dispatch(n)

		case <-tick:
			go func() {
				if err := h.pinger.Ping(); err != nil {
					h.logger.Warn("Change feed ping failed", slog.Any("error", err))
				}
			}()
		}
	}
}

// pq sends a nil notification after re-establishing the connection; anything
// published in between is lost, so every subscriber is told to resync.
func (h *Hub) dispatch(n *pq.Notification) {
	if n == nil {
		h.logger.Info("Change feed reconnected, requesting resync")
		h.broadcast(func(key subscriptionKey) Event {
			return Event{Table: key.table, UserID: key.userID, Resync: true}
		})
		return
	}

	event, err := parseEvent(n.Extra)
	if err != nil {
		h.logger.Warn("Dropping malformed change notification", slog.String("channel", n.Channel), slog.Any("error", err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[subscriptionKey{table: event.Table, userID: event.UserID}] {
		sub.deliver(event)
	}
}

func (h *Hub) broadcast(build func(subscriptionKey) Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key, set := range h.subs {
		event := build(key)
		for sub := range set {
			sub.deliver(event)
		}
	}
}

// Subscribe returns a subscription receiving changes to table rows owned by
// userID. The caller must Close it.
func (h *Hub) Subscribe(table Table, userID string) *Subscription {
	sub := &Subscription{
		hub: h,
		key: subscriptionKey{table: table, userID: userID},
		ch:  make(chan Event, 1),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.ch)
		sub.done = true
		return sub
	}

	set, ok := h.subs[sub.key]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[sub.key] = set
	}
	set[sub] = struct{}{}

	return sub
}

// Subscribers reports how many subscriptions are open.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, set := range h.subs {
		n += len(set)
	}

	return n
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub.done {
		return
	}

	if set, ok := h.subs[sub.key]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.key)
		}
	}

	sub.done = true
	close(sub.ch)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	for key, set := range h.subs {
		for sub := range set {
			sub.done = true
			close(sub.ch)
		}
		delete(h.subs, key)
	}
}

// Subscription is a feed filtered to one user's row in one table. Only the
// newest undelivered event is kept: under last-write-wins older ones are
// superseded anyway.
type Subscription struct {
	hub  *Hub
	key  subscriptionKey
	ch   chan Event
	done bool // guarded by hub.mu
	once sync.Once
}

// C is closed when the subscription or the hub is closed.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// deliver is called with hub.mu held.
func (s *Subscription) deliver(event Event) {
	if s.done {
		return
	}

	select {
	case s.ch <- event:
		return
	default:
	}

	// replace the pending event
	select {
	case <-s.ch:
	default:
	}

	select {
	case s.ch <- event:
	default:
	}
}
