package syncer

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/shopease/storefront/internal/feed"
	"github.com/shopease/storefront/internal/metrics"
	"github.com/shopease/storefront/internal/models"
	"github.com/shopease/storefront/internal/scheduler"
)

// CartStore is the part of the cart repository the syncer needs.
type CartStore interface {
	GetCartByUserID(ctx context.Context, userID string) (*models.RemoteCartRecord, error)
	UpsertCart(ctx context.Context, cart *models.RemoteCartRecord) error
}

// ApplyCartFunc receives remote item lists that must overwrite local state.
type ApplyCartFunc func(items []models.CartLineItem)

// CartSyncer replicates one user's cart: a debounced upsert of the full item
// list upstream, and change feed pushes downstream. It is bound to a single
// user id for its whole life; an identity change means Close and a new syncer.
type CartSyncer struct {
	userID   string
	store    CartStore
	hub      Subscriber
	apply    ApplyCartFunc
	debounce *scheduler.Debouncer
	opts     options
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	sub    *feed.Subscription
	closed bool
	wg     sync.WaitGroup
}

func NewCartSyncer(userID string, store CartStore, hub Subscriber, apply ApplyCartFunc, opts ...Option) *CartSyncer {
	o := buildOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())

	return &CartSyncer{
		userID:   userID,
		store:    store,
		hub:      hub,
		apply:    apply,
		debounce: scheduler.NewDebouncer(o.debounce, o.debouncerOpts...),
		opts:     o,
		logger:   o.logger.With(slog.String("sync", metrics.KindCart), slog.String("user_id", userID)),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *CartSyncer) UserID() string {
	return c.userID
}

// Start subscribes to the user's cart row. Call it before Bootstrap so no
// update between the fetch and the subscription is missed.
func (c *CartSyncer) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.sub != nil || c.hub == nil {
		return
	}

	c.sub = c.hub.Subscribe(feed.TableCarts, c.userID)

	c.wg.Add(1)
	go c.pump(c.sub)
}

// Bootstrap reads the user's remote cart. found is false when the user has no
// row yet or the read failed; the caller keeps its local state then.
func (c *CartSyncer) Bootstrap(ctx context.Context) (items []models.CartLineItem, found bool) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.writeTimeout)
	defer cancel()

	record, err := c.store.GetCartByUserID(ctx, c.userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.logger.Error("Failed to fetch remote cart", slog.Any("error", err))
		}
		return nil, false
	}

	return record.Items, true
}

// Schedule queues an upsert of items. Calls inside the debounce window
// replace each other, so only the last list is written.
func (c *CartSyncer) Schedule(items []models.CartLineItem) {
	if c.isClosed() {
		return
	}

	snapshot := slices.Clone(items)
	if snapshot == nil {
		snapshot = []models.CartLineItem{}
	}

	c.debounce.Schedule(func() {
		c.write(snapshot)
	})
}

// Pending reports whether a write is waiting for the debounce delay.
func (c *CartSyncer) Pending() bool {
	return c.debounce.Pending()
}

// CancelPending drops a queued write without running it. A remote push calls
// it so the superseded list is never written back.
func (c *CartSyncer) CancelPending() bool {
	return c.debounce.Cancel()
}

// Flush writes a queued list now instead of after the delay.
func (c *CartSyncer) Flush() bool {
	if c.isClosed() {
		return false
	}

	return c.debounce.Flush()
}

func (c *CartSyncer) write(items []models.CartLineItem) {
	ctx, cancel := context.WithTimeout(c.ctx, c.opts.writeTimeout)
	defer cancel()

	err := c.store.UpsertCart(ctx, &models.RemoteCartRecord{UserID: c.userID, Items: items})
	metrics.RecordSyncWrite(metrics.KindCart, err)

	if err != nil {
		c.logger.Error("Failed to sync cart", slog.Int("items", len(items)), slog.Any("error", err))
		return
	}

	c.logger.Debug("Cart synced", slog.Int("items", len(items)))
}

func (c *CartSyncer) pump(sub *feed.Subscription) {
	defer c.wg.Done()

	for event := range sub.C() {
		c.handle(event)
	}
}

func (c *CartSyncer) handle(event feed.Event) {
	if event.HasRecord() {
		items, err := feed.DecodeCartItems(event)
		if err != nil {
			c.logger.Warn("Ignoring undecodable cart push", slog.Any("error", err))
			return
		}

		c.push(items)
		return
	}

	// oversized payload or reconnect: read the row
	ctx, cancel := context.WithTimeout(c.ctx, c.opts.writeTimeout)
	defer cancel()

	record, err := c.store.GetCartByUserID(ctx, c.userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) && !errors.Is(err, context.Canceled) {
			c.logger.Error("Failed to refetch remote cart", slog.Bool("resync", event.Resync), slog.Any("error", err))
		}
		return
	}

	c.push(record.Items)
}

func (c *CartSyncer) push(items []models.CartLineItem) {
	if c.isClosed() {
		return
	}

	metrics.RecordSyncPush(metrics.KindCart)
	c.apply(items)
}

func (c *CartSyncer) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// Close cancels a pending write, ends the subscription and waits for the
// push loop to stop. It must not be called while holding a lock that apply
// takes.
func (c *CartSyncer) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	sub := c.sub
	c.mu.Unlock()

	if c.debounce.Cancel() {
		c.logger.Debug("Dropped pending cart write on teardown")
	}

	c.cancel()

	if sub != nil {
		sub.Close()
	}

	c.wg.Wait()
}
