package syncer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/shopease/storefront/internal/feed"
	"github.com/shopease/storefront/internal/metrics"
	"github.com/shopease/storefront/internal/models"
)

type WishlistStore interface {
	GetWishlistByUserID(ctx context.Context, userID string) (*models.RemoteWishlistRecord, error)
	UpsertWishlist(ctx context.Context, wishlist *models.RemoteWishlistRecord) error
}

type ApplyWishlistFunc func(productIDs []int64)

// WishlistSyncer is the wishlist counterpart of CartSyncer. Writes are not
// debounced: every mutation is written right away.
type WishlistSyncer struct {
	userID string
	store  WishlistStore
	hub    Subscriber
	apply  ApplyWishlistFunc
	opts   options
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	sub    *feed.Subscription
	closed bool
	wg     sync.WaitGroup
}

func NewWishlistSyncer(userID string, store WishlistStore, hub Subscriber, apply ApplyWishlistFunc, opts ...Option) *WishlistSyncer {
	o := buildOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())

	return &WishlistSyncer{
		userID: userID,
		store:  store,
		hub:    hub,
		apply:  apply,
		opts:   o,
		logger: o.logger.With(slog.String("sync", metrics.KindWishlist), slog.String("user_id", userID)),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (w *WishlistSyncer) UserID() string {
	return w.userID
}

func (w *WishlistSyncer) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.sub != nil || w.hub == nil {
		return
	}

	w.sub = w.hub.Subscribe(feed.TableWishlists, w.userID)

	w.wg.Add(1)
	go w.pump(w.sub)
}

func (w *WishlistSyncer) Bootstrap(ctx context.Context) (productIDs []int64, found bool) {
	ctx, cancel := context.WithTimeout(ctx, w.opts.writeTimeout)
	defer cancel()

	record, err := w.store.GetWishlistByUserID(ctx, w.userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			w.logger.Error("Failed to fetch remote wishlist", slog.Any("error", err))
		}
		return nil, false
	}

	return record.ProductIDs, true
}

// Write upserts productIDs. The error is logged and counted here; callers
// only need it to decide whether to tell the user.
func (w *WishlistSyncer) Write(ctx context.Context, productIDs []int64) error {
	if w.isClosed() {
		return fmt.Errorf("wishlist syncer for %s is closed", w.userID)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.opts.writeTimeout)
	defer cancel()

	ids := slices.Clone(productIDs)
	if ids == nil {
		ids = []int64{}
	}

	err := w.store.UpsertWishlist(ctx, &models.RemoteWishlistRecord{UserID: w.userID, ProductIDs: ids})
	metrics.RecordSyncWrite(metrics.KindWishlist, err)

	if err != nil {
		w.logger.Error("Failed to sync wishlist", slog.Int("products", len(ids)), slog.Any("error", err))
		return err
	}

	return nil
}

func (w *WishlistSyncer) pump(sub *feed.Subscription) {
	defer w.wg.Done()

	for event := range sub.C() {
		w.handle(event)
	}
}

func (w *WishlistSyncer) handle(event feed.Event) {
	if event.HasRecord() {
		ids, err := feed.DecodeWishlistIDs(event)
		if err != nil {
			w.logger.Warn("Ignoring undecodable wishlist push", slog.Any("error", err))
			return
		}

		w.push(ids)
		return
	}

	ctx, cancel := context.WithTimeout(w.ctx, w.opts.writeTimeout)
	defer cancel()

	record, err := w.store.GetWishlistByUserID(ctx, w.userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) && !errors.Is(err, context.Canceled) {
			w.logger.Error("Failed to refetch remote wishlist", slog.Bool("resync", event.Resync), slog.Any("error", err))
		}
		return
	}

	w.push(record.ProductIDs)
}

func (w *WishlistSyncer) push(ids []int64) {
	if w.isClosed() {
		return
	}

	metrics.RecordSyncPush(metrics.KindWishlist)
	w.apply(ids)
}

func (w *WishlistSyncer) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.closed
}

// Close ends the subscription and waits for the push loop to stop.
func (w *WishlistSyncer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	sub := w.sub
	w.mu.Unlock()

	w.cancel()

	if sub != nil {
		sub.Close()
	}

	w.wg.Wait()
}
