package syncer_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopease/storefront/internal/feed"
	"github.com/shopease/storefront/internal/models"
	"github.com/shopease/storefront/internal/repositories/mocks"
	"github.com/shopease/storefront/internal/scheduler"
	"github.com/shopease/storefront/internal/syncer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// manualClock keeps debounce timers until the test fires them.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true

	return active
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) scheduler.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	timer := &manualTimer{fn: f}
	c.timers = append(c.timers, timer)

	return timer
}

func (c *manualClock) fireAll() {
	c.mu.Lock()
	timers := append([]*manualTimer(nil), c.timers...)
	c.mu.Unlock()

	for _, timer := range timers {
		if !timer.stopped && !timer.fired {
			timer.fired = true
			timer.fn()
		}
	}
}

func lines(n int) []models.CartLineItem {
	items := make([]models.CartLineItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, models.CartLineItem{ProductID: int64(i), UnitPrice: decimal.NewFromInt(1), Quantity: 1})
	}

	return items
}

func startHub(t *testing.T) (*feed.Hub, chan *pq.Notification) {
	t.Helper()

	notifications := make(chan *pq.Notification)
	hub := feed.NewHub(notifications)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		hub.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return hub, notifications
}

func TestCartSyncer_DebouncedWrites(t *testing.T) {
	t.Run("N changes in the window produce one write with the Nth state", func(t *testing.T) {
		// Arrange
		store := mocks.NewCartRepository(t)
		clock := &manualClock{}
		cs := syncer.NewCartSyncer("user-1", store, nil, func([]models.CartLineItem) {},
			syncer.WithDebouncerOptions(scheduler.WithAfterFunc(clock.AfterFunc)))
		defer cs.Close()

		store.On("UpsertCart", mock.Anything, mock.MatchedBy(func(r *models.RemoteCartRecord) bool {
			return r.UserID == "user-1" && len(r.Items) == 5
		})).Return(nil).Once()

		// Act
		for n := 1; n <= 5; n++ {
			cs.Schedule(lines(n))
		}
		clock.fireAll()

		// Assert
		store.AssertNumberOfCalls(t, "UpsertCart", 1)
	})

	t.Run("Snapshot is taken at schedule time", func(t *testing.T) {
		store := mocks.NewCartRepository(t)
		clock := &manualClock{}
		cs := syncer.NewCartSyncer("user-1", store, nil, func([]models.CartLineItem) {},
			syncer.WithDebouncerOptions(scheduler.WithAfterFunc(clock.AfterFunc)))
		defer cs.Close()

		items := lines(2)
		store.On("UpsertCart", mock.Anything, mock.MatchedBy(func(r *models.RemoteCartRecord) bool {
			return r.Items[0].Quantity == 1
		})).Return(nil).Once()

		cs.Schedule(items)
		items[0].Quantity = 99
		clock.fireAll()
	})

	t.Run("Empty cart writes an empty list", func(t *testing.T) {
		store := mocks.NewCartRepository(t)
		clock := &manualClock{}
		cs := syncer.NewCartSyncer("user-1", store, nil, func([]models.CartLineItem) {},
			syncer.WithDebouncerOptions(scheduler.WithAfterFunc(clock.AfterFunc)))
		defer cs.Close()

		store.On("UpsertCart", mock.Anything, mock.MatchedBy(func(r *models.RemoteCartRecord) bool {
			return r.Items != nil && len(r.Items) == 0
		})).Return(nil).Once()

		cs.Schedule(nil)
		clock.fireAll()
	})

	t.Run("Failed write is not retried", func(t *testing.T) {
		store := mocks.NewCartRepository(t)
		clock := &manualClock{}
		cs := syncer.NewCartSyncer("user-1", store, nil, func([]models.CartLineItem) {},
			syncer.WithDebouncerOptions(scheduler.WithAfterFunc(clock.AfterFunc)))
		defer cs.Close()

		store.On("UpsertCart", mock.Anything, mock.Anything).Return(errors.New("network down")).Once()

		cs.Schedule(lines(1))
		clock.fireAll()
		clock.fireAll()

		assert.False(t, cs.Pending())
	})

	t.Run("Close drops the pending write", func(t *testing.T) {
		store := mocks.NewCartRepository(t)
		clock := &manualClock{}
		cs := syncer.NewCartSyncer("user-1", store, nil, func([]models.CartLineItem) {},
			syncer.WithDebouncerOptions(scheduler.WithAfterFunc(clock.AfterFunc)))

		cs.Schedule(lines(3))
		require.True(t, cs.Pending())

		cs.Close()
		clock.fireAll()
		cs.Schedule(lines(4))

		assert.False(t, cs.Pending())
		store.AssertNotCalled(t, "UpsertCart", mock.Anything, mock.Anything)
	})

	t.Run("CancelPending drops the queued list", func(t *testing.T) {
		store := mocks.NewCartRepository(t)
		clock := &manualClock{}
		cs := syncer.NewCartSyncer("user-1", store, nil, func([]models.CartLineItem) {},
			syncer.WithDebouncerOptions(scheduler.WithAfterFunc(clock.AfterFunc)))
		defer cs.Close()

		cs.Schedule(lines(3))

		assert.True(t, cs.CancelPending())
		clock.fireAll()

		assert.False(t, cs.Pending())
		store.AssertNotCalled(t, "UpsertCart", mock.Anything, mock.Anything)
	})

	t.Run("Flush writes the queued list immediately", func(t *testing.T) {
		store := mocks.NewCartRepository(t)
		clock := &manualClock{}
		cs := syncer.NewCartSyncer("user-1", store, nil, func([]models.CartLineItem) {},
			syncer.WithDebouncerOptions(scheduler.WithAfterFunc(clock.AfterFunc)))
		defer cs.Close()

		store.On("UpsertCart", mock.Anything, mock.MatchedBy(func(r *models.RemoteCartRecord) bool {
			return r.UserID == "user-1" && len(r.Items) == 2
		})).Return(nil).Once()

		cs.Schedule(lines(2))

		assert.True(t, cs.Flush())
		clock.fireAll()

		assert.False(t, cs.Pending())
		assert.False(t, cs.Flush())
	})

	t.Run("Real timer coalesces", func(t *testing.T) {
		store := mocks.NewCartRepository(t)
		cs := syncer.NewCartSyncer("user-1", store, nil, func([]models.CartLineItem) {}, syncer.WithDebounce(20*time.Millisecond))
		defer cs.Close()

		written := make(chan struct{}, 1)
		store.On("UpsertCart", mock.Anything, mock.MatchedBy(func(r *models.RemoteCartRecord) bool {
			return len(r.Items) == 3
		})).Run(func(mock.Arguments) { written <- struct{}{} }).Return(nil).Once()

		cs.Schedule(lines(1))
		cs.Schedule(lines(2))
		cs.Schedule(lines(3))

		select {
		case <-written:
		case <-time.After(time.Second):
			t.Fatal("debounced write did not happen")
		}
	})
}

func TestCartSyncer_Bootstrap(t *testing.T) {
	ctx := t.Context()

	t.Run("Found", func(t *testing.T) {
		store := mocks.NewCartRepository(t)
		cs := syncer.NewCartSyncer("user-1", store, nil, nil)
		defer cs.Close()

		store.On("GetCartByUserID", mock.Anything, "user-1").
			Return(&models.RemoteCartRecord{UserID: "user-1", Items: lines(2)}, nil).Once()

		items, found := cs.Bootstrap(ctx)

		assert.True(t, found)
		assert.Len(t, items, 2)
	})

	t.Run("No row yet", func(t *testing.T) {
		store := mocks.NewCartRepository(t)
		cs := syncer.NewCartSyncer("user-1", store, nil, nil)
		defer cs.Close()

		store.On("GetCartByUserID", mock.Anything, "user-1").Return(nil, sql.ErrNoRows).Once()

		items, found := cs.Bootstrap(ctx)

		assert.False(t, found)
		assert.Nil(t, items)
	})

	t.Run("Network error keeps local state", func(t *testing.T) {
		store := mocks.NewCartRepository(t)
		cs := syncer.NewCartSyncer("user-1", store, nil, nil)
		defer cs.Close()

		store.On("GetCartByUserID", mock.Anything, "user-1").Return(nil, errors.New("i/o timeout")).Once()

		_, found := cs.Bootstrap(ctx)

		assert.False(t, found)
	})
}

func TestCartSyncer_Pushes(t *testing.T) {
	newSyncer := func(t *testing.T, store *mocks.CartRepository, hub *feed.Hub) (*syncer.CartSyncer, chan []models.CartLineItem) {
		applied := make(chan []models.CartLineItem, 4)
		cs := syncer.NewCartSyncer("user-1", store, hub, func(items []models.CartLineItem) {
			applied <- items
		})
		cs.Start()
		t.Cleanup(cs.Close)

		return cs, applied
	}

	waitApplied := func(t *testing.T, applied chan []models.CartLineItem) []models.CartLineItem {
		t.Helper()

		select {
		case items := <-applied:
			return items
		case <-time.After(time.Second):
			t.Fatal("push was not applied")
			return nil
		}
	}

	t.Run("Record in payload", func(t *testing.T) {
		hub, notifications := startHub(t)
		_, applied := newSyncer(t, mocks.NewCartRepository(t), hub)

		notifications <- &pq.Notification{Extra: `{"table":"carts","event":"UPDATE","user_id":"user-1","record":{"user_id":"user-1","items":[{"product_id":3,"unit_price":"2","quantity":4}]}}`}

		items := waitApplied(t, applied)
		require.Len(t, items, 1)
		assert.Equal(t, int64(3), items[0].ProductID)
	})

	t.Run("Empty push overwrites", func(t *testing.T) {
		hub, notifications := startHub(t)
		_, applied := newSyncer(t, mocks.NewCartRepository(t), hub)

		notifications <- &pq.Notification{Extra: `{"table":"carts","event":"UPDATE","user_id":"user-1","record":{"user_id":"user-1","items":[]}}`}

		items := waitApplied(t, applied)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("Oversized payload reads the row", func(t *testing.T) {
		hub, notifications := startHub(t)
		store := mocks.NewCartRepository(t)
		store.On("GetCartByUserID", mock.Anything, "user-1").
			Return(&models.RemoteCartRecord{UserID: "user-1", Items: lines(3)}, nil).Once()
		_, applied := newSyncer(t, store, hub)

		notifications <- &pq.Notification{Extra: `{"table":"carts","event":"UPDATE","user_id":"user-1"}`}

		assert.Len(t, waitApplied(t, applied), 3)
	})

	t.Run("Other users are ignored", func(t *testing.T) {
		hub, notifications := startHub(t)
		_, applied := newSyncer(t, mocks.NewCartRepository(t), hub)

		notifications <- &pq.Notification{Extra: `{"table":"carts","event":"UPDATE","user_id":"user-2","record":{"items":[]}}`}

		select {
		case <-applied:
			t.Fatal("push for another user was applied")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("Close unsubscribes", func(t *testing.T) {
		hub, _ := startHub(t)
		cs, _ := newSyncer(t, mocks.NewCartRepository(t), hub)
		require.Equal(t, 1, hub.Subscribers())

		cs.Close()

		assert.Equal(t, 0, hub.Subscribers())
	})
}

func TestWishlistSyncer(t *testing.T) {
	ctx := t.Context()

	t.Run("Write is immediate", func(t *testing.T) {
		store := mocks.NewWishlistRepository(t)
		ws := syncer.NewWishlistSyncer("user-1", store, nil, nil)
		defer ws.Close()

		store.On("UpsertWishlist", mock.Anything, &models.RemoteWishlistRecord{UserID: "user-1", ProductIDs: []int64{7}}).Return(nil).Once()

		require.NoError(t, ws.Write(ctx, []int64{7}))
	})

	t.Run("Clear writes an empty list", func(t *testing.T) {
		store := mocks.NewWishlistRepository(t)
		ws := syncer.NewWishlistSyncer("user-1", store, nil, nil)
		defer ws.Close()

		store.On("UpsertWishlist", mock.Anything, &models.RemoteWishlistRecord{UserID: "user-1", ProductIDs: []int64{}}).Return(nil).Once()

		require.NoError(t, ws.Write(ctx, nil))
	})

	t.Run("Write error is returned", func(t *testing.T) {
		store := mocks.NewWishlistRepository(t)
		ws := syncer.NewWishlistSyncer("user-1", store, nil, nil)
		defer ws.Close()

		dbErr := errors.New("conflict")
		store.On("UpsertWishlist", mock.Anything, mock.Anything).Return(dbErr).Once()

		assert.ErrorIs(t, ws.Write(ctx, []int64{1}), dbErr)
	})

	t.Run("Closed syncer does not write", func(t *testing.T) {
		store := mocks.NewWishlistRepository(t)
		ws := syncer.NewWishlistSyncer("user-1", store, nil, nil)
		ws.Close()

		assert.Error(t, ws.Write(ctx, []int64{1}))
	})

	t.Run("Bootstrap", func(t *testing.T) {
		store := mocks.NewWishlistRepository(t)
		ws := syncer.NewWishlistSyncer("user-1", store, nil, nil)
		defer ws.Close()

		store.On("GetWishlistByUserID", mock.Anything, "user-1").
			Return(&models.RemoteWishlistRecord{UserID: "user-1", ProductIDs: []int64{4, 5}}, nil).Once()
		store.On("GetWishlistByUserID", mock.Anything, "user-1").Return(nil, sql.ErrNoRows).Once()

		ids, found := ws.Bootstrap(ctx)
		assert.True(t, found)
		assert.Equal(t, []int64{4, 5}, ids)

		_, found = ws.Bootstrap(ctx)
		assert.False(t, found)
	})

	t.Run("Push applies ids", func(t *testing.T) {
		hub, notifications := startHub(t)
		applied := make(chan []int64, 1)
		ws := syncer.NewWishlistSyncer("user-1", mocks.NewWishlistRepository(t), hub, func(ids []int64) {
			applied <- ids
		})
		ws.Start()
		defer ws.Close()

		notifications <- &pq.Notification{Extra: `{"table":"wishlists","event":"UPDATE","user_id":"user-1","record":{"product_ids":[9,2]}}`}

		select {
		case ids := <-applied:
			assert.Equal(t, []int64{9, 2}, ids)
		case <-time.After(time.Second):
			t.Fatal("push was not applied")
		}
	})
}
