package feed_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopease/storefront/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, opts ...feed.HubOption) (*feed.Hub, chan *pq.Notification) {
	t.Helper()

	notifications := make(chan *pq.Notification)
	hub := feed.NewHub(notifications, opts...)

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

func notification(payload string) *pq.Notification {
	return &pq.Notification{Channel: "shopease_changes", Extra: payload}
}

func receive(t *testing.T, sub *feed.Subscription) feed.Event {
	t.Helper()

	select {
	case event, ok := <-sub.C():
		require.True(t, ok, "subscription closed unexpectedly")
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return feed.Event{}
	}
}

func assertNoEvent(t *testing.T, sub *feed.Subscription) {
	t.Helper()

	select {
	case event := <-sub.C():
		t.Fatalf("unexpected event %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_RoutesByTableAndUser(t *testing.T) {
	hub, notifications := startHub(t)

	cartA := hub.Subscribe(feed.TableCarts, "user-a")
	cartB := hub.Subscribe(feed.TableCarts, "user-b")
	wishA := hub.Subscribe(feed.TableWishlists, "user-a")
	defer cartA.Close()
	defer cartB.Close()
	defer wishA.Close()

	notifications <- notification(`{"table":"carts","event":"UPDATE","user_id":"user-a","record":{"user_id":"user-a","items":[]}}`)

	event := receive(t, cartA)
	assert.Equal(t, feed.TableCarts, event.Table)
	assert.Equal(t, "UPDATE", event.Op)
	assert.True(t, event.HasRecord())
	assertNoEvent(t, cartB)
	assertNoEvent(t, wishA)
}

func TestHub_OversizedPayloadHasNoRecord(t *testing.T) {
	hub, notifications := startHub(t)

	sub := hub.Subscribe(feed.TableCarts, "user-a")
	defer sub.Close()

	notifications <- notification(`{"table":"carts","event":"UPDATE","user_id":"user-a"}`)

	event := receive(t, sub)
	assert.False(t, event.HasRecord())
	assert.False(t, event.Resync)
}

func TestHub_MalformedPayloadIsDropped(t *testing.T) {
	hub, notifications := startHub(t)

	sub := hub.Subscribe(feed.TableCarts, "user-a")
	defer sub.Close()

	notifications <- notification(`not json`)
	notifications <- notification(`{"table":"carts","event":"UPDATE"}`)

	assertNoEvent(t, sub)
}

func TestHub_ReconnectBroadcastsResync(t *testing.T) {
	hub, notifications := startHub(t)

	cart := hub.Subscribe(feed.TableCarts, "user-a")
	wish := hub.Subscribe(feed.TableWishlists, "user-b")
	defer cart.Close()
	defer wish.Close()

	notifications <- nil

	cartEvent := receive(t, cart)
	assert.True(t, cartEvent.Resync)
	assert.Equal(t, "user-a", cartEvent.UserID)

	wishEvent := receive(t, wish)
	assert.True(t, wishEvent.Resync)
	assert.Equal(t, feed.TableWishlists, wishEvent.Table)
}

func TestHub_KeepsOnlyNewestPendingEvent(t *testing.T) {
	hub, notifications := startHub(t)

	sub := hub.Subscribe(feed.TableCarts, "user-a")
	defer sub.Close()

	notifications <- notification(`{"table":"carts","event":"UPDATE","user_id":"user-a","record":{"n":1}}`)
	notifications <- notification(`{"table":"carts","event":"UPDATE","user_id":"user-a","record":{"n":2}}`)
	notifications <- notification(`{"table":"carts","event":"UPDATE","user_id":"user-a","record":{"n":3}}`)
	// an unbuffered send only returns once Run took the value; this one
	// guarantees the previous dispatch finished
	notifications <- notification(`{"table":"wishlists","event":"UPDATE","user_id":"nobody"}`)

	event := receive(t, sub)
	assert.JSONEq(t, `{"n":3}`, string(event.Record))
	assertNoEvent(t, sub)
}

func TestSubscription_Close(t *testing.T) {
	hub, _ := startHub(t)

	sub := hub.Subscribe(feed.TableCarts, "user-a")
	require.Equal(t, 1, hub.Subscribers())

	sub.Close()
	sub.Close()

	_, ok := <-sub.C()
	assert.False(t, ok, "channel should be closed")
	assert.Equal(t, 0, hub.Subscribers())
}

func TestHub_RunClosesSubscriptions(t *testing.T) {
	notifications := make(chan *pq.Notification)
	hub := feed.NewHub(notifications)
	sub := hub.Subscribe(feed.TableCarts, "user-a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	_, ok := <-sub.C()
	assert.False(t, ok)

	late := hub.Subscribe(feed.TableCarts, "user-a")
	_, ok = <-late.C()
	assert.False(t, ok, "subscribing after shutdown yields a closed subscription")
	late.Close()
}

type countingPinger struct {
	calls atomic.Int32
}

func (p *countingPinger) Ping() error {
	p.calls.Add(1)
	return errors.New("no connection")
}

func TestHub_PingsWhenIdle(t *testing.T) {
	pinger := &countingPinger{}
	startHub(t, feed.WithPinger(pinger, 10*time.Millisecond))

	assert.Eventually(t, func() bool {
		return pinger.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}
