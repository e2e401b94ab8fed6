package syncer

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/shopease/storefront/internal/models"
	"github.com/sony/gobreaker/v2"
)

// Breaker guards the remote store shared by every syncer. After
// consecutive failures it opens and calls fail fast until the cool-down
// elapses, then a single probe decides whether it closes again.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

func NewBreaker(name string, maxFailures uint32, cooldown time.Duration, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// a missing row is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, sql.ErrNoRows)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Remote store breaker changed state",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})}
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) Carts(store CartStore) CartStore {
	return &guardedCarts{breaker: b, store: store}
}

func (b *Breaker) Wishlists(store WishlistStore) WishlistStore {
	return &guardedWishlists{breaker: b, store: store}
}

func guard[T any](b *Breaker, fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return fn()
	})

	var zero T
	if res == nil {
		return zero, err
	}

	return res.(T), err
}

type guardedCarts struct {
	breaker *Breaker
	store   CartStore
}

func (g *guardedCarts) GetCartByUserID(ctx context.Context, userID string) (*models.RemoteCartRecord, error) {
	return guard(g.breaker, func() (*models.RemoteCartRecord, error) {
		return g.store.GetCartByUserID(ctx, userID)
	})
}

func (g *guardedCarts) UpsertCart(ctx context.Context, cart *models.RemoteCartRecord) error {
	_, err := guard(g.breaker, func() (struct{}, error) {
		return struct{}{}, g.store.UpsertCart(ctx, cart)
	})

	return err
}

type guardedWishlists struct {
	breaker *Breaker
	store   WishlistStore
}

func (g *guardedWishlists) GetWishlistByUserID(ctx context.Context, userID string) (*models.RemoteWishlistRecord, error) {
	return guard(g.breaker, func() (*models.RemoteWishlistRecord, error) {
		return g.store.GetWishlistByUserID(ctx, userID)
	})
}

func (g *guardedWishlists) UpsertWishlist(ctx context.Context, wishlist *models.RemoteWishlistRecord) error {
	_, err := guard(g.breaker, func() (struct{}, error) {
		return struct{}{}, g.store.UpsertWishlist(ctx, wishlist)
	})

	return err
}
