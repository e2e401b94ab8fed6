package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopease/storefront/internal/cart"
	appErrors "github.com/shopease/storefront/internal/errors"
	"github.com/shopease/storefront/internal/models"
	"github.com/shopease/storefront/internal/syncer"
	"github.com/shopease/storefront/internal/wishlist"
	"golang.org/x/sync/errgroup"
)

// LocalStore persists the cart per client, independent of identity.
// *localstore.Store satisfies it.
type LocalStore interface {
	LoadCart(ctx context.Context, clientID string) cart.State
	SaveCart(ctx context.Context, clientID string, state cart.State) error
}

// Deps are shared by every session of a Manager.
type Deps struct {
	Store       LocalStore
	Carts       syncer.CartStore
	Wishlists   syncer.WishlistStore
	Feed        syncer.Subscriber
	SyncOptions []syncer.Option
	Logger      *slog.Logger
}

// Session is the state of one client: its cart, its wishlist and the sync
// adapters of whichever user the client currently presents. Every transition
// happens under mu; remote writes run outside it on captured snapshots.
type Session struct {
	clientID string
	deps     *Deps
	logger   *slog.Logger

	mu       sync.Mutex
	cart     cart.State
	version  uint64
	wishlist wishlist.State
	userID   string
	cartSync *syncer.CartSyncer
	wishSync *syncer.WishlistSyncer
	lastSeen time.Time
	closed   bool

	persistMu sync.Mutex
	persisted uint64
}

func newSession(clientID string, initial cart.State, deps *Deps, now time.Time) *Session {
	return &Session{
		clientID: clientID,
		deps:     deps,
		logger:   deps.Logger.With(slog.String("client_id", clientID)),
		cart:     initial,
		wishlist: wishlist.InitialState(),
		lastSeen: now,
	}
}

func (s *Session) ClientID() string {
	return s.clientID
}

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.userID
}

func (s *Session) Cart() cart.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart
}

func (s *Session) WishlistProductIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wishlist.IDs()
}

func (s *Session) IsInWishlist(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wishlist.Contains(productID)
}

func (s *Session) AddItem(ctx context.Context, item models.CartLineItem, quantity int) cart.State {
	if quantity < 1 {
		quantity = 1
	}

	return s.dispatch(ctx, cart.AddItem(item, quantity))
}

func (s *Session) RemoveItem(ctx context.Context, productID int64) cart.State {
	return s.dispatch(ctx, cart.RemoveItem(productID))
}

// UpdateQuantity sets the quantity of a line, floored at 1.
func (s *Session) UpdateQuantity(ctx context.Context, productID int64, quantity int) cart.State {
	return s.dispatch(ctx, cart.UpdateQuantity(productID, max(quantity, 1)))
}

func (s *Session) ClearCart(ctx context.Context) cart.State {
	return s.dispatch(ctx, cart.ClearCart())
}

// dispatch applies local actions as one transition: the new state goes to the
// local store and, for a signed-in user, into the debounced remote write.
func (s *Session) dispatch(ctx context.Context, actions ...cart.Action) cart.State {
	s.mu.Lock()
	next, version := s.reduceLocked(actions...)
	s.mu.Unlock()

	s.persist(ctx, next, version)

	return next
}

func (s *Session) reduceLocked(actions ...cart.Action) (cart.State, uint64) {
	next := s.cart
	for _, action := range actions {
		next = cart.Reduce(next, action)
	}

	s.cart = next
	s.version++

	if s.cartSync != nil {
		s.cartSync.Schedule(next.Items)
	}

	return next, s.version
}

// TakeCart empties the cart and returns what it held, in one step. An empty
// cart is returned as is and nothing is written.
func (s *Session) TakeCart(ctx context.Context) cart.State {
	s.mu.Lock()
	taken := s.cart
	if len(taken.Items) == 0 {
		s.mu.Unlock()
		return taken
	}

	next, version := s.reduceLocked(cart.ClearCart())
	s.mu.Unlock()

	s.persist(ctx, next, version)

	return taken
}

// RestoreCart adds items taken by TakeCart back, merged with whatever the
// cart gained since.
func (s *Session) RestoreCart(ctx context.Context, items []models.CartLineItem) cart.State {
	actions := make([]cart.Action, 0, len(items))
	for _, item := range items {
		actions = append(actions, cart.AddItem(item, item.Quantity))
	}

	return s.dispatch(ctx, actions...)
}

// persist writes state unless a newer version was already written.
func (s *Session) persist(ctx context.Context, state cart.State, version uint64) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if version <= s.persisted {
		return
	}
	s.persisted = version

	if err := s.deps.Store.SaveCart(context.WithoutCancel(ctx), s.clientID, state); err != nil {
		s.logger.Warn("Failed to persist local cart", slog.Any("error", err))
	}
}

// ToggleWishlist adds or removes productID and writes the list right away.
// Anonymous clients get an UnauthorizedError. A failed write is logged by the
// syncer; the new local state is returned regardless.
func (s *Session) ToggleWishlist(ctx context.Context, productID int64) ([]int64, error) {
	s.mu.Lock()
	if s.userID == "" || s.wishSync == nil {
		s.mu.Unlock()
		return nil, appErrors.UnauthorizedError("Please login to use wishlist")
	}

	s.wishlist = s.wishlist.Toggle(productID)
	ids := s.wishlist.IDs()
	ws := s.wishSync
	s.mu.Unlock()

	_ = ws.Write(ctx, ids)

	return ids, nil
}

// ClearWishlist empties the wishlist and writes the empty list. No-op for
// anonymous clients.
func (s *Session) ClearWishlist(ctx context.Context) {
	s.mu.Lock()
	if s.userID == "" || s.wishSync == nil {
		s.mu.Unlock()
		return
	}

	s.wishlist = wishlist.InitialState()
	ws := s.wishSync
	s.mu.Unlock()

	_ = ws.Write(ctx, []int64{})
}

// Identify switches the session to userID ("" for anonymous). The previous
// user's adapters are torn down first; then the new user's cart and wishlist
// are fetched. A user without a remote cart adopts the local one.
func (s *Session) Identify(ctx context.Context, userID string) {
	s.mu.Lock()
	if s.closed || s.userID == userID {
		s.mu.Unlock()
		return
	}

	oldCart, oldWish := s.cartSync, s.wishSync
	s.cartSync, s.wishSync = nil, nil
	s.userID = userID
	s.wishlist = wishlist.InitialState()

	var (
		cs *syncer.CartSyncer
		ws *syncer.WishlistSyncer
	)

	if userID != "" {
		opts := append([]syncer.Option{syncer.WithLogger(s.logger)}, s.deps.SyncOptions...)
		cs = syncer.NewCartSyncer(userID, s.deps.Carts, s.deps.Feed, func(items []models.CartLineItem) {
			s.applyRemoteCart(cs, items)
		}, opts...)
		ws = syncer.NewWishlistSyncer(userID, s.deps.Wishlists, s.deps.Feed, func(ids []int64) {
			s.applyRemoteWishlist(ws, ids)
		}, opts...)
		s.cartSync, s.wishSync = cs, ws
	}
	s.mu.Unlock()

	s.logger.Info("Session identity changed", slog.String("user_id", userID))

	if oldCart != nil {
		oldCart.Close()
	}
	if oldWish != nil {
		oldWish.Close()
	}

	if userID == "" {
		return
	}

	cs.Start()
	ws.Start()

	var (
		items     []models.CartLineItem
		cartFound bool
		ids       []int64
		wishFound bool
	)

	// a client hanging up mid-request must not abort the bootstrap
	bootCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.Go(func() error {
		items, cartFound = cs.Bootstrap(bootCtx)
		return nil
	})
	g.Go(func() error {
		ids, wishFound = ws.Bootstrap(bootCtx)
		return nil
	})
	_ = g.Wait()

	if cartFound {
		s.applyRemoteCart(cs, items)
	} else {
		s.mu.Lock()
		if s.cartSync == cs {
			cs.Schedule(s.cart.Items)
		}
		s.mu.Unlock()
	}

	if wishFound {
		s.applyRemoteWishlist(ws, ids)
	}
}

// applyRemoteCart overwrites the cart with a remote list. It is not written
// back upstream, and a local write still waiting on the debounce is dropped
// since it holds the list the push replaced.
func (s *Session) applyRemoteCart(cs *syncer.CartSyncer, items []models.CartLineItem) {
	s.mu.Lock()
	if s.cartSync != cs {
		s.mu.Unlock()
		return
	}

	if cs.CancelPending() {
		s.logger.Debug("Remote cart superseded a pending write")
	}

	next := cart.Reduce(s.cart, cart.SetCart(items))
	s.cart = next
	s.version++
	version := s.version
	s.mu.Unlock()

	s.persist(context.Background(), next, version)
}

func (s *Session) applyRemoteWishlist(ws *syncer.WishlistSyncer, ids []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wishSync != ws {
		return
	}

	s.wishlist = wishlist.FromIDs(ids)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeen = now
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return now.Sub(s.lastSeen)
}

// Flush writes a pending debounced cart write now. Used on shutdown, where
// the session ends without the client changing identity.
func (s *Session) Flush() {
	s.mu.Lock()
	cs := s.cartSync
	s.mu.Unlock()

	if cs != nil {
		cs.Flush()
	}
}

// Close tears down the sync adapters. A pending debounced cart write is
// dropped, as on any identity change.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.closed = true
	cs, ws := s.cartSync, s.wishSync
	s.cartSync, s.wishSync = nil, nil
	s.mu.Unlock()

	if cs != nil {
		cs.Close()
	}
	if ws != nil {
		ws.Close()
	}
}
