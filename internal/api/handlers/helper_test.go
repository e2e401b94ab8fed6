package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopease/storefront/internal/cart"
	"github.com/shopease/storefront/internal/feed"
	repoMocks "github.com/shopease/storefront/internal/repositories/mocks"
	"github.com/shopease/storefront/internal/scheduler"
	"github.com/shopease/storefront/internal/session"
	"github.com/shopease/storefront/internal/syncer"
	"github.com/shopease/storefront/internal/utils/response"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu    sync.Mutex
	carts map[string]cart.State
}

func (m *memStore) LoadCart(_ context.Context, clientID string) cart.State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state, ok := m.carts[clientID]; ok {
		return state
	}

	return cart.InitialState()
}

func (m *memStore) SaveCart(_ context.Context, clientID string, state cart.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.carts[clientID] = state
	return nil
}

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

// neverFire keeps debounced cart writes pending for the whole test.
func neverFire(time.Duration, func()) scheduler.Timer { return idleTimer{} }

type sessionFixture struct {
	carts     *repoMocks.CartRepository
	wishlists *repoMocks.WishlistRepository
	manager   *session.Manager
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		carts:     repoMocks.NewCartRepository(t),
		wishlists: repoMocks.NewWishlistRepository(t),
	}

	f.manager = session.NewManager(session.Deps{
		Store:       &memStore{carts: make(map[string]cart.State)},
		Carts:       f.carts,
		Wishlists:   f.wishlists,
		Feed:        feed.NewHub(nil),
		SyncOptions: []syncer.Option{syncer.WithDebouncerOptions(scheduler.WithAfterFunc(neverFire))},
	}, time.Hour)

	t.Cleanup(f.manager.Close)

	return f
}

// decodeData unwraps the success envelope into dest.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}

	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.True(t, envelope.Success, "expected a success envelope")
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) *response.ErrorResponse {
	t.Helper()

	var envelope response.APIResponse

	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)

	return envelope.Error
}
