package localstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopease/storefront/internal/cache"
	"github.com/shopease/storefront/internal/cart"
	"github.com/shopease/storefront/internal/models"
)

// Store keeps per-client state that does not depend on who is signed in: the
// last cart snapshot and the theme preference.
type Store struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func New(c cache.Cache, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{cache: c, ttl: ttl, logger: logger}
}

// LoadCart returns the stored cart for clientID, or an empty cart when nothing
// usable is stored. Totals are recomputed from the stored items.
func (s *Store) LoadCart(ctx context.Context, clientID string) cart.State {
	var stored cart.State

	found, err := s.cache.Get(ctx, cache.Key(cache.CartKeyPrefix, clientID), &stored)
	if err != nil {
		s.logger.Warn("Discarding unreadable local cart", slog.String("client_id", clientID), slog.Any("error", err))
		return cart.InitialState()
	}

	if !found {
		return cart.InitialState()
	}

	return cart.NewState(stored.Items)
}

func (s *Store) SaveCart(ctx context.Context, clientID string, state cart.State) error {
	if err := s.cache.Set(ctx, cache.Key(cache.CartKeyPrefix, clientID), state, s.ttl); err != nil {
		return fmt.Errorf("failed to save local cart: %w", err)
	}

	return nil
}

// LoadTheme defaults to light.
func (s *Store) LoadTheme(ctx context.Context, clientID string) models.Theme {
	var theme models.Theme

	found, err := s.cache.Get(ctx, cache.Key(cache.ThemeKeyPrefix, clientID), &theme)
	if err != nil {
		s.logger.Warn("Discarding unreadable theme", slog.String("client_id", clientID), slog.Any("error", err))
		return models.ThemeLight
	}

	if !found || (theme != models.ThemeLight && theme != models.ThemeDark) {
		return models.ThemeLight
	}

	return theme
}

func (s *Store) SaveTheme(ctx context.Context, clientID string, theme models.Theme) error {
	if err := s.cache.Set(ctx, cache.Key(cache.ThemeKeyPrefix, clientID), theme, s.ttl); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}

	return nil
}

// ToggleTheme flips the stored theme and returns the new one.
func (s *Store) ToggleTheme(ctx context.Context, clientID string) (models.Theme, error) {
	next := s.LoadTheme(ctx, clientID).Toggle()

	if err := s.SaveTheme(ctx, clientID, next); err != nil {
		return "", err
	}

	return next, nil
}
