package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shopease/storefront/internal/api/middleware"
	"github.com/shopease/storefront/internal/errors"
	"github.com/shopease/storefront/internal/models"
	"github.com/shopease/storefront/internal/utils/response"
)

// ThemeStore keeps the colour scheme per client. *localstore.Store satisfies it.
type ThemeStore interface {
	LoadTheme(ctx context.Context, clientID string) models.Theme
	ToggleTheme(ctx context.Context, clientID string) (models.Theme, error)
}

type ThemeHandler struct {
	store ThemeStore
}

func NewThemeHandler(store ThemeStore) *ThemeHandler {
	return &ThemeHandler{store: store}
}

func (h *ThemeHandler) GetTheme() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		theme := h.store.LoadTheme(r.Context(), middleware.ClientIDFromContext(r.Context()))

		response.Success(w, http.StatusOK, &models.ThemeResponse{Theme: theme})
	}
}

func (h *ThemeHandler) ToggleTheme() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		theme, err := h.store.ToggleTheme(r.Context(), middleware.ClientIDFromContext(r.Context()))
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to save theme", slog.Any("error", err))
			response.Error(w, errors.ThirdPartyError("Failed to save theme").WithError(err))
			return
		}

		response.Success(w, http.StatusOK, &models.ThemeResponse{Theme: theme})
	}
}
