package handlers

import (
	"context"
	"net/http"

	"github.com/shopease/storefront/internal/api/middleware"
	"github.com/shopease/storefront/internal/cart"
	"github.com/shopease/storefront/internal/errors"
	"github.com/shopease/storefront/internal/models"
	"github.com/shopease/storefront/internal/session"
	"github.com/shopease/storefront/internal/utils/response"
)

// SessionProvider hands out the session of a client. *session.Manager
// satisfies it.
type SessionProvider interface {
	Get(ctx context.Context, clientID string) *session.Session
}

// currentSession returns the caller's session, switched to the identity the
// request presents.
func currentSession(r *http.Request, sessions SessionProvider) *session.Session {
	ctx := r.Context()
	sess := sessions.Get(ctx, middleware.ClientIDFromContext(ctx))

	userID := ""
	if claims, ok := middleware.ClaimsFromContext(ctx); ok {
		userID = claims.UserID
	}

	sess.Identify(ctx, userID)

	return sess
}

func requireClaims(w http.ResponseWriter, r *http.Request) (*models.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		middleware.LoggerFromContext(r.Context()).Warn("Unauthorized request: missing user claims")
		response.Error(w, errors.UnauthorizedError("Authentication required"))
		return nil, false
	}

	return claims, true
}

func cartResponse(state cart.State) *models.CartResponse {
	return &models.CartResponse{
		Items:      state.Items,
		TotalItems: state.TotalItems,
		TotalPrice: state.TotalPrice,
	}
}
