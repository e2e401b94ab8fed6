package handlers

import (
	"log/slog"
	"net/http"

	"github.com/shopease/storefront/internal/api/middleware"
	"github.com/shopease/storefront/internal/errors"
	"github.com/shopease/storefront/internal/models"
	"github.com/shopease/storefront/internal/utils"
	"github.com/shopease/storefront/internal/utils/response"
)

type WishlistHandler struct {
	sessions SessionProvider
}

func NewWishlistHandler(sessions SessionProvider) *WishlistHandler {
	return &WishlistHandler{sessions: sessions}
}

// GetWishlist is empty for anonymous callers.
func (h *WishlistHandler) GetWishlist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := currentSession(r, h.sessions)

		response.Success(w, http.StatusOK, &models.WishlistResponse{ProductIDs: sess.WishlistProductIDs()})
	}
}

func (h *WishlistHandler) Toggle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		productID, err := utils.ParseProductID(r, "productId")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product id").WithDetail(err.Error()))
			return
		}

		sess := currentSession(r, h.sessions)

		ids, err := sess.ToggleWishlist(r.Context(), productID)
		if err != nil {
			logger.Warn("Wishlist toggle rejected", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, &models.WishlistResponse{ProductIDs: ids})
	}
}

func (h *WishlistHandler) IsInWishlist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		productID, err := utils.ParseProductID(r, "productId")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product id").WithDetail(err.Error()))
			return
		}

		sess := currentSession(r, h.sessions)

		response.Success(w, http.StatusOK, &models.WishlistMembershipResponse{
			ProductID:  productID,
			InWishlist: sess.IsInWishlist(productID),
		})
	}
}

func (h *WishlistHandler) Clear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireClaims(w, r); !ok {
			return
		}

		sess := currentSession(r, h.sessions)
		sess.ClearWishlist(r.Context())

		response.Success(w, http.StatusOK, &models.WishlistResponse{ProductIDs: sess.WishlistProductIDs()})
	}
}
