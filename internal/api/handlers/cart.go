package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopease/storefront/internal/api/middleware"
	"github.com/shopease/storefront/internal/errors"
	"github.com/shopease/storefront/internal/models"
	service "github.com/shopease/storefront/internal/services"
	"github.com/shopease/storefront/internal/utils"
	"github.com/shopease/storefront/internal/utils/response"
)

type CartHandler struct {
	sessions  SessionProvider
	catalog   service.CatalogService
	validator *validator.Validate
}

func NewCartHandler(sessions SessionProvider, catalog service.CatalogService) *CartHandler {
	return &CartHandler{sessions: sessions, catalog: catalog, validator: validator.New()}
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := currentSession(r, h.sessions)

		response.Success(w, http.StatusOK, cartResponse(sess.Cart()))
	}
}

// AddItem snapshots the product's current title, price and thumbnail into the
// cart line.
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add to cart input")
			return
		}

		product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
		if err != nil {
			logger.Warn("Failed to load product for cart", slog.Int64("productId", req.ProductID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		quantity := max(req.Quantity, 1)

		sess := currentSession(r, h.sessions)
		state := sess.AddItem(r.Context(), product.LineItem(quantity), quantity)

		logger.Info("Item added to cart", slog.Int64("productId", product.ID), slog.Int("quantity", quantity))
		response.Success(w, http.StatusOK, cartResponse(state))
	}
}

func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		productID, err := utils.ParseProductID(r, "productId")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product id").WithDetail(err.Error()))
			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		sess := currentSession(r, h.sessions)
		state := sess.UpdateQuantity(r.Context(), productID, req.Quantity)

		response.Success(w, http.StatusOK, cartResponse(state))
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		productID, err := utils.ParseProductID(r, "productId")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product id").WithDetail(err.Error()))
			return
		}

		sess := currentSession(r, h.sessions)
		state := sess.RemoveItem(r.Context(), productID)

		response.Success(w, http.StatusOK, cartResponse(state))
	}
}

func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := currentSession(r, h.sessions)

		response.Success(w, http.StatusOK, cartResponse(sess.ClearCart(r.Context())))
	}
}
