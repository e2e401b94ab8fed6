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

type OrderHandler struct {
	orderService service.OrderService
	sessions     SessionProvider
	validator    *validator.Validate
}

func NewOrderHandler(orderService service.OrderService, sessions SessionProvider) *OrderHandler {
	return &OrderHandler{orderService: orderService, sessions: sessions, validator: validator.New()}
}

// PlaceOrder godoc
//
//	@Summary		Place an order
//	@Description	Turns the caller's cart into an order shipped to the given address, then empties the cart.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			order	body		models.PlaceOrderRequest	true	"Shipping address"
//	@Success		201		{object}	models.Order
//	@Failure		400		{object}	response.ErrorResponse	"Validation error or empty cart"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Security		BearerAuth
//	@Router			/orders [post]
func (h *OrderHandler) PlaceOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req models.PlaceOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid place order input")
			return
		}

		sess := currentSession(r, h.sessions)

		order, err := h.orderService.PlaceOrder(r.Context(), claims.UserID, sess, req.ShippingAddress)
		if err != nil {
			logger.Warn("Failed to place order", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Order placed successfully", slog.String("orderId", order.ID.String()))
		response.Success(w, http.StatusCreated, order)
	}
}

func (h *OrderHandler) ListMyOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		orders, err := h.orderService.ListMyOrders(r.Context(), claims.UserID)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, orders)
	}
}

func (h *OrderHandler) ListAllOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		orders, err := h.orderService.ListAllOrders(r.Context())
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to list all orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, orders)
	}
}

// UpdateOrderStatus godoc
//
//	@Summary	Update order status
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Order ID"	Format(uuid)
//	@Param		status	body		models.UpdateOrderStatusRequest	true	"New status"
//	@Success	200		{object}	models.Order
//	@Failure	403		{object}	response.ErrorResponse	"Admin access required"
//	@Failure	404		{object}	response.ErrorResponse	"Order not found"
//	@Security	BearerAuth
//	@Router		/admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseUUID(r, "id")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid order id").WithDetail(err.Error()))
			return
		}

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.UpdateOrderStatus(r.Context(), id, req.Status)
		if err != nil {
			logger.Error("Failed to update order status", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Order status updated", slog.String("orderId", id.String()), slog.String("status", string(req.Status)))
		response.Success(w, http.StatusOK, order)
	}
}

func (h *OrderHandler) DeleteOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseUUID(r, "id")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid order id").WithDetail(err.Error()))
			return
		}

		if err := h.orderService.DeleteOrder(r.Context(), id); err != nil {
			logger.Error("Failed to delete order", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Order deleted", slog.String("orderId", id.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}

// Dashboard never fails; unavailable figures are zero.
func (h *OrderHandler) Dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, &models.AdminDashboard{
			Stats:         h.orderService.Stats(r.Context()),
			RecentSignups: h.orderService.RecentSignups(r.Context()),
		})
	}
}
