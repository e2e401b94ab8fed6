package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopease/storefront/internal/api/handlers"
	appErrors "github.com/shopease/storefront/internal/errors"
	"github.com/shopease/storefront/internal/models"
	service "github.com/shopease/storefront/internal/services"
	"github.com/shopease/storefront/internal/services/mocks"
	"github.com/shopease/storefront/internal/session"
	"github.com/shopease/storefront/internal/testutils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const addressBody = `{"shipping_address":{"full_name":"Asha Rao","street":"12 MG Road","city":"Pune","state":"MH","pincode":"411001","phone":"9876543210"}}`

func setupOrderHandlerTest(t *testing.T) (*handlers.OrderHandler, *mocks.OrderService, *sessionFixture) {
	t.Helper()

	orders := mocks.NewOrderService(t)
	fixture := newSessionFixture(t)

	return handlers.NewOrderHandler(orders, fixture.manager), orders, fixture
}

func TestOrderHandler_PlaceOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, orders, fixture := setupOrderHandlerTest(t)
		fixture.carts.On("GetCartByUserID", mock.Anything, "user-1").Return(&models.RemoteCartRecord{UserID: "user-1", Items: []models.CartLineItem{}}, nil).Once()
		fixture.wishlists.On("GetWishlistByUserID", mock.Anything, "user-1").Return(&models.RemoteWishlistRecord{UserID: "user-1"}, nil).Once()

		placed := &models.Order{ID: uuid.New(), UserID: "user-1", TotalAmount: decimal.NewFromInt(30), Status: models.OrderStatusPlaced}
		orders.On("PlaceOrder", mock.Anything, "user-1",
			mock.MatchedBy(func(c service.Checkout) bool {
				_, ok := c.(*session.Session)
				return ok
			}),
			mock.MatchedBy(func(a models.ShippingAddress) bool { return a.City == "Pune" && a.Pincode == "411001" }),
		).Return(placed, nil).Once()

		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders", strings.NewReader(addressBody), "user-1", models.RoleUser, nil)
		handler.PlaceOrder().ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		var got models.Order
		decodeData(t, rr, &got)
		assert.Equal(t, placed.ID, got.ID)
	})

	t.Run("Requires sign in", func(t *testing.T) {
		handler, _, _ := setupOrderHandlerTest(t)

		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/orders", strings.NewReader(addressBody), nil)
		handler.PlaceOrder().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Invalid address", func(t *testing.T) {
		handler, _, _ := setupOrderHandlerTest(t)

		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders",
			strings.NewReader(`{"shipping_address":{"full_name":"A","pincode":"12"}}`), "user-1", models.RoleUser, nil)
		handler.PlaceOrder().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, appErrors.ErrCodeValidation, decodeError(t, rr).Code)
	})
}

func TestOrderHandler_ListMyOrders(t *testing.T) {
	handler, orders, _ := setupOrderHandlerTest(t)
	orders.On("ListMyOrders", mock.Anything, "user-1").Return([]*models.Order{{ID: uuid.New(), UserID: "user-1"}}, nil).Once()

	rr := httptest.NewRecorder()
	req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/orders", nil, "user-1", models.RoleUser, nil)
	handler.ListMyOrders().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []models.Order
	decodeData(t, rr, &got)
	assert.Len(t, got, 1)
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		pathID     string
		body       string
		setupMock  func(orders *mocks.OrderService)
		wantStatus int
	}{
		{
			name:   "Success",
			pathID: id.String(),
			body:   `{"status":"shipped"}`,
			setupMock: func(orders *mocks.OrderService) {
				orders.On("UpdateOrderStatus", mock.Anything, id, models.OrderStatusShipped).
					Return(&models.Order{ID: id, Status: models.OrderStatusShipped}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Unknown status",
			pathID:     id.String(),
			body:       `{"status":"lost"}`,
			setupMock:  func(*mocks.OrderService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Malformed id",
			pathID:     "not-a-uuid",
			body:       `{"status":"shipped"}`,
			setupMock:  func(*mocks.OrderService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "Order not found",
			pathID: id.String(),
			body:   `{"status":"delivered"}`,
			setupMock: func(orders *mocks.OrderService) {
				orders.On("UpdateOrderStatus", mock.Anything, id, models.OrderStatusDelivered).
					Return(nil, appErrors.NotFoundError("Order not found")).Once()
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, orders, _ := setupOrderHandlerTest(t)
			tt.setupMock(orders)

			rr := httptest.NewRecorder()
			req := testutils.CreateTestRequestWithContext(http.MethodPatch, "/api/v1/admin/orders/"+tt.pathID+"/status",
				strings.NewReader(tt.body), "admin-1", models.RoleAdmin, map[string]string{"id": tt.pathID})
			handler.UpdateOrderStatus().ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestOrderHandler_DeleteOrder(t *testing.T) {
	handler, orders, _ := setupOrderHandlerTest(t)
	id := uuid.New()
	orders.On("DeleteOrder", mock.Anything, id).Return(nil).Once()

	rr := httptest.NewRecorder()
	req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/admin/orders/"+id.String(), nil, "admin-1", models.RoleAdmin, map[string]string{"id": id.String()})
	handler.DeleteOrder().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestOrderHandler_Dashboard(t *testing.T) {
	handler, orders, _ := setupOrderHandlerTest(t)
	orders.On("Stats", mock.Anything).Return(&models.DashboardStats{TotalRevenue: decimal.RequireFromString("120.50"), UserCount: 4, NewOrders: 2}).Once()
	orders.On("RecentSignups", mock.Anything).Return([]models.RecentSignup{}).Once()

	rr := httptest.NewRecorder()
	req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/admin/dashboard", nil, "admin-1", models.RoleAdmin, nil)
	handler.Dashboard().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got models.AdminDashboard
	decodeData(t, rr, &got)
	require.NotNil(t, got.Stats)
	assert.Equal(t, 4, got.Stats.UserCount)
	assert.True(t, decimal.RequireFromString("120.50").Equal(got.Stats.TotalRevenue))
	assert.Empty(t, got.RecentSignups)
}
