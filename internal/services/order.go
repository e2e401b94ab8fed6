package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopease/storefront/internal/cart"
	appErrors "github.com/shopease/storefront/internal/errors"
	"github.com/shopease/storefront/internal/models"
	repository "github.com/shopease/storefront/internal/repositories"
	"github.com/shopease/storefront/internal/utils/response"
	"github.com/shopspring/decimal"
)

const recentSignupsLimit = 5

// Checkout is the cart an order is placed from. *session.Session satisfies it.
// TakeCart must read and empty the cart in one step.
type Checkout interface {
	TakeCart(ctx context.Context) cart.State
	RestoreCart(ctx context.Context, items []models.CartLineItem) cart.State
}

type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, checkout Checkout, address models.ShippingAddress) (*models.Order, error)
	ListMyOrders(ctx context.Context, userID string) ([]*models.Order, error)
	ListAllOrders(ctx context.Context) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) *models.DashboardStats
	RecentSignups(ctx context.Context) []models.RecentSignup
}

type orderService struct {
	orderRepo   repository.OrderRepository
	profileRepo repository.ProfileRepository
	validate    *validator.Validate
}

func NewOrderService(orderRepo repository.OrderRepository, profileRepo repository.ProfileRepository) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		profileRepo: profileRepo,
		validate:    validator.New(),
	}
}

// PlaceOrder turns the checkout cart into an order and remembers the address
// on the profile. The cart is emptied up front; if the order cannot be stored
// its lines are put back.
func (s *orderService) PlaceOrder(ctx context.Context, userID string, checkout Checkout, address models.ShippingAddress) (*models.Order, error) {
	if err := s.validate.Struct(address); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, appErrors.ValidationError("Validation failed").WithFieldErrors(response.FieldMessages(validationErrs))
		}
		return nil, appErrors.BadRequestError("Invalid shipping address").WithError(err)
	}

	state := checkout.TakeCart(ctx)
	if len(state.Items) == 0 {
		return nil, appErrors.BadRequestError("Cannot place an order with an empty cart")
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Items:           state.Items,
		TotalAmount:     state.TotalPrice,
		Status:          models.OrderStatusPlaced,
		ShippingAddress: &address,
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		checkout.RestoreCart(ctx, state.Items)
		return nil, appErrors.DatabaseError("Failed to place order").WithError(err)
	}

	s.saveAddress(ctx, userID, address)

	return order, nil
}

// saveAddress stores the address for the next checkout. The order is already
// placed, so failures are only logged.
func (s *orderService) saveAddress(ctx context.Context, userID string, address models.ShippingAddress) {
	profile, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("Failed to load profile for address update", slog.String("user_id", userID), slog.Any("error", err))
			return
		}
		profile = &models.Profile{ID: userID, FullName: address.FullName, Phone: address.Phone, Role: models.RoleUser}
	}

	profile.ShippingAddress = &address

	if err := s.profileRepo.UpsertProfile(ctx, profile); err != nil {
		slog.Warn("Failed to save shipping address", slog.String("user_id", userID), slog.Any("error", err))
	}
}

func (s *orderService) ListMyOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	orders, err := s.orderRepo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, nil
}

func (s *orderService) ListAllOrders(ctx context.Context) ([]*models.Order, error) {
	orders, err := s.orderRepo.ListAllOrders(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	order, err := s.orderRepo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to update order status").WithError(err)
	}

	return order, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Order not found").WithError(err)
		}
		return appErrors.DatabaseError("Failed to delete order").WithError(err)
	}

	return nil
}

// Stats never fails; any figure that cannot be read is reported as zero.
func (s *orderService) Stats(ctx context.Context) *models.DashboardStats {
	stats := &models.DashboardStats{TotalRevenue: decimal.Zero}

	revenue, newOrders, err := s.orderRepo.GetOrderTotals(ctx)
	if err != nil {
		slog.Warn("Failed to compute order totals", slog.Any("error", err))
	} else {
		stats.TotalRevenue = revenue.Round(2)
		stats.NewOrders = newOrders
	}

	users, err := s.profileRepo.CountProfiles(ctx)
	if err != nil {
		slog.Warn("Failed to count users", slog.Any("error", err))
	} else {
		stats.UserCount = users
	}

	return stats
}

func (s *orderService) RecentSignups(ctx context.Context) []models.RecentSignup {
	signups, err := s.profileRepo.RecentSignups(ctx, recentSignupsLimit)
	if err != nil {
		slog.Warn("Failed to list recent signups", slog.Any("error", err))
		return []models.RecentSignup{}
	}

	return signups
}
