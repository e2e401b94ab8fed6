package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopease/storefront/internal/models"
	"github.com/shopease/storefront/internal/utils"
	"github.com/shopspring/decimal"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	ListOrdersByUser(ctx context.Context, userID string) ([]*models.Order, error)
	ListAllOrders(ctx context.Context) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	GetOrderTotals(ctx context.Context) (decimal.Decimal, int, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	query := `
		INSERT INTO orders (id, user_id, items, total_amount, status, shipping_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`

	err = r.DB.QueryRowContext(dbCtx, query, order.ID, order.UserID, itemsJSON, order.TotalAmount, order.Status, addressJSON).Scan(&order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

func scanOrder(row rowScanner, extra ...any) (*models.Order, error) {
	order := &models.Order{}

	var itemsJSON, addressJSON []byte

	dest := append([]any{&order.ID, &order.UserID, &itemsJSON, &order.TotalAmount, &order.Status, &addressJSON, &order.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}

	if order.Items == nil {
		order.Items = []models.CartLineItem{}
	}

	// "null" leaves the pointer nil
	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
		}
	}

	return order, nil
}

// ListOrdersByUser returns the user's orders, newest first.
func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, items, total_amount, status, shipping_address, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	orders := []*models.Order{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// ListAllOrders returns every order, newest first, with the customer's profile
// fields attached. Orders whose profile is missing get empty customer fields.
func (r *orderRepository) ListAllOrders(ctx context.Context) ([]*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT o.id, o.user_id, o.items, o.total_amount, o.status, o.shipping_address, o.created_at,
			COALESCE(p.full_name, ''), COALESCE(p.email, ''), COALESCE(p.phone, '')
		FROM orders o
		LEFT JOIN profiles p ON p.id = o.user_id
		ORDER BY o.created_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	orders := []*models.Order{}

	for rows.Next() {
		customer := &models.Customer{}

		order, err := scanOrder(rows, &customer.FullName, &customer.Email, &customer.Phone)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		order.Customer = customer
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders
		SET status = $1
		WHERE id = $2
		RETURNING id, user_id, items, total_amount, status, shipping_address, created_at
	`

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return order, nil
}

func (r *orderRepository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete the order: %w", err)
	}

	return requireAffected(result)
}

// GetOrderTotals returns the summed order amounts and the number of orders
// still in the placed state.
func (r *orderRepository) GetOrderTotals(ctx context.Context) (decimal.Decimal, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*) FILTER (WHERE status = $1)
		FROM orders
	`

	var (
		revenue   decimal.Decimal
		newOrders int
	)

	if err := r.DB.QueryRowContext(dbCtx, query, models.OrderStatusPlaced).Scan(&revenue, &newOrders); err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to compute order totals: %w", err)
	}

	return revenue, newOrders, nil
}
