package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopease/storefront/internal/models"
	"github.com/shopease/storefront/internal/utils"
)

type CartRepository interface {
	GetCartByUserID(ctx context.Context, userID string) (*models.RemoteCartRecord, error)
	UpsertCart(ctx context.Context, cart *models.RemoteCartRecord) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

// GetCartByUserID returns sql.ErrNoRows (unwrapped) when the user has no row yet.
func (r *cartRepository) GetCartByUserID(ctx context.Context, userID string) (*models.RemoteCartRecord, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT user_id, items, updated_at
		FROM carts
		WHERE user_id = $1
	`

	cart := &models.RemoteCartRecord{}

	var itemsJSON []byte

	err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&cart.UserID, &itemsJSON, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &cart.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
	}

	if cart.Items == nil {
		cart.Items = []models.CartLineItem{}
	}

	return cart, nil
}

// UpsertCart writes the full item list. The first write creates the row.
func (r *cartRepository) UpsertCart(ctx context.Context, cart *models.RemoteCartRecord) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	items := cart.Items
	if items == nil {
		items = []models.CartLineItem{}
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	if cart.UpdatedAt.IsZero() {
		cart.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO carts (user_id, items, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.DB.ExecContext(dbCtx, query, cart.UserID, itemsJSON, cart.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert the cart: %w", err)
	}

	return nil
}
