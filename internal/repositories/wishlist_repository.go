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

type WishlistRepository interface {
	GetWishlistByUserID(ctx context.Context, userID string) (*models.RemoteWishlistRecord, error)
	UpsertWishlist(ctx context.Context, wishlist *models.RemoteWishlistRecord) error
}

type wishlistRepository struct {
	DB *sql.DB
}

func NewWishlistRepo(db *sql.DB) WishlistRepository {
	return &wishlistRepository{DB: db}
}

func (r *wishlistRepository) GetWishlistByUserID(ctx context.Context, userID string) (*models.RemoteWishlistRecord, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT user_id, product_ids, updated_at
		FROM wishlists
		WHERE user_id = $1
	`

	wishlist := &models.RemoteWishlistRecord{}

	var idsJSON []byte

	err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&wishlist.UserID, &idsJSON, &wishlist.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	if err := json.Unmarshal(idsJSON, &wishlist.ProductIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wishlist product ids: %w", err)
	}

	if wishlist.ProductIDs == nil {
		wishlist.ProductIDs = []int64{}
	}

	return wishlist, nil
}

func (r *wishlistRepository) UpsertWishlist(ctx context.Context, wishlist *models.RemoteWishlistRecord) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	ids := wishlist.ProductIDs
	if ids == nil {
		ids = []int64{}
	}

	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal wishlist product ids: %w", err)
	}

	if wishlist.UpdatedAt.IsZero() {
		wishlist.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO wishlists (user_id, product_ids, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET product_ids = EXCLUDED.product_ids, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.DB.ExecContext(dbCtx, query, wishlist.UserID, idsJSON, wishlist.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert the wishlist: %w", err)
	}

	return nil
}
