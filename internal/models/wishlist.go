package models

import "time"

// RemoteWishlistRecord is the persisted per-user wishlist row.
type RemoteWishlistRecord struct {
	UserID     string    `json:"user_id"`
	ProductIDs []int64   `json:"product_ids"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type WishlistResponse struct {
	ProductIDs []int64 `json:"product_ids"`
}

type WishlistMembershipResponse struct {
	ProductID  int64 `json:"product_id"`
	InWishlist bool  `json:"in_wishlist"`
}
