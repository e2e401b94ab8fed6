package feed

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopease/storefront/internal/models"
)

var validate = validator.New()

type cartRecord struct {
	UserID string            `json:"user_id"`
	Items  []json.RawMessage `json:"items"`
}

type wishlistRecord struct {
	UserID     string            `json:"user_id"`
	ProductIDs []json.RawMessage `json:"product_ids"`
}

// DecodeCartItems reads the item list out of a carts event. Lines that fail to
// decode or validate are dropped; the rest keep their order.
func DecodeCartItems(e Event) ([]models.CartLineItem, error) {
	if !e.HasRecord() {
		return nil, fmt.Errorf("event for %s carries no record", e.UserID)
	}

	var record cartRecord
	if err := json.Unmarshal(e.Record, &record); err != nil {
		return nil, fmt.Errorf("failed to decode cart record: %w", err)
	}

	items := make([]models.CartLineItem, 0, len(record.Items))
	seen := make(map[int64]struct{}, len(record.Items))

	for _, raw := range record.Items {
		var item models.CartLineItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}

		if err := validate.Struct(item); err != nil || item.UnitPrice.IsNegative() {
			continue
		}

		if _, dup := seen[item.ProductID]; dup {
			continue
		}

		seen[item.ProductID] = struct{}{}
		items = append(items, item)
	}

	return items, nil
}

// DecodeWishlistIDs reads the product ids out of a wishlists event, dropping
// anything that is not a positive integer.
func DecodeWishlistIDs(e Event) ([]int64, error) {
	if !e.HasRecord() {
		return nil, fmt.Errorf("event for %s carries no record", e.UserID)
	}

	var record wishlistRecord
	if err := json.Unmarshal(e.Record, &record); err != nil {
		return nil, fmt.Errorf("failed to decode wishlist record: %w", err)
	}

	ids := make([]int64, 0, len(record.ProductIDs))

	for _, raw := range record.ProductIDs {
		var id int64
		if err := json.Unmarshal(raw, &id); err != nil || id <= 0 {
			continue
		}

		ids = append(ids, id)
	}

	return ids, nil
}
