package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLineItem is one product entry in a cart. ProductID is unique within a cart.
type CartLineItem struct {
	ProductID    int64           `json:"product_id" validate:"gt=0"`
	Title        string          `json:"title"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ThumbnailURL string          `json:"thumbnail_url"`
	Brand        string          `json:"brand"`
	Quantity     int             `json:"quantity" validate:"min=1"`
}

// LineTotal is UnitPrice × Quantity.
func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// RemoteCartRecord is the persisted per-user cart row.
type RemoteCartRecord struct {
	UserID    string         `json:"user_id"`
	Items     []CartLineItem `json:"items"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"   validate:"omitempty,min=1"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

// CartResponse is what the view layer reads from a session.
type CartResponse struct {
	Items      []CartLineItem  `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}
