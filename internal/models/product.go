package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Thumbnail   string          `json:"thumbnail"`
	Images      []string        `json:"images"`
	Rating      float64         `json:"rating"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LineItem snapshots the product into a cart line with the given quantity.
func (p *Product) LineItem(quantity int) CartLineItem {
	return CartLineItem{
		ProductID:    p.ID,
		Title:        p.Title,
		UnitPrice:    p.Price,
		ThumbnailURL: p.Thumbnail,
		Brand:        p.Brand,
		Quantity:     quantity,
	}
}

type ProductRequest struct {
	Title       string          `json:"title" validate:"required,min=2,max=200"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Brand       string          `json:"brand" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Thumbnail   string          `json:"thumbnail" validate:"omitempty,url"`
	Images      []string        `json:"images,omitempty" validate:"omitempty,dive,url"`
	Stock       int             `json:"stock" validate:"gte=0"`
}
