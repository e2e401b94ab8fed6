package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Claims are issued by the hosted identity provider; the storefront only verifies them.
type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Role     Role   `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

type Profile struct {
	ID              string           `json:"id"`
	FullName        string           `json:"full_name"`
	Email           string           `json:"email"`
	Phone           string           `json:"phone"`
	AvatarURL       string           `json:"avatar_url"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
	Role            Role             `json:"role"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type UpdateProfileRequest struct {
	FullName        *string          `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone           *string          `json:"phone,omitempty" validate:"omitempty,numeric,len=10"`
	AvatarURL       *string          `json:"avatar_url,omitempty" validate:"omitempty,url"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle flips between light and dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}

	return ThemeDark
}

type ThemeResponse struct {
	Theme Theme `json:"theme"`
}
