package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "orderplaced"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type ShippingAddress struct {
	FullName string `json:"full_name" validate:"required,min=2"`
	Street   string `json:"street" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Pincode  string `json:"pincode" validate:"required,numeric,len=6"`
	Phone    string `json:"phone" validate:"required,numeric,len=10"`
}

type Order struct {
	ID              uuid.UUID        `json:"id"`
	UserID          string           `json:"user_id"`
	Items           []CartLineItem   `json:"items"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	Status          OrderStatus      `json:"status"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	Customer        *Customer        `json:"customer,omitempty"`
}

// Customer is the profile slice joined onto orders in the admin view.
type Customer struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type PlaceOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shipping_address" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=orderplaced processing shipped delivered cancelled"`
}

type DashboardStats struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	UserCount    int             `json:"user_count"`
	NewOrders    int             `json:"new_orders"`
}

type RecentSignup struct {
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminDashboard is what the admin overview page renders.
type AdminDashboard struct {
	Stats         *DashboardStats `json:"stats"`
	RecentSignups []RecentSignup  `json:"recent_signups"`
}
