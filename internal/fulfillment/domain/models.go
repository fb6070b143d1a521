package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Order is a goods purchase whose acceptance is gated on payment.
type Order struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	CustomerID    snowflake.ID `json:"customer_id" gorm:"not null;index"`
	BusinessID    snowflake.ID `json:"business_id" gorm:"not null;index"`
	OrderNumber   string       `json:"order_number" gorm:"type:text;not null"`
	PaymentStatus string       `json:"payment_status" gorm:"type:text;not null"`
	Status        string       `json:"status" gorm:"type:text;not null"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null"`
}

func (Order) TableName() string { return "orders" }

// ServiceRequest is a booked service visit. Its lifecycle status is driven by
// the scheduling flow, payment only updates PaymentStatus.
type ServiceRequest struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	CustomerID    snowflake.ID `json:"customer_id" gorm:"not null;index"`
	BusinessID    snowflake.ID `json:"business_id" gorm:"not null;index"`
	RequestNumber string       `json:"request_number" gorm:"type:text;not null"`
	PaymentStatus string       `json:"payment_status" gorm:"type:text;not null"`
	Status        string       `json:"status" gorm:"type:text;not null"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null"`
}

func (ServiceRequest) TableName() string { return "service_requests" }

// Rental mirrors ServiceRequest: payment updates PaymentStatus only.
type Rental struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	CustomerID    snowflake.ID `json:"customer_id" gorm:"not null;index"`
	BusinessID    snowflake.ID `json:"business_id" gorm:"not null;index"`
	RentalNumber  string       `json:"rental_number" gorm:"type:text;not null"`
	PaymentStatus string       `json:"payment_status" gorm:"type:text;not null"`
	Status        string       `json:"status" gorm:"type:text;not null"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null"`
}

func (Rental) TableName() string { return "rentals" }

const (
	OrderStatusAccepted      = "accepted"
	OrderStatusPaymentFailed = "payment_failed"
)
