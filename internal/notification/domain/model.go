package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Notification struct {
	ID          snowflake.ID   `json:"id" gorm:"primaryKey"`
	RecipientID snowflake.ID   `json:"recipient_id" gorm:"not null;index"`
	Type        string         `json:"type" gorm:"type:text;not null"`
	Title       string         `json:"title" gorm:"type:text;not null"`
	Message     string         `json:"message" gorm:"type:text;not null"`
	EntityID    snowflake.ID   `json:"entity_id" gorm:"not null"`
	// PaymentStatus is part of the dedupe key: one notification per
	// (recipient, entity, payment status), however many times the event
	// replays.
	PaymentStatus string         `json:"payment_status" gorm:"type:text;not null"`
	Data          datatypes.JSON `json:"data,omitempty"`
	Read          bool           `json:"read" gorm:"not null;default:false"`
	CreatedAt     time.Time      `json:"created_at" gorm:"not null"`
}

func (Notification) TableName() string { return "notifications" }

const TypePayment = "payment"

type Service interface {
	// NotifyPaymentStatus records a payment notification for the recipient
	// unless an identical one already exists.
	NotifyPaymentStatus(ctx context.Context, db *gorm.DB, n *Notification) (bool, error)
}

type Repository interface {
	Exists(ctx context.Context, db *gorm.DB, recipientID, entityID snowflake.ID, paymentStatus string) (bool, error)
	Insert(ctx context.Context, db *gorm.DB, n *Notification) error
}
