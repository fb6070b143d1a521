package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertIntent(ctx context.Context, db *gorm.DB, intent *PaymentIntent) error
	FindIntentByOrderID(ctx context.Context, db *gorm.DB, gatewayOrderID string) (*PaymentIntent, error)
	SetIntentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, method string, now time.Time) error

	// UpsertTransaction inserts or updates the row keyed on GatewayPaymentID
	// and reports whether a new row was created.
	UpsertTransaction(ctx context.Context, db *gorm.DB, tx *Transaction) (bool, error)
	FindTransaction(ctx context.Context, db *gorm.DB, gatewayPaymentID string) (*Transaction, error)
}
