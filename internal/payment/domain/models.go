package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// PaymentIntent is the local shadow of a gateway order, tracked from creation
// to terminal status. Rows are never deleted, only status-transitioned.
type PaymentIntent struct {
	ID             snowflake.ID      `json:"id" gorm:"primaryKey"`
	GatewayOrderID string            `json:"gateway_order_id" gorm:"type:text;not null;uniqueIndex"`
	Amount         int64             `json:"amount" gorm:"not null"`
	Currency       string            `json:"currency" gorm:"type:text;not null"`
	Receipt        string            `json:"receipt" gorm:"type:text;not null"`
	Status         string            `json:"status" gorm:"type:text;not null"`
	Method         string            `json:"method" gorm:"type:text"`
	Notes          datatypes.JSONMap `json:"notes" gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time         `json:"updated_at" gorm:"not null"`
}

func (PaymentIntent) TableName() string { return "payment_intents" }

const (
	IntentStatusCreated   = "created"
	IntentStatusVerified  = "verified"
	IntentStatusCompleted = "completed"
	IntentStatusFailed    = "failed"
)

// Transaction records one gateway payment attempt. It is the audit-of-record
// for reconciliation and is keyed on the gateway payment id so redelivered
// events converge on a single row.
type Transaction struct {
	ID               snowflake.ID   `json:"id" gorm:"primaryKey"`
	GatewayPaymentID string         `json:"gateway_payment_id" gorm:"type:text;not null;uniqueIndex"`
	PaymentIntentID  *snowflake.ID  `json:"payment_intent_id"`
	Status           string         `json:"status" gorm:"type:text;not null"`
	Amount           int64          `json:"amount" gorm:"not null"`
	Currency         string         `json:"currency" gorm:"type:text;not null"`
	GatewayResponse  datatypes.JSON `json:"gateway_response" gorm:"type:jsonb"`
	CreatedAt        time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"not null"`
}

func (Transaction) TableName() string { return "transactions" }

const (
	TransactionStatusPending    = "pending"
	TransactionStatusSuccessful = "successful"
	TransactionStatusFailed     = "failed"
	TransactionStatusRefunded   = "refunded"
)
