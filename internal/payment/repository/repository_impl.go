package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fixora/payflow/internal/payment/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertIntent(ctx context.Context, db *gorm.DB, intent *domain.PaymentIntent) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payment_intents (
			id, gateway_order_id, amount, currency, receipt, status,
			method, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		intent.ID,
		intent.GatewayOrderID,
		intent.Amount,
		intent.Currency,
		intent.Receipt,
		intent.Status,
		intent.Method,
		intent.Notes,
		intent.CreatedAt,
		intent.UpdatedAt,
	).Error
}

func (r *repo) FindIntentByOrderID(ctx context.Context, db *gorm.DB, gatewayOrderID string) (*domain.PaymentIntent, error) {
	var item domain.PaymentIntent
	err := db.WithContext(ctx).Raw(
		`SELECT id, gateway_order_id, amount, currency, receipt, status,
			method, notes, created_at, updated_at
		 FROM payment_intents
		 WHERE gateway_order_id = ?
		 LIMIT 1`,
		gatewayOrderID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) SetIntentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, method string, now time.Time) error {
	if method != "" {
		return db.WithContext(ctx).Exec(
			`UPDATE payment_intents
			 SET status = ?, method = ?, updated_at = ?
			 WHERE id = ?`,
			status, method, now, id,
		).Error
	}
	return db.WithContext(ctx).Exec(
		`UPDATE payment_intents
		 SET status = ?, updated_at = ?
		 WHERE id = ?`,
		status, now, id,
	).Error
}

// UpsertTransaction inserts the row, or on a replay of the same gateway
// payment id refreshes its status and raw response in place.
func (r *repo) UpsertTransaction(ctx context.Context, db *gorm.DB, tx *domain.Transaction) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO transactions (
			id, gateway_payment_id, payment_intent_id, status, amount,
			currency, gateway_response, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (gateway_payment_id) DO NOTHING`,
		tx.ID,
		tx.GatewayPaymentID,
		tx.PaymentIntentID,
		tx.Status,
		tx.Amount,
		tx.Currency,
		tx.GatewayResponse,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	err := db.WithContext(ctx).Exec(
		`UPDATE transactions
		 SET status = ?, gateway_response = ?, updated_at = ?
		 WHERE gateway_payment_id = ?`,
		tx.Status,
		tx.GatewayResponse,
		tx.UpdatedAt,
		tx.GatewayPaymentID,
	).Error
	if err != nil {
		return false, err
	}
	return false, nil
}

func (r *repo) FindTransaction(ctx context.Context, db *gorm.DB, gatewayPaymentID string) (*domain.Transaction, error) {
	var item domain.Transaction
	err := db.WithContext(ctx).Raw(
		`SELECT id, gateway_payment_id, payment_intent_id, status, amount,
			currency, gateway_response, created_at, updated_at
		 FROM transactions
		 WHERE gateway_payment_id = ?
		 LIMIT 1`,
		gatewayPaymentID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}
