package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fixora/payflow/internal/notification/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, recipientID, entityID snowflake.ID, paymentStatus string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM notifications
		 WHERE recipient_id = ? AND entity_id = ? AND payment_status = ?`,
		recipientID,
		entityID,
		paymentStatus,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO notifications (
			id, recipient_id, type, title, message, entity_id,
			payment_status, data, read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.RecipientID,
		n.Type,
		n.Title,
		n.Message,
		n.EntityID,
		n.PaymentStatus,
		n.Data,
		n.Read,
		n.CreatedAt,
	).Error
}
