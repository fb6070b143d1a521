package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fixora/payflow/internal/fulfillment/domain"
)

type repository struct{}

func Provide() domain.Repository {
	return &repository{}
}

func (r *repository) ApplyPaymentStatus(ctx context.Context, db *gorm.DB, ref domain.Ref, paymentStatus string, now time.Time) (domain.ApplyResult, error) {
	switch ref.Kind() {
	case domain.KindOrder:
		return r.applyOrder(ctx, db, ref, paymentStatus, now)
	case domain.KindServiceRequest:
		return r.applyServiceRequest(ctx, db, ref, paymentStatus, now)
	case domain.KindRental:
		return r.applyRental(ctx, db, ref, paymentStatus, now)
	default:
		return domain.ApplyResult{}, domain.ErrInvalidReference
	}
}

// applyOrder also moves the order lifecycle: a successful payment accepts the
// order, a failed one parks it in payment_failed. Refunds leave the lifecycle
// status alone.
func (r *repository) applyOrder(ctx context.Context, db *gorm.DB, ref domain.Ref, paymentStatus string, now time.Time) (domain.ApplyResult, error) {
	var res *gorm.DB
	switch paymentStatus {
	case "successful":
		res = db.WithContext(ctx).Exec(`
UPDATE orders SET payment_status = ?, status = ?, updated_at = ? WHERE id = ?`,
			paymentStatus, domain.OrderStatusAccepted, now, ref.ID())
	case "failed":
		res = db.WithContext(ctx).Exec(`
UPDATE orders SET payment_status = ?, status = ?, updated_at = ? WHERE id = ?`,
			paymentStatus, domain.OrderStatusPaymentFailed, now, ref.ID())
	default:
		res = db.WithContext(ctx).Exec(`
UPDATE orders SET payment_status = ?, updated_at = ? WHERE id = ?`,
			paymentStatus, now, ref.ID())
	}
	if res.Error != nil {
		return domain.ApplyResult{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ApplyResult{}, domain.ErrEntityNotFound
	}

	var order domain.Order
	if err := db.WithContext(ctx).Raw(`
SELECT id, customer_id, business_id, order_number FROM orders WHERE id = ?`, ref.ID()).
		Scan(&order).Error; err != nil {
		return domain.ApplyResult{}, err
	}
	return domain.ApplyResult{
		Kind:       domain.KindOrder,
		EntityID:   order.ID,
		CustomerID: order.CustomerID,
		BusinessID: order.BusinessID,
		Number:     order.OrderNumber,
	}, nil
}

func (r *repository) applyServiceRequest(ctx context.Context, db *gorm.DB, ref domain.Ref, paymentStatus string, now time.Time) (domain.ApplyResult, error) {
	res := db.WithContext(ctx).Exec(`
UPDATE service_requests SET payment_status = ?, updated_at = ? WHERE id = ?`,
		paymentStatus, now, ref.ID())
	if res.Error != nil {
		return domain.ApplyResult{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ApplyResult{}, domain.ErrEntityNotFound
	}

	var sr domain.ServiceRequest
	if err := db.WithContext(ctx).Raw(`
SELECT id, customer_id, business_id, request_number FROM service_requests WHERE id = ?`, ref.ID()).
		Scan(&sr).Error; err != nil {
		return domain.ApplyResult{}, err
	}
	return domain.ApplyResult{
		Kind:       domain.KindServiceRequest,
		EntityID:   sr.ID,
		CustomerID: sr.CustomerID,
		BusinessID: sr.BusinessID,
		Number:     sr.RequestNumber,
	}, nil
}

func (r *repository) applyRental(ctx context.Context, db *gorm.DB, ref domain.Ref, paymentStatus string, now time.Time) (domain.ApplyResult, error) {
	res := db.WithContext(ctx).Exec(`
UPDATE rentals SET payment_status = ?, updated_at = ? WHERE id = ?`,
		paymentStatus, now, ref.ID())
	if res.Error != nil {
		return domain.ApplyResult{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ApplyResult{}, domain.ErrEntityNotFound
	}

	var rental domain.Rental
	if err := db.WithContext(ctx).Raw(`
SELECT id, customer_id, business_id, rental_number FROM rentals WHERE id = ?`, ref.ID()).
		Scan(&rental).Error; err != nil {
		return domain.ApplyResult{}, err
	}
	return domain.ApplyResult{
		Kind:       domain.KindRental,
		EntityID:   rental.ID,
		CustomerID: rental.CustomerID,
		BusinessID: rental.BusinessID,
		Number:     rental.RentalNumber,
	}, nil
}
