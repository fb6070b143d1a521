package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ApplyResult carries the notification context resolved while updating the
// entity.
type ApplyResult struct {
	Kind       Kind
	EntityID   snowflake.ID
	CustomerID snowflake.ID
	BusinessID snowflake.ID
	Number     string
}

type Repository interface {
	// ApplyPaymentStatus sets the entity's payment status (and, for orders,
	// the derived lifecycle status). Setting an absolute status makes
	// re-application idempotent.
	ApplyPaymentStatus(ctx context.Context, db *gorm.DB, ref Ref, paymentStatus string, now time.Time) (ApplyResult, error)
}
