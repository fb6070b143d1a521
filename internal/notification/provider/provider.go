package provider

import (
	"context"

	"github.com/fixora/payflow/internal/notification/domain"
)

// Provider delivers a stored notification out-of-band (push, email, chat).
// Delivery failures never affect the payment flow.
type Provider interface {
	Deliver(ctx context.Context, n *domain.Notification) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Deliver(ctx context.Context, n *domain.Notification) error {
	return nil
}
