package domain

import (
	"context"
	"errors"
	"fmt"

	fulfillmentdomain "github.com/fixora/payflow/internal/fulfillment/domain"
)

type CreateOrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// GatewayOrder echoes the gateway's order description back to the caller.
type GatewayOrder struct {
	ID         string            `json:"id"`
	Entity     string            `json:"entity"`
	Amount     int64             `json:"amount"`
	AmountPaid int64             `json:"amount_paid"`
	AmountDue  int64             `json:"amount_due"`
	Currency   string            `json:"currency"`
	Receipt    string            `json:"receipt"`
	Status     string            `json:"status"`
	Attempts   int               `json:"attempts"`
	Notes      map[string]string `json:"notes"`
	CreatedAt  int64             `json:"created_at"`
}

type VerifyRequest struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// VerifyResult is a normal negative result on signature mismatch, not an
// error; only transport-level failures are raised as errors.
type VerifyResult struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

type Service interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (GatewayOrder, error)
	VerifyPayment(ctx context.Context, req VerifyRequest) (VerifyResult, error)
}

// Event is a normalized payment status event, either delivered by the gateway
// webhook or synthesized internally after signature verification. Ref is nil
// on the internal path when the originating order carried no fulfillment
// reference in its notes.
type Event struct {
	GatewayPaymentID string
	GatewayOrderID   string
	Status           string
	Amount           int64
	Currency         string
	GatewayResponse  []byte
	Ref              *fulfillmentdomain.Ref
}

type WebhookService interface {
	Reconcile(ctx context.Context, event *Event) error
}

var (
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidCurrency      = errors.New("invalid_currency")
	ErrInvalidReceipt       = errors.New("invalid_receipt")
	ErrInvalidEvent         = errors.New("invalid_event")
	ErrInvalidPaymentStatus = errors.New("invalid_payment_status")
	ErrIntentNotFound       = errors.New("payment_intent_not_found")
)

// GatewayError marks a failure reported by (or reaching) the external payment
// gateway. No local state is committed before it is returned, so retrying
// with the same receipt is safe.
type GatewayError struct {
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "gateway_error"
}

func (e *GatewayError) Unwrap() error { return e.Err }

func NewGatewayError(err error) *GatewayError {
	if err == nil {
		return &GatewayError{Message: "gateway_error"}
	}
	return &GatewayError{Message: fmt.Sprintf("payment gateway: %s", err.Error()), Err: err}
}
