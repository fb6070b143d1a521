package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	fulfillmentdomain "github.com/fixora/payflow/internal/fulfillment/domain"
	notificationdomain "github.com/fixora/payflow/internal/notification/domain"
	obsmetrics "github.com/fixora/payflow/internal/observability/metrics"
	paymentdomain "github.com/fixora/payflow/internal/payment/domain"
	"github.com/fixora/payflow/pkg/db"
)

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Repo            paymentdomain.Repository
	FulfillmentRepo fulfillmentdomain.Repository
	NotificationSvc notificationdomain.Service
	ObsMetrics      *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	repo            paymentdomain.Repository
	fulfillmentRepo fulfillmentdomain.Repository
	notificationSvc notificationdomain.Service
	obsMetrics      *obsmetrics.Metrics
}

func NewService(p Params) paymentdomain.WebhookService {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("payment.webhook"),
		genID:           p.GenID,
		repo:            p.Repo,
		fulfillmentRepo: p.FulfillmentRepo,
		notificationSvc: p.NotificationSvc,
		obsMetrics:      p.ObsMetrics,
	}
}

// Reconcile folds a payment status event into local state: the transaction
// record converges on the gateway payment id, the intent reaches its terminal
// status, the referenced fulfillment entity is updated and the customer is
// notified at most once per status. Every step is idempotent, so redelivered
// events are safe.
func (s *Service) Reconcile(ctx context.Context, event *paymentdomain.Event) error {
	if event == nil {
		return paymentdomain.ErrInvalidEvent
	}
	event.GatewayPaymentID = strings.TrimSpace(event.GatewayPaymentID)
	if event.GatewayPaymentID == "" {
		return paymentdomain.ErrInvalidEvent
	}
	event.Status = strings.ToLower(strings.TrimSpace(event.Status))
	switch event.Status {
	case paymentdomain.TransactionStatusSuccessful,
		paymentdomain.TransactionStatusFailed,
		paymentdomain.TransactionStatusRefunded:
	default:
		return paymentdomain.ErrInvalidPaymentStatus
	}

	now := time.Now().UTC()

	intent, err := s.resolveIntent(ctx, event, now)
	if err != nil {
		return err
	}

	tx := paymentdomain.Transaction{
		ID:               s.genID.Generate(),
		GatewayPaymentID: event.GatewayPaymentID,
		Status:           event.Status,
		Amount:           event.Amount,
		Currency:         event.Currency,
		GatewayResponse:  datatypes.JSON(event.GatewayResponse),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if intent != nil {
		id := intent.ID
		tx.PaymentIntentID = &id
	}
	created, err := s.repo.UpsertTransaction(ctx, s.db, &tx)
	if err != nil {
		return err
	}
	if !created {
		s.log.Info("transaction redelivered",
			zap.String("gateway_payment_id", event.GatewayPaymentID),
			zap.String("status", event.Status),
		)
	}

	if intent != nil {
		if status := intentStatus(event.Status); status != "" {
			if err := s.repo.SetIntentStatus(ctx, s.db, intent.ID, status, "", now); err != nil {
				return err
			}
		}
	}

	if event.Ref == nil {
		s.log.Info("payment event without fulfillment reference",
			zap.String("gateway_payment_id", event.GatewayPaymentID),
		)
		s.obsMetrics.RecordWebhookEvent(event.Status)
		return nil
	}

	applied, err := s.fulfillmentRepo.ApplyPaymentStatus(ctx, s.db, *event.Ref, event.Status, now)
	if err != nil {
		return err
	}

	s.notify(ctx, event, applied)
	s.obsMetrics.RecordWebhookEvent(event.Status)
	return nil
}

// resolveIntent finds the intent opened for the event's gateway order, or
// creates a minimal one when the event arrives before (or without) local
// order creation.
func (s *Service) resolveIntent(ctx context.Context, event *paymentdomain.Event, now time.Time) (*paymentdomain.PaymentIntent, error) {
	orderID := strings.TrimSpace(event.GatewayOrderID)
	if orderID == "" {
		return nil, nil
	}

	intent, err := s.repo.FindIntentByOrderID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if intent != nil {
		return intent, nil
	}

	intent = &paymentdomain.PaymentIntent{
		ID:             s.genID.Generate(),
		GatewayOrderID: orderID,
		Amount:         event.Amount,
		Currency:       event.Currency,
		Status:         paymentdomain.IntentStatusCreated,
		Notes:          datatypes.JSONMap{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.InsertIntent(ctx, s.db, intent); err != nil {
		// Concurrent delivery can beat us to the insert. Re-read instead of
		// failing the event.
		if db.IsDuplicateKeyErr(err) {
			existing, findErr := s.repo.FindIntentByOrderID(ctx, s.db, orderID)
			if findErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	s.log.Info("payment intent created from event",
		zap.String("gateway_order_id", orderID),
	)
	return intent, nil
}

func (s *Service) notify(ctx context.Context, event *paymentdomain.Event, applied fulfillmentdomain.ApplyResult) {
	title, message := notificationText(event.Status, applied)
	data, _ := json.Marshal(map[string]string{
		"entity_type":    string(applied.Kind),
		"entity_id":      applied.EntityID.String(),
		"entity_number":  applied.Number,
		"payment_status": event.Status,
	})
	sent, err := s.notificationSvc.NotifyPaymentStatus(ctx, s.db, &notificationdomain.Notification{
		RecipientID:   applied.CustomerID,
		Type:          notificationdomain.TypePayment,
		Title:         title,
		Message:       message,
		EntityID:      applied.EntityID,
		PaymentStatus: event.Status,
		Data:          datatypes.JSON(data),
	})
	if err != nil {
		// Notification is best-effort; the transaction and entity updates
		// already committed.
		s.log.Error("payment notification failed",
			zap.String("gateway_payment_id", event.GatewayPaymentID),
			zap.Error(err),
		)
		return
	}
	if sent {
		s.obsMetrics.RecordNotificationSent()
	}
}

func notificationText(status string, applied fulfillmentdomain.ApplyResult) (string, string) {
	noun := entityNoun(applied.Kind)
	switch status {
	case paymentdomain.TransactionStatusSuccessful:
		return "Payment Successful", fmt.Sprintf("Payment for %s %s was received.", noun, applied.Number)
	case paymentdomain.TransactionStatusRefunded:
		return "Payment Refunded", fmt.Sprintf("Payment for %s %s was refunded.", noun, applied.Number)
	default:
		return "Payment Failed", fmt.Sprintf("Payment for %s %s failed.", noun, applied.Number)
	}
}

func entityNoun(kind fulfillmentdomain.Kind) string {
	switch kind {
	case fulfillmentdomain.KindServiceRequest:
		return "service request"
	case fulfillmentdomain.KindRental:
		return "rental"
	default:
		return "order"
	}
}

// intentStatus maps a transaction status onto the intent's terminal status.
// Refunds leave the intent where it is.
func intentStatus(transactionStatus string) string {
	switch transactionStatus {
	case paymentdomain.TransactionStatusSuccessful:
		return paymentdomain.IntentStatusCompleted
	case paymentdomain.TransactionStatusFailed:
		return paymentdomain.IntentStatusFailed
	default:
		return ""
	}
}
