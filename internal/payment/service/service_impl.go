package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fixora/payflow/internal/config"
	fulfillmentdomain "github.com/fixora/payflow/internal/fulfillment/domain"
	"github.com/fixora/payflow/internal/gateway/razorpay"
	obsmetrics "github.com/fixora/payflow/internal/observability/metrics"
	paymentdomain "github.com/fixora/payflow/internal/payment/domain"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Cfg        config.Config
	GenID      *snowflake.Node
	Gateway    *razorpay.Client
	Repo       paymentdomain.Repository
	WebhookSvc paymentdomain.WebhookService
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        config.Config
	genID      *snowflake.Node
	gateway    *razorpay.Client
	repo       paymentdomain.Repository
	webhookSvc paymentdomain.WebhookService
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		cfg:        p.Cfg,
		genID:      p.GenID,
		gateway:    p.Gateway,
		repo:       p.Repo,
		webhookSvc: p.WebhookSvc,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) CreateOrder(ctx context.Context, req paymentdomain.CreateOrderRequest) (paymentdomain.GatewayOrder, error) {
	if req.Amount <= 0 {
		return paymentdomain.GatewayOrder{}, paymentdomain.ErrInvalidAmount
	}
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		return paymentdomain.GatewayOrder{}, paymentdomain.ErrInvalidCurrency
	}
	req.Receipt = strings.TrimSpace(req.Receipt)
	if req.Receipt == "" {
		return paymentdomain.GatewayOrder{}, paymentdomain.ErrInvalidReceipt
	}

	order, err := s.gateway.CreateOrder(ctx, razorpay.CreateOrderParams{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		s.log.Error("gateway order creation failed",
			zap.String("receipt", req.Receipt),
			zap.Error(err),
		)
		return paymentdomain.GatewayOrder{}, paymentdomain.NewGatewayError(err)
	}

	now := time.Now().UTC()
	intent := paymentdomain.PaymentIntent{
		ID:             s.genID.Generate(),
		GatewayOrderID: order.ID,
		Amount:         order.Amount,
		Currency:       order.Currency,
		Receipt:        order.Receipt,
		Status:         paymentdomain.IntentStatusCreated,
		Notes:          notesMap(order.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	// The gateway order already exists; a local persistence failure must not
	// hide it from the caller. The webhook path recreates the intent lazily.
	if err := s.repo.InsertIntent(ctx, s.db, &intent); err != nil {
		s.log.Error("payment intent persistence failed",
			zap.String("gateway_order_id", order.ID),
			zap.Error(err),
		)
	}

	s.obsMetrics.RecordOrderCreated()

	return paymentdomain.GatewayOrder{
		ID:         order.ID,
		Entity:     order.Entity,
		Amount:     order.Amount,
		AmountPaid: order.AmountPaid,
		AmountDue:  order.AmountDue,
		Currency:   order.Currency,
		Receipt:    order.Receipt,
		Status:     order.Status,
		Attempts:   order.Attempts,
		Notes:      order.Notes,
		CreatedAt:  order.CreatedAt,
	}, nil
}

func (s *Service) VerifyPayment(ctx context.Context, req paymentdomain.VerifyRequest) (paymentdomain.VerifyResult, error) {
	req.GatewayOrderID = strings.TrimSpace(req.GatewayOrderID)
	req.GatewayPaymentID = strings.TrimSpace(req.GatewayPaymentID)
	req.Signature = strings.TrimSpace(req.Signature)
	if req.GatewayOrderID == "" || req.GatewayPaymentID == "" || req.Signature == "" {
		return paymentdomain.VerifyResult{Verified: false, Message: "missing verification fields"}, nil
	}

	if !razorpay.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature, s.cfg.Gateway.KeySecret) {
		s.log.Warn("payment signature mismatch",
			zap.String("gateway_order_id", req.GatewayOrderID),
			zap.String("gateway_payment_id", req.GatewayPaymentID),
		)
		return paymentdomain.VerifyResult{Verified: false, Message: "invalid signature"}, nil
	}

	payment, err := s.gateway.FetchPayment(ctx, req.GatewayPaymentID)
	if err != nil {
		return paymentdomain.VerifyResult{}, paymentdomain.NewGatewayError(err)
	}

	now := time.Now().UTC()
	intent, err := s.repo.FindIntentByOrderID(ctx, s.db, req.GatewayOrderID)
	if err != nil {
		return paymentdomain.VerifyResult{}, err
	}

	var ref *fulfillmentdomain.Ref
	if intent != nil {
		if err := s.repo.SetIntentStatus(ctx, s.db, intent.ID, paymentdomain.IntentStatusVerified, payment.Method, now); err != nil {
			return paymentdomain.VerifyResult{}, err
		}
		ref = refFromNotes(intent.Notes)
	}

	raw, err := json.Marshal(payment)
	if err != nil {
		return paymentdomain.VerifyResult{}, err
	}
	event := paymentdomain.Event{
		GatewayPaymentID: payment.ID,
		GatewayOrderID:   req.GatewayOrderID,
		Status:           transactionStatus(payment.Status),
		Amount:           payment.Amount,
		Currency:         payment.Currency,
		GatewayResponse:  raw,
		Ref:              ref,
	}
	if err := s.webhookSvc.Reconcile(ctx, &event); err != nil {
		return paymentdomain.VerifyResult{}, err
	}

	return paymentdomain.VerifyResult{Verified: true, Message: "payment verified"}, nil
}

// transactionStatus maps the gateway's payment lifecycle onto the local
// transaction statuses.
func transactionStatus(gatewayStatus string) string {
	switch strings.ToLower(strings.TrimSpace(gatewayStatus)) {
	case "failed":
		return paymentdomain.TransactionStatusFailed
	case "refunded":
		return paymentdomain.TransactionStatusRefunded
	default:
		return paymentdomain.TransactionStatusSuccessful
	}
}

// refFromNotes recovers the fulfillment reference the order was opened with.
// Orders carrying no reference yield nil; reconciliation then skips the
// entity update.
func refFromNotes(notes datatypes.JSONMap) *fulfillmentdomain.Ref {
	ref, err := fulfillmentdomain.ParseRef(
		noteString(notes, "order_id"),
		noteString(notes, "service_request_id"),
		noteString(notes, "rental_id"),
	)
	if err != nil {
		return nil
	}
	return &ref
}

func noteString(notes datatypes.JSONMap, key string) string {
	if notes == nil {
		return ""
	}
	v, ok := notes[key].(string)
	if !ok {
		return ""
	}
	return v
}

func notesMap(notes map[string]string) datatypes.JSONMap {
	m := datatypes.JSONMap{}
	for k, v := range notes {
		m[k] = v
	}
	return m
}
