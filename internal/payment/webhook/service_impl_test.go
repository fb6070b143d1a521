package webhook_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	fulfillmentdomain "github.com/fixora/payflow/internal/fulfillment/domain"
	fulfillmentrepo "github.com/fixora/payflow/internal/fulfillment/repository"
	notificationrepo "github.com/fixora/payflow/internal/notification/repository"
	notificationservice "github.com/fixora/payflow/internal/notification/service"
	paymentdomain "github.com/fixora/payflow/internal/payment/domain"
	paymentrepo "github.com/fixora/payflow/internal/payment/repository"
	paymentwebhook "github.com/fixora/payflow/internal/payment/webhook"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE payment_intents (
			id BIGINT PRIMARY KEY,
			gateway_order_id TEXT NOT NULL,
			amount BIGINT NOT NULL,
			currency TEXT NOT NULL,
			receipt TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			method TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_payment_intents_gateway_order_id ON payment_intents(gateway_order_id)`,
		`CREATE TABLE transactions (
			id BIGINT PRIMARY KEY,
			gateway_payment_id TEXT NOT NULL,
			payment_intent_id BIGINT,
			status TEXT NOT NULL,
			amount BIGINT NOT NULL,
			currency TEXT NOT NULL,
			gateway_response TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_transactions_gateway_payment_id ON transactions(gateway_payment_id)`,
		`CREATE TABLE orders (
			id BIGINT PRIMARY KEY,
			customer_id BIGINT NOT NULL,
			business_id BIGINT NOT NULL,
			order_number TEXT NOT NULL,
			payment_status TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE service_requests (
			id BIGINT PRIMARY KEY,
			customer_id BIGINT NOT NULL,
			business_id BIGINT NOT NULL,
			request_number TEXT NOT NULL,
			payment_status TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE rentals (
			id BIGINT PRIMARY KEY,
			customer_id BIGINT NOT NULL,
			business_id BIGINT NOT NULL,
			rental_number TEXT NOT NULL,
			payment_status TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE notifications (
			id BIGINT PRIMARY KEY,
			recipient_id BIGINT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			entity_id BIGINT NOT NULL,
			payment_status TEXT NOT NULL,
			data TEXT,
			read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_notifications_dedupe ON notifications(recipient_id, entity_id, payment_status)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func newWebhookService(t *testing.T, db *gorm.DB, node *snowflake.Node) paymentdomain.WebhookService {
	t.Helper()

	notificationSvc := notificationservice.NewService(notificationservice.Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  notificationrepo.Provide(),
	})
	return paymentwebhook.NewService(paymentwebhook.Params{
		DB:              db,
		Log:             zap.NewNop(),
		GenID:           node,
		Repo:            paymentrepo.Provide(),
		FulfillmentRepo: fulfillmentrepo.Provide(),
		NotificationSvc: notificationSvc,
	})
}

func seedOrder(t *testing.T, db *gorm.DB, id, customerID snowflake.ID) {
	t.Helper()
	now := time.Now().UTC()
	err := db.Exec(
		`INSERT INTO orders (id, customer_id, business_id, order_number, payment_status, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'pending', 'pending_payment', ?, ?)`,
		id, customerID, customerID, "ORD-1001", now, now,
	).Error
	require.NoError(t, err)
}

func seedIntent(t *testing.T, db *gorm.DB, id snowflake.ID, gatewayOrderID string) {
	t.Helper()
	now := time.Now().UTC()
	err := db.Exec(
		`INSERT INTO payment_intents (id, gateway_order_id, amount, currency, receipt, status, method, notes, created_at, updated_at)
		 VALUES (?, ?, 50000, 'INR', 'rcpt_1', 'created', '', '{}', ?, ?)`,
		id, gatewayOrderID, now, now,
	).Error
	require.NoError(t, err)
}

func countRows(t *testing.T, db *gorm.DB, query string, args ...any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Raw(query, args...).Scan(&count).Error)
	return count
}

func TestReconcileSuccessfulOrderPayment(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(20)
	require.NoError(t, err)
	svc := newWebhookService(t, db, node)

	orderID := node.Generate()
	customerID := node.Generate()
	seedOrder(t, db, orderID, customerID)
	seedIntent(t, db, node.Generate(), "order_gw_1")

	ref := fulfillmentdomain.OrderRef(orderID)
	err = svc.Reconcile(ctx, &paymentdomain.Event{
		GatewayPaymentID: "pay_gw_1",
		GatewayOrderID:   "order_gw_1",
		Status:           paymentdomain.TransactionStatusSuccessful,
		Amount:           50000,
		Currency:         "INR",
		GatewayResponse:  []byte(`{"id":"pay_gw_1"}`),
		Ref:              &ref,
	})
	require.NoError(t, err)

	var txStatus string
	require.NoError(t, db.Raw(`SELECT status FROM transactions WHERE gateway_payment_id = 'pay_gw_1'`).Scan(&txStatus).Error)
	require.Equal(t, paymentdomain.TransactionStatusSuccessful, txStatus)

	var intentStatus string
	require.NoError(t, db.Raw(`SELECT status FROM payment_intents WHERE gateway_order_id = 'order_gw_1'`).Scan(&intentStatus).Error)
	require.Equal(t, paymentdomain.IntentStatusCompleted, intentStatus)

	var order struct {
		PaymentStatus string
		Status        string
	}
	require.NoError(t, db.Raw(`SELECT payment_status, status FROM orders WHERE id = ?`, orderID).Scan(&order).Error)
	require.Equal(t, paymentdomain.TransactionStatusSuccessful, order.PaymentStatus)
	require.Equal(t, fulfillmentdomain.OrderStatusAccepted, order.Status)

	require.EqualValues(t, 1, countRows(t, db,
		`SELECT COUNT(1) FROM notifications WHERE recipient_id = ? AND entity_id = ?`, customerID, orderID))
}

func TestReconcileIdempotentRedelivery(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(21)
	require.NoError(t, err)
	svc := newWebhookService(t, db, node)

	orderID := node.Generate()
	customerID := node.Generate()
	seedOrder(t, db, orderID, customerID)

	ref := fulfillmentdomain.OrderRef(orderID)
	event := paymentdomain.Event{
		GatewayPaymentID: "pay_gw_2",
		Status:           paymentdomain.TransactionStatusSuccessful,
		Amount:           50000,
		Currency:         "INR",
		Ref:              &ref,
	}
	require.NoError(t, svc.Reconcile(ctx, &event))

	redelivered := event
	require.NoError(t, svc.Reconcile(ctx, &redelivered))

	require.EqualValues(t, 1, countRows(t, db,
		`SELECT COUNT(1) FROM transactions WHERE gateway_payment_id = 'pay_gw_2'`))
	require.EqualValues(t, 1, countRows(t, db,
		`SELECT COUNT(1) FROM notifications WHERE recipient_id = ?`, customerID))
}

func TestReconcileFailedPayment(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(22)
	require.NoError(t, err)
	svc := newWebhookService(t, db, node)

	orderID := node.Generate()
	customerID := node.Generate()
	seedOrder(t, db, orderID, customerID)
	seedIntent(t, db, node.Generate(), "order_gw_3")

	ref := fulfillmentdomain.OrderRef(orderID)
	require.NoError(t, svc.Reconcile(ctx, &paymentdomain.Event{
		GatewayPaymentID: "pay_gw_3",
		GatewayOrderID:   "order_gw_3",
		Status:           paymentdomain.TransactionStatusFailed,
		Amount:           50000,
		Currency:         "INR",
		Ref:              &ref,
	}))

	var order struct {
		PaymentStatus string
		Status        string
	}
	require.NoError(t, db.Raw(`SELECT payment_status, status FROM orders WHERE id = ?`, orderID).Scan(&order).Error)
	require.Equal(t, paymentdomain.TransactionStatusFailed, order.PaymentStatus)
	require.Equal(t, fulfillmentdomain.OrderStatusPaymentFailed, order.Status)

	var intentStatus string
	require.NoError(t, db.Raw(`SELECT status FROM payment_intents WHERE gateway_order_id = 'order_gw_3'`).Scan(&intentStatus).Error)
	require.Equal(t, paymentdomain.IntentStatusFailed, intentStatus)

	var title string
	require.NoError(t, db.Raw(`SELECT title FROM notifications WHERE recipient_id = ?`, customerID).Scan(&title).Error)
	require.Equal(t, "Payment Failed", title)
}

func TestReconcileCreatesIntentFromEvent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(23)
	require.NoError(t, err)
	svc := newWebhookService(t, db, node)

	orderID := node.Generate()
	seedOrder(t, db, orderID, node.Generate())

	ref := fulfillmentdomain.OrderRef(orderID)
	require.NoError(t, svc.Reconcile(ctx, &paymentdomain.Event{
		GatewayPaymentID: "pay_gw_4",
		GatewayOrderID:   "order_gw_4",
		Status:           paymentdomain.TransactionStatusSuccessful,
		Amount:           75000,
		Currency:         "INR",
		Ref:              &ref,
	}))

	var intent struct {
		Status string
		Amount int64
	}
	require.NoError(t, db.Raw(`SELECT status, amount FROM payment_intents WHERE gateway_order_id = 'order_gw_4'`).Scan(&intent).Error)
	require.Equal(t, paymentdomain.IntentStatusCompleted, intent.Status)
	require.EqualValues(t, 75000, intent.Amount)
}

func TestReconcileInvalidStatus(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(24)
	require.NoError(t, err)
	svc := newWebhookService(t, db, node)

	err = svc.Reconcile(ctx, &paymentdomain.Event{
		GatewayPaymentID: "pay_gw_5",
		Status:           "authorized",
	})
	require.ErrorIs(t, err, paymentdomain.ErrInvalidPaymentStatus)
	require.EqualValues(t, 0, countRows(t, db, `SELECT COUNT(1) FROM transactions`))
}

func TestReconcileUnknownEntity(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(25)
	require.NoError(t, err)
	svc := newWebhookService(t, db, node)

	ref := fulfillmentdomain.OrderRef(node.Generate())
	err = svc.Reconcile(ctx, &paymentdomain.Event{
		GatewayPaymentID: "pay_gw_6",
		Status:           paymentdomain.TransactionStatusSuccessful,
		Ref:              &ref,
	})
	require.ErrorIs(t, err, fulfillmentdomain.ErrEntityNotFound)

	// The transaction record is kept so the redelivery converges, but no
	// notification goes out for an entity we could not update.
	require.EqualValues(t, 1, countRows(t, db, `SELECT COUNT(1) FROM transactions`))
	require.EqualValues(t, 0, countRows(t, db, `SELECT COUNT(1) FROM notifications`))
}

func TestReconcileServiceRequestPayment(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(27)
	require.NoError(t, err)
	svc := newWebhookService(t, db, node)

	requestID := node.Generate()
	customerID := node.Generate()
	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		`INSERT INTO service_requests (id, customer_id, business_id, request_number, payment_status, status, created_at, updated_at)
		 VALUES (?, ?, ?, 'SRQ-3001', 'pending', 'scheduled', ?, ?)`,
		requestID, customerID, customerID, now, now,
	).Error)

	ref := fulfillmentdomain.ServiceRequestRef(requestID)
	require.NoError(t, svc.Reconcile(ctx, &paymentdomain.Event{
		GatewayPaymentID: "pay_gw_8",
		Status:           paymentdomain.TransactionStatusSuccessful,
		Amount:           25000,
		Currency:         "INR",
		Ref:              &ref,
	}))

	// Payment touches payment_status only; the scheduling flow owns status.
	var sr struct {
		PaymentStatus string
		Status        string
	}
	require.NoError(t, db.Raw(`SELECT payment_status, status FROM service_requests WHERE id = ?`, requestID).Scan(&sr).Error)
	require.Equal(t, paymentdomain.TransactionStatusSuccessful, sr.PaymentStatus)
	require.Equal(t, "scheduled", sr.Status)

	var title string
	require.NoError(t, db.Raw(`SELECT title FROM notifications WHERE recipient_id = ?`, customerID).Scan(&title).Error)
	require.Equal(t, "Payment Successful", title)
}

func TestReconcileRentalRefund(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(28)
	require.NoError(t, err)
	svc := newWebhookService(t, db, node)

	rentalID := node.Generate()
	customerID := node.Generate()
	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		`INSERT INTO rentals (id, customer_id, business_id, rental_number, payment_status, status, created_at, updated_at)
		 VALUES (?, ?, ?, 'RNT-4001', 'successful', 'active', ?, ?)`,
		rentalID, customerID, customerID, now, now,
	).Error)

	ref := fulfillmentdomain.RentalRef(rentalID)
	require.NoError(t, svc.Reconcile(ctx, &paymentdomain.Event{
		GatewayPaymentID: "pay_gw_9",
		Status:           paymentdomain.TransactionStatusRefunded,
		Amount:           30000,
		Currency:         "INR",
		Ref:              &ref,
	}))

	var rental struct {
		PaymentStatus string
		Status        string
	}
	require.NoError(t, db.Raw(`SELECT payment_status, status FROM rentals WHERE id = ?`, rentalID).Scan(&rental).Error)
	require.Equal(t, paymentdomain.TransactionStatusRefunded, rental.PaymentStatus)
	require.Equal(t, "active", rental.Status)

	var notification struct {
		Title         string
		PaymentStatus string
	}
	require.NoError(t, db.Raw(`SELECT title, payment_status FROM notifications WHERE recipient_id = ?`, customerID).Scan(&notification).Error)
	require.Equal(t, "Payment Refunded", notification.Title)
	require.Equal(t, paymentdomain.TransactionStatusRefunded, notification.PaymentStatus)
}

func TestReconcileWithoutReference(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(26)
	require.NoError(t, err)
	svc := newWebhookService(t, db, node)

	require.NoError(t, svc.Reconcile(ctx, &paymentdomain.Event{
		GatewayPaymentID: "pay_gw_7",
		Status:           paymentdomain.TransactionStatusRefunded,
	}))
	require.EqualValues(t, 1, countRows(t, db, `SELECT COUNT(1) FROM transactions`))
	require.EqualValues(t, 0, countRows(t, db, `SELECT COUNT(1) FROM notifications`))
}
