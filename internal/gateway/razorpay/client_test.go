package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fixora/payflow/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.GatewayConfig{
		KeyID:          "key_test",
		KeySecret:      "secret_test",
		BaseURL:        baseURL,
		TimeoutSeconds: 5,
	})
}

func TestCreateOrder(t *testing.T) {
	var gotParams CreateOrderParams
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key_test" || pass != "secret_test" {
			t.Errorf("unexpected credentials %q %q", user, pass)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotParams); err != nil {
			t.Errorf("decode params: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Order{
			ID:       "order_test",
			Entity:   "order",
			Amount:   gotParams.Amount,
			Currency: gotParams.Currency,
			Receipt:  gotParams.Receipt,
			Status:   "created",
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	order, err := client.CreateOrder(context.Background(), CreateOrderParams{
		Amount:   50000,
		Currency: "INR",
		Receipt:  "rcpt_1",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != "order_test" {
		t.Fatalf("expected order_test, got %q", order.ID)
	}
	if gotParams.PaymentCapture != 1 {
		t.Fatalf("expected payment_capture=1, got %d", gotParams.PaymentCapture)
	}
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateOrder(context.Background(), CreateOrderParams{
		Amount:   1,
		Currency: "INR",
		Receipt:  "rcpt_1",
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Description != "amount too small" {
		t.Fatalf("unexpected description %q", apiErr.Description)
	}
}

func TestFetchPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/pay_test" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Payment{
			ID:      "pay_test",
			Entity:  "payment",
			Status:  "captured",
			OrderID: "order_test",
			Method:  "upi",
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	payment, err := client.FetchPayment(context.Background(), "pay_test")
	if err != nil {
		t.Fatalf("fetch payment: %v", err)
	}
	if payment.Method != "upi" {
		t.Fatalf("expected upi, got %q", payment.Method)
	}
}

func TestClientMissingCredentials(t *testing.T) {
	client := NewClient(config.GatewayConfig{BaseURL: "http://localhost"})
	if _, err := client.FetchPayment(context.Background(), "pay_test"); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}
