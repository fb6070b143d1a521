package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fixora/payflow/internal/config"
)

// Order is the gateway's order resource as returned by the orders API.
type Order struct {
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

// Payment is the gateway's payment resource.
type Payment struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	OrderID  string `json:"order_id"`
	Method   string `json:"method"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
}

type CreateOrderParams struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
	// PaymentCapture asks the gateway to capture automatically on authorization.
	PaymentCapture int `json:"payment_capture"`
}

// APIError is the gateway's error envelope. Its description is surfaced to
// callers verbatim.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Description) == "" {
		return "gateway_request_failed"
	}
	return e.Description
}

type errorResponse struct {
	Error APIError `json:"error"`
}

type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewClient(cfg config.GatewayConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{
		keyID:     strings.TrimSpace(cfg.KeyID),
		keySecret: strings.TrimSpace(cfg.KeySecret),
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		client:    &http.Client{Timeout: timeout},
	}
}

// CreateOrder opens a payment order with auto-capture enabled.
func (c *Client) CreateOrder(ctx context.Context, params CreateOrderParams) (Order, error) {
	params.PaymentCapture = 1

	var order Order
	if err := c.doRequest(ctx, http.MethodPost, "/v1/orders", params, &order); err != nil {
		return Order{}, err
	}
	if order.ID == "" {
		return Order{}, errors.New("gateway_response_invalid")
	}
	return order, nil
}

// FetchPayment retrieves the full detail of a single payment.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (Payment, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return Payment{}, errors.New("gateway_payment_id_required")
	}

	var payment Payment
	if err := c.doRequest(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &payment); err != nil {
		return Payment{}, err
	}
	if payment.ID == "" {
		return Payment{}, errors.New("gateway_response_invalid")
	}
	return payment, nil
}

func (c *Client) doRequest(ctx context.Context, method string, path string, body any, out any) error {
	if c.keyID == "" || c.keySecret == "" {
		return errors.New("gateway_credentials_missing")
	}

	var bodyReader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(encoded)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var gatewayErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&gatewayErr); err != nil {
			return &APIError{Code: "BAD_GATEWAY_RESPONSE"}
		}
		return &gatewayErr.Error
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
