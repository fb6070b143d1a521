package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	fulfillmentdomain "github.com/fixora/payflow/internal/fulfillment/domain"
	paymentdomain "github.com/fixora/payflow/internal/payment/domain"
)

type paymentWebhookData struct {
	PaymentID        string          `json:"payment_id"`
	GatewayOrderID   string          `json:"gateway_order_id"`
	PaymentStatus    string          `json:"payment_status"`
	Amount           int64           `json:"amount"`
	Currency         string          `json:"currency"`
	GatewayResponse  json.RawMessage `json:"gateway_response"`
	OrderID          string          `json:"order_id"`
	ServiceRequestID string          `json:"service_request_id"`
	RentalID         string          `json:"rental_id"`
}

type paymentWebhookRequest struct {
	Event string             `json:"event"`
	Data  paymentWebhookData `json:"data"`
}

func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	var req paymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(req.Data.PaymentID) == "" {
		AbortWithError(c, paymentdomain.ErrInvalidEvent)
		return
	}

	ref, err := fulfillmentdomain.ParseRef(req.Data.OrderID, req.Data.ServiceRequestID, req.Data.RentalID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	event := paymentdomain.Event{
		GatewayPaymentID: req.Data.PaymentID,
		GatewayOrderID:   req.Data.GatewayOrderID,
		Status:           req.Data.PaymentStatus,
		Amount:           req.Data.Amount,
		Currency:         req.Data.Currency,
		GatewayResponse:  req.Data.GatewayResponse,
		Ref:              &ref,
	}
	if err := s.webhookSvc.Reconcile(c.Request.Context(), &event); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
