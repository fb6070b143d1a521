package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	paymentdomain "github.com/fixora/payflow/internal/payment/domain"
)

type verifyPaymentRequest struct {
	GatewayOrderID   string `json:"order_id"`
	GatewayPaymentID string `json:"payment_id"`
	Signature        string `json:"signature"`
}

func (s *Server) HandleVerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"verified": false,
			"error":    "invalid_request",
		})
		return
	}

	result, err := s.paymentSvc.VerifyPayment(c.Request.Context(), paymentdomain.VerifyRequest{
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"verified": false,
			"error":    errorMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
