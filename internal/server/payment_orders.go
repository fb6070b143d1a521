package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	paymentdomain "github.com/fixora/payflow/internal/payment/domain"
)

type createPaymentOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

func (s *Server) HandleCreatePaymentOrder(c *gin.Context) {
	allowed, res := s.orderLimiter.Allow(c.Request.Context(), c.ClientIP())
	if !allowed {
		s.obsMetrics.RecordRateLimitDenied()
		if res != nil {
			c.Header("Retry-After", res.RetryAfter.String())
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"error":   "too_many_requests",
		})
		return
	}

	var req createPaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortOrderError(c, ErrInvalidRequest)
		return
	}

	order, err := s.paymentSvc.CreateOrder(c.Request.Context(), paymentdomain.CreateOrderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		s.abortOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"id":          order.ID,
		"entity":      order.Entity,
		"amount":      order.Amount,
		"amount_paid": order.AmountPaid,
		"amount_due":  order.AmountDue,
		"currency":    order.Currency,
		"receipt":     order.Receipt,
		"status":      order.Status,
		"attempts":    order.Attempts,
		"notes":       order.Notes,
		"created_at":  order.CreatedAt,
	})
}

func (s *Server) abortOrderError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   errorMessage(err),
	})
}
