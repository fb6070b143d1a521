package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	fulfillmentdomain "github.com/fixora/payflow/internal/fulfillment/domain"
	paymentdomain "github.com/fixora/payflow/internal/payment/domain"
)

var ErrInvalidRequest = errors.New("invalid_request")

// AbortWithError records err on the context for the error middleware and the
// request logger.
func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandlingMiddleware turns recorded errors into the JSON error envelope.
// Every failure surfaces as 400: callers retry on their own schedule and the
// gateway redelivers webhooks on any non-2xx, so a 5xx would only change
// what their dashboards blame.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errorMessage(lastErr.Err)})
	}
}

func errorMessage(err error) string {
	switch {
	case err == nil:
		return "invalid_request"
	case errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidCurrency),
		errors.Is(err, paymentdomain.ErrInvalidReceipt),
		errors.Is(err, paymentdomain.ErrInvalidEvent),
		errors.Is(err, paymentdomain.ErrInvalidPaymentStatus),
		errors.Is(err, fulfillmentdomain.ErrMissingReference),
		errors.Is(err, fulfillmentdomain.ErrAmbiguousReference),
		errors.Is(err, fulfillmentdomain.ErrInvalidReference),
		errors.Is(err, fulfillmentdomain.ErrEntityNotFound),
		errors.Is(err, ErrInvalidRequest):
		return err.Error()
	default:
		var gatewayErr *paymentdomain.GatewayError
		if errors.As(err, &gatewayErr) {
			return gatewayErr.Error()
		}
		return "request_failed"
	}
}
