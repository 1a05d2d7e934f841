package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/verlyx/hub/internal/payment/domain"
)

const maxWebhookBodyBytes = 1 << 20

func (s *Server) CreatePaymentLink(c *gin.Context) {
	var req paymentdomain.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.paymentSvc.CreateLink(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (s *Server) GetPaymentLink(c *gin.Context) {
	orderID := strings.TrimSpace(c.Query("order_id"))
	if orderID == "" {
		AbortWithError(c, newValidationError("order_id", "required", "order_id is required"))
		return
	}
	c.Set("order_id", orderID)

	link, err := s.paymentSvc.GetLink(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_link": link})
}

func (s *Server) ProcessPayment(c *gin.Context) {
	var req paymentdomain.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.OrderID = strings.TrimSpace(req.OrderID)
	c.Set("order_id", req.OrderID)

	result, err := s.paymentSvc.Process(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if result.Status == paymentdomain.StatusPending {
		status = http.StatusAccepted
	}
	c.JSON(status, result)
}

func (s *Server) RefundPayment(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("orderId"))
	c.Set("order_id", orderID)

	var req paymentdomain.RefundLinkRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	result, err := s.paymentSvc.Refund(c.Request.Context(), orderID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleDLocalWebhook hands the raw body to the webhook service so the
// signature is checked against the exact bytes received.
func (s *Server) HandleDLocalWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err = s.paymentWebhookSvc.IngestWebhook(c.Request.Context(), paymentdomain.ProviderDLocalGo, payload, c.Request.Header)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (s *Server) DLocalWebhookHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "dlocal-webhook"})
}

func isPaymentValidationError(err error) bool {
	switch {
	case errors.Is(err, paymentdomain.ErrInvalidCompany),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidDescription),
		errors.Is(err, paymentdomain.ErrInvalidCurrency),
		errors.Is(err, paymentdomain.ErrInvalidCountry),
		errors.Is(err, paymentdomain.ErrInvalidExpiry),
		errors.Is(err, paymentdomain.ErrInvalidOrder),
		errors.Is(err, paymentdomain.ErrMissingPaymentData),
		errors.Is(err, paymentdomain.ErrRawCardDisabled),
		errors.Is(err, paymentdomain.ErrInvalidCard),
		errors.Is(err, paymentdomain.ErrAlreadyPaid),
		errors.Is(err, paymentdomain.ErrLinkExpired),
		errors.Is(err, paymentdomain.ErrLinkCancelled),
		errors.Is(err, paymentdomain.ErrNotRefundable),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidProvider):
		return true
	default:
		return false
	}
}
