package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// Service issues payment links and settles them against the gateway.
type Service interface {
	CreateLink(ctx context.Context, req CreateLinkRequest) (*CreateLinkResult, error)
	GetLink(ctx context.Context, orderID string) (*PaymentLink, error)
	Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error)
	Refund(ctx context.Context, orderID string, req RefundLinkRequest) (*RefundResult, error)
}

// WebhookService applies provider notifications to payment links.
type WebhookService interface {
	IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error
}

type CreateLinkRequest struct {
	MyCompanyID   *snowflake.ID  `json:"my_company_id"`
	Amount        *float64       `json:"amount"`
	Currency      string         `json:"currency"`
	Country       string         `json:"country"`
	Description   string         `json:"description"`
	CustomerName  *string        `json:"customer_name"`
	CustomerEmail *string        `json:"customer_email"`
	CustomerPhone *string        `json:"customer_phone"`
	ProjectID     *snowflake.ID  `json:"project_id"`
	DealID        *snowflake.ID  `json:"deal_id"`
	ExpiresInDays *int           `json:"expires_in_days"`
	Metadata      map[string]any `json:"metadata"`
}

type CreateLinkResult struct {
	Success     bool         `json:"success"`
	DemoMode    bool         `json:"demo_mode"`
	PaymentLink *PaymentLink `json:"payment_link"`
}

type ProcessRequest struct {
	OrderID    string     `json:"order_id"`
	Token      string     `json:"token"`
	Card       *CardInput `json:"card"`
	PayerEmail string     `json:"payer_email"`
}

// CardInput is raw card data as typed by the payer. Expiration is "MM/YY".
type CardInput struct {
	Number     string `json:"number"`
	HolderName string `json:"holder_name"`
	Expiration string `json:"expiration"`
	CVV        string `json:"cvv"`
}

type ProcessResult struct {
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	DemoMode  bool   `json:"demo_mode"`
}

type RefundLinkRequest struct {
	Amount *float64 `json:"amount"`
}

type RefundResult struct {
	Success  bool    `json:"success"`
	RefundID string  `json:"refund_id"`
	OrderID  string  `json:"order_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
}

// BelowMinimumError rejects a link amount under the configured minimum.
// The comparison ignores currency.
type BelowMinimumError struct {
	Minimum float64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("El monto mínimo es USD %s (o equivalente) para pagos con dLocal Go",
		strconv.FormatFloat(e.Minimum, 'f', -1, 64))
}

var (
	ErrInvalidCompany      = errors.New("invalid_company")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidDescription  = errors.New("invalid_description")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidCountry      = errors.New("invalid_country")
	ErrInvalidExpiry       = errors.New("invalid_expiry")
	ErrInvalidOrder        = errors.New("invalid_order")
	ErrMissingPaymentData  = errors.New("missing_payment_data")
	ErrRawCardDisabled     = errors.New("raw_card_disabled")
	ErrInvalidCard         = errors.New("invalid_card")
	ErrAlreadyPaid         = errors.New("already_paid")
	ErrLinkExpired         = errors.New("link_expired")
	ErrLinkCancelled       = errors.New("link_cancelled")
	ErrPaymentInProgress   = errors.New("payment_in_progress")
	ErrNotRefundable       = errors.New("not_refundable")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrNotFound            = errors.New("not_found")
	ErrInvalidProvider     = errors.New("invalid_provider")
	ErrProviderNotFound    = errors.New("provider_not_found")
	ErrInvalidConfig       = errors.New("invalid_config")
	ErrInvalidSignature    = errors.New("invalid_signature")
	ErrInvalidPayload      = errors.New("invalid_payload")
	ErrGatewayNotAvailable = errors.New("gateway_not_available")
)
