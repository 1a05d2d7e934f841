package domain

import (
	"context"
	"net/http"
	"strings"
)

// Gateway is a card-payment provider.
type Gateway interface {
	CreatePayment(ctx context.Context, req ChargeRequest) (*Charge, error)
	GetPayment(ctx context.Context, id string) (*Charge, error)
	Refund(ctx context.Context, req RefundRequest) (*Refund, error)
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*WebhookEvent, error)
}

type AdapterConfig struct {
	Provider      string
	APIURL        string
	APIKey        string
	SecretKey     string
	WebhookSecret string
	HTTPClient    *http.Client
}

type AdapterFactory interface {
	Provider() string
	NewAdapter(cfg AdapterConfig) (Gateway, error)
}

type ChargeRequest struct {
	Amount            float64
	Currency          string
	Country           string
	Description       string
	ExternalReference string
	NotificationURL   string
	PayerName         string
	PayerEmail        string
	Token             string
	Card              *Card
}

type Card struct {
	Number          string
	HolderName      string
	ExpirationMonth int
	ExpirationYear  int
	CVV             string
}

type Charge struct {
	ID                string
	Status            string
	StatusDetail      string
	PaymentMethodType string
	Amount            float64
	Currency          string
	Raw               []byte
}

type RefundRequest struct {
	PaymentID string
	Amount    *float64
	Currency  string
}

type Refund struct {
	ID        string
	PaymentID string
	Status    string
	Amount    float64
	Currency  string
}

// WebhookEvent is the provider notification reduced to what a link needs.
type WebhookEvent struct {
	PaymentID     string
	OrderID       string
	Status        string
	Amount        *float64
	Currency      string
	PaymentMethod string
	RawPayload    []byte
}

// GatewayError carries the provider's message back to the payer.
type GatewayError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *GatewayError) Error() string {
	if e == nil || strings.TrimSpace(e.Message) == "" {
		return "payment_failed"
	}
	return e.Message
}

// Settled reports whether a charge status means the money was captured.
func Settled(gatewayStatus string) bool {
	switch strings.ToUpper(strings.TrimSpace(gatewayStatus)) {
	case "PAID", "APPROVED", "AUTHORIZED":
		return true
	}
	return false
}

// MapWebhookStatus translates a provider status into a link status.
// Unknown values map to pending.
func MapWebhookStatus(gatewayStatus string) string {
	switch strings.ToUpper(strings.TrimSpace(gatewayStatus)) {
	case "PAID", "APPROVED":
		return StatusPaid
	case "REJECTED":
		return StatusFailed
	case "CANCELLED", "REFUNDED":
		return StatusCancelled
	case "EXPIRED":
		return StatusExpired
	default:
		return StatusPending
	}
}
