package dlocal

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	paymentdomain "github.com/verlyx/hub/internal/payment/domain"
)

const (
	signatureHeader   = "X-Signature"
	idempotencyHeader = "X-Idempotency-Key"
	maxResponseBytes  = 1 << 20
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return paymentdomain.ProviderDLocalGo
}

func (f *Factory) NewAdapter(cfg paymentdomain.AdapterConfig) (paymentdomain.Gateway, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if base == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}
	if _, err := url.Parse(base); err != nil {
		return nil, paymentdomain.ErrInvalidConfig
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Adapter{
		baseURL:       base,
		apiKey:        strings.TrimSpace(cfg.APIKey),
		secretKey:     strings.TrimSpace(cfg.SecretKey),
		webhookSecret: strings.TrimSpace(cfg.WebhookSecret),
		client:        client,
	}, nil
}

type Adapter struct {
	baseURL       string
	apiKey        string
	secretKey     string
	webhookSecret string
	client        *http.Client
}

type payer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type card struct {
	Number          string `json:"number"`
	HolderName      string `json:"holder_name"`
	ExpirationMonth int    `json:"expiration_month"`
	ExpirationYear  int    `json:"expiration_year"`
	CVV             string `json:"cvv"`
}

type paymentRequest struct {
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	Country           string  `json:"country"`
	Description       string  `json:"description,omitempty"`
	ExternalReference string  `json:"external_reference"`
	NotificationURL   string  `json:"notification_url,omitempty"`
	PaymentMethodFlow string  `json:"payment_method_flow"`
	Payer             payer   `json:"payer"`
	Token             string  `json:"token,omitempty"`
	Card              *card   `json:"card,omitempty"`
}

type paymentResponse struct {
	ID                string  `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	PaymentMethodType string  `json:"payment_method_type"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
}

type refundRequest struct {
	PaymentID string   `json:"payment_id"`
	Amount    *float64 `json:"amount,omitempty"`
	Currency  string   `json:"currency,omitempty"`
}

type refundResponse struct {
	ID        string  `json:"id"`
	PaymentID string  `json:"payment_id"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

type errorResponse struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type notification struct {
	ID                string   `json:"id"`
	PaymentID         string   `json:"payment_id"`
	ExternalReference string   `json:"external_reference"`
	OrderID           string   `json:"order_id"`
	Status            string   `json:"status"`
	Amount            *float64 `json:"amount"`
	Currency          string   `json:"currency"`
	PaymentMethod     string   `json:"payment_method"`
}

func (a *Adapter) CreatePayment(ctx context.Context, req paymentdomain.ChargeRequest) (*paymentdomain.Charge, error) {
	body := paymentRequest{
		Amount:            req.Amount,
		Currency:          strings.ToUpper(req.Currency),
		Country:           strings.ToUpper(req.Country),
		Description:       req.Description,
		ExternalReference: req.ExternalReference,
		NotificationURL:   req.NotificationURL,
		PaymentMethodFlow: "DIRECT",
		Payer:             payer{Name: req.PayerName, Email: req.PayerEmail},
		Token:             req.Token,
	}
	if req.Card != nil {
		body.Card = &card{
			Number:          strings.ReplaceAll(req.Card.Number, " ", ""),
			HolderName:      req.Card.HolderName,
			ExpirationMonth: req.Card.ExpirationMonth,
			ExpirationYear:  req.Card.ExpirationYear,
			CVV:             req.Card.CVV,
		}
	}

	var out paymentResponse
	raw, err := a.do(ctx, http.MethodPost, "/v1/payments", body, &out)
	if err != nil {
		return nil, err
	}
	return toCharge(out, raw)
}

func (a *Adapter) GetPayment(ctx context.Context, id string) (*paymentdomain.Charge, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, paymentdomain.ErrInvalidPayload
	}
	var out paymentResponse
	raw, err := a.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(id), nil, &out)
	if err != nil {
		return nil, err
	}
	return toCharge(out, raw)
}

func (a *Adapter) Refund(ctx context.Context, req paymentdomain.RefundRequest) (*paymentdomain.Refund, error) {
	if strings.TrimSpace(req.PaymentID) == "" {
		return nil, paymentdomain.ErrInvalidPayload
	}
	body := refundRequest{
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
		Currency:  strings.ToUpper(req.Currency),
	}
	var out refundResponse
	if _, err := a.do(ctx, http.MethodPost, "/v1/refunds", body, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("dlocal_response_invalid")
	}
	return &paymentdomain.Refund{
		ID:        out.ID,
		PaymentID: out.PaymentID,
		Status:    strings.ToUpper(out.Status),
		Amount:    out.Amount,
		Currency:  out.Currency,
	}, nil
}

// Verify checks the hex HMAC-SHA256 of the raw body. Without a webhook
// secret there is nothing to check against.
func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	if a.webhookSecret == "" {
		return nil
	}
	signature := strings.TrimSpace(headers.Get(signatureHeader))
	if signature == "" {
		return paymentdomain.ErrInvalidSignature
	}
	if !hmac.Equal([]byte(strings.ToLower(signature)), []byte(Sign(a.webhookSecret, payload))) {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.WebhookEvent, error) {
	var n notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	orderID := strings.TrimSpace(n.ExternalReference)
	if orderID == "" {
		orderID = strings.TrimSpace(n.OrderID)
	}
	if orderID == "" {
		return nil, paymentdomain.ErrInvalidPayload
	}
	paymentID := strings.TrimSpace(n.ID)
	if paymentID == "" {
		paymentID = strings.TrimSpace(n.PaymentID)
	}
	return &paymentdomain.WebhookEvent{
		PaymentID:     paymentID,
		OrderID:       orderID,
		Status:        strings.ToUpper(strings.TrimSpace(n.Status)),
		Amount:        n.Amount,
		Currency:      strings.ToUpper(strings.TrimSpace(n.Currency)),
		PaymentMethod: strings.TrimSpace(n.PaymentMethod),
		RawPayload:    payload,
	}, nil
}

// Sign returns the hex HMAC-SHA256 of payload under secret.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (a *Adapter) do(ctx context.Context, method, path string, body any, out any) ([]byte, error) {
	if a.apiKey == "" || a.secretKey == "" {
		return nil, paymentdomain.ErrGatewayNotAvailable
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", a.authorization())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set(idempotencyHeader, ulid.Make().String())
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return raw, decodeError(resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return raw, fmt.Errorf("dlocal_response_invalid: %w", err)
	}
	return raw, nil
}

func (a *Adapter) authorization() string {
	credentials := a.apiKey + ":" + a.secretKey
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

func decodeError(status int, raw []byte) error {
	gwErr := &paymentdomain.GatewayError{StatusCode: status}
	var body errorResponse
	if err := json.Unmarshal(raw, &body); err == nil {
		gwErr.Code = strings.Trim(string(body.Code), `"`)
		gwErr.Message = strings.TrimSpace(body.Message)
		if gwErr.Message == "" {
			gwErr.Message = strings.TrimSpace(body.Error)
		}
	}
	if gwErr.Message == "" {
		gwErr.Message = "Payment failed"
	}
	return gwErr
}

func toCharge(out paymentResponse, raw []byte) (*paymentdomain.Charge, error) {
	if strings.TrimSpace(out.ID) == "" {
		return nil, errors.New("dlocal_response_invalid")
	}
	return &paymentdomain.Charge{
		ID:                out.ID,
		Status:            strings.ToUpper(strings.TrimSpace(out.Status)),
		StatusDetail:      strings.TrimSpace(out.StatusDetail),
		PaymentMethodType: out.PaymentMethodType,
		Amount:            out.Amount,
		Currency:          out.Currency,
		Raw:               raw,
	}, nil
}
