package dlocal

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	paymentdomain "github.com/verlyx/hub/internal/payment/domain"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc, webhookSecret string) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gw, err := NewFactory().NewAdapter(paymentdomain.AdapterConfig{
		APIURL:        srv.URL,
		APIKey:        "key",
		SecretKey:     "secret",
		WebhookSecret: webhookSecret,
		HTTPClient:    srv.Client(),
	})
	require.NoError(t, err)
	return gw.(*Adapter)
}

func TestCreatePaymentSendsContract(t *testing.T) {
	var got map[string]any
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payments", r.URL.Path)
		assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("key:secret")), r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(idempotencyHeader))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"DP-1","status":"paid","payment_method_type":"CARD","amount":150,"currency":"USD"}`))
	}, "")

	charge, err := adapter.CreatePayment(context.Background(), paymentdomain.ChargeRequest{
		Amount:            150,
		Currency:          "usd",
		Country:           "uy",
		Description:       "Diseño web",
		ExternalReference: "VLX-1-abc",
		NotificationURL:   "http://localhost:3000/api/webhooks/dlocal",
		PayerEmail:        "payer@example.com",
		Card: &paymentdomain.Card{
			Number:          "4111 1111 1111 1111",
			HolderName:      "Ana Pérez",
			ExpirationMonth: 12,
			ExpirationYear:  2030,
			CVV:             "123",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "DP-1", charge.ID)
	assert.Equal(t, "PAID", charge.Status)
	assert.True(t, paymentdomain.Settled(charge.Status))

	assert.Equal(t, "USD", got["currency"])
	assert.Equal(t, "UY", got["country"])
	assert.Equal(t, "DIRECT", got["payment_method_flow"])
	assert.Equal(t, "VLX-1-abc", got["external_reference"])
	cardBody := got["card"].(map[string]any)
	assert.Equal(t, "4111111111111111", cardBody["number"])
	assert.Equal(t, float64(2030), cardBody["expiration_year"])
	_, hasToken := got["token"]
	assert.False(t, hasToken)
}

func TestCreatePaymentReturnsGatewayMessage(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":5008,"message":"Card declined"}`))
	}, "")

	_, err := adapter.CreatePayment(context.Background(), paymentdomain.ChargeRequest{Amount: 100, Token: "tok"})

	var gwErr *paymentdomain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
	assert.Equal(t, "5008", gwErr.Code)
	assert.Equal(t, "Card declined", gwErr.Error())
}

func TestGetPaymentAndRefund(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/payments/DP-9":
			_, _ = w.Write([]byte(`{"id":"DP-9","status":"PENDING"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/v1/refunds":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "DP-9", body["payment_id"])
			assert.Equal(t, 50.0, body["amount"])
			_, _ = w.Write([]byte(`{"id":"RF-1","payment_id":"DP-9","status":"SUCCESS","amount":50,"currency":"USD"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, "")

	charge, err := adapter.GetPayment(context.Background(), "DP-9")
	require.NoError(t, err)
	assert.Equal(t, "PENDING", charge.Status)

	amount := 50.0
	refund, err := adapter.Refund(context.Background(), paymentdomain.RefundRequest{PaymentID: "DP-9", Amount: &amount, Currency: "usd"})
	require.NoError(t, err)
	assert.Equal(t, "RF-1", refund.ID)
	assert.Equal(t, 50.0, refund.Amount)
}

func TestCallsWithoutCredentialsAreRejected(t *testing.T) {
	gw, err := NewFactory().NewAdapter(paymentdomain.AdapterConfig{APIURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = gw.CreatePayment(context.Background(), paymentdomain.ChargeRequest{Amount: 100, Token: "tok"})
	assert.ErrorIs(t, err, paymentdomain.ErrGatewayNotAvailable)
}

func TestFactoryRequiresURL(t *testing.T) {
	_, err := NewFactory().NewAdapter(paymentdomain.AdapterConfig{})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidConfig)
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"DP-1","external_reference":"VLX-1-abc","status":"PAID"}`)
	adapter := &Adapter{webhookSecret: "whsec"}

	headers := http.Header{}
	headers.Set(signatureHeader, Sign("whsec", payload))
	assert.NoError(t, adapter.Verify(context.Background(), payload, headers))

	headers.Set(signatureHeader, Sign("wrong", payload))
	assert.ErrorIs(t, adapter.Verify(context.Background(), payload, headers), paymentdomain.ErrInvalidSignature)

	assert.ErrorIs(t, adapter.Verify(context.Background(), payload, http.Header{}), paymentdomain.ErrInvalidSignature)

	unsigned := &Adapter{}
	assert.NoError(t, unsigned.Verify(context.Background(), payload, http.Header{}))
}

func TestParseNotification(t *testing.T) {
	adapter := &Adapter{}

	event, err := adapter.Parse(context.Background(), []byte(`{"id":"DP-1","order_id":"VLX-2-xyz","status":"approved","amount":120.5,"currency":"usd","payment_method":"CARD"}`))
	require.NoError(t, err)
	assert.Equal(t, "VLX-2-xyz", event.OrderID)
	assert.Equal(t, "DP-1", event.PaymentID)
	assert.Equal(t, "APPROVED", event.Status)
	assert.Equal(t, "USD", event.Currency)
	require.NotNil(t, event.Amount)
	assert.Equal(t, 120.5, *event.Amount)

	_, err = adapter.Parse(context.Background(), []byte(`{"id":"DP-1","status":"PAID"}`))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)
}
