package service

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/config"
	"github.com/verlyx/hub/internal/events"
	notificationdomain "github.com/verlyx/hub/internal/notification/domain"
	"github.com/verlyx/hub/internal/payment/domain"
	"github.com/verlyx/hub/internal/payment/repository"
	"github.com/verlyx/hub/internal/ratelimit"
	"github.com/verlyx/hub/pkg/db"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const (
	owner   snowflake.ID = 31
	company snowflake.ID = 900
)

type fakeGateway struct {
	charge  *domain.Charge
	err     error
	calls   []domain.ChargeRequest
	refunds []domain.RefundRequest
}

func (g *fakeGateway) CreatePayment(_ context.Context, req domain.ChargeRequest) (*domain.Charge, error) {
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	return g.charge, nil
}

func (g *fakeGateway) GetPayment(context.Context, string) (*domain.Charge, error) {
	return g.charge, g.err
}

func (g *fakeGateway) Refund(_ context.Context, req domain.RefundRequest) (*domain.Refund, error) {
	g.refunds = append(g.refunds, req)
	if g.err != nil {
		return nil, g.err
	}
	return &domain.Refund{ID: "RF-1", PaymentID: req.PaymentID, Status: "SUCCESS"}, nil
}

func (g *fakeGateway) Verify(context.Context, []byte, http.Header) error { return nil }

func (g *fakeGateway) Parse(context.Context, []byte) (*domain.WebhookEvent, error) {
	return nil, domain.ErrInvalidPayload
}

type fakeNotifications struct {
	notificationdomain.Service
	created []notificationdomain.CreateRequest
}

func (n *fakeNotifications) Create(_ context.Context, req notificationdomain.CreateRequest) (*notificationdomain.Notification, error) {
	n.created = append(n.created, req)
	return &notificationdomain.Notification{UserID: req.UserID, Title: req.Title}, nil
}

type fixture struct {
	svc      *Service
	conn     *gorm.DB
	gateway  *fakeGateway
	events   *events.Recorder
	notified *fakeNotifications
	clock    *clock.FakeClock
	locker   *ratelimit.MemoryLocker
}

func newFixture(t *testing.T, live bool, payments config.PaymentsConfig) *fixture {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.PaymentLink{}, &domain.Payment{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{AppURL: "http://localhost:3000", APIPrefix: "api"}
	f := &fixture{
		conn:     conn,
		gateway:  &fakeGateway{charge: &domain.Charge{ID: "DP-1", Status: "PAID", Raw: []byte(`{"id":"DP-1"}`)}},
		events:   &events.Recorder{},
		notified: &fakeNotifications{},
		clock:    clock.NewFakeClock(time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.locker = ratelimit.NewMemoryLocker(f.clock)

	var gateway domain.Gateway
	if live {
		cfg.DLocal = config.DLocalConfig{APIKey: "key", SecretKey: "secret", APIURL: "http://gateway.test"}
		gateway = f.gateway
	}

	f.svc = NewService(Params{
		DB:            conn,
		Log:           zaptest.NewLogger(t),
		GenID:         node,
		Repo:          repository.Provide(),
		Authz:         authorization.Static{},
		Clock:         f.clock,
		Cfg:           cfg,
		Payments:      config.NewStaticPaymentsConfigHolder(payments),
		Gateway:       gateway,
		Locker:        f.locker,
		Publisher:     f.events,
		Notifications: f.notified,
	})
	return f
}

func (f *fixture) countPayments(t *testing.T, orderID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(&domain.Payment{}).Where("order_id = ?", orderID).Count(&n).Error)
	return n
}

func (f *fixture) createLink(t *testing.T, amount float64) *domain.PaymentLink {
	t.Helper()
	name := "Acme SRL"
	res, err := f.svc.CreateLink(member(), domain.CreateLinkRequest{
		Amount:       &amount,
		Description:  "Diseño web",
		CustomerName: &name,
	})
	require.NoError(t, err)
	return res.PaymentLink
}

func member() context.Context {
	ctx := companycontext.WithUserID(context.Background(), owner)
	return companycontext.WithCompanyID(ctx, company)
}

func float(v float64) *float64 { return &v }

func TestCreateLinkDemoMode(t *testing.T) {
	f := newFixture(t, false, config.DefaultPaymentsConfig())

	res, err := f.svc.CreateLink(member(), domain.CreateLinkRequest{Amount: float(150), Description: " Consultoría "})
	require.NoError(t, err)

	link := res.PaymentLink
	assert.True(t, res.Success)
	assert.True(t, res.DemoMode)
	assert.True(t, link.DemoMode)
	assert.Regexp(t, regexp.MustCompile(`^VLX-\d+-[0-9a-z]{9}$`), link.OrderID)
	assert.Equal(t, "http://localhost:3000/pay/"+link.OrderID, link.PaymentURL)
	assert.Equal(t, link.PaymentURL, link.CheckoutURL)
	assert.Equal(t, "USD", link.Currency)
	assert.Equal(t, "UY", link.Country)
	assert.Equal(t, "Consultoría", link.Description)
	assert.Equal(t, domain.StatusPending, link.Status)
	assert.Equal(t, f.clock.Now().AddDate(0, 0, 7), link.ExpiresAt)
	require.NotNil(t, link.CreatedBy)
	assert.Equal(t, owner, *link.CreatedBy)
}

func TestCreateLinkValidation(t *testing.T) {
	f := newFixture(t, true, config.DefaultPaymentsConfig())

	_, err := f.svc.CreateLink(member(), domain.CreateLinkRequest{Amount: float(50), Currency: "UYU", Description: "x"})
	var below *domain.BelowMinimumError
	require.True(t, errors.As(err, &below))
	assert.Equal(t, "El monto mínimo es USD 100 (o equivalente) para pagos con dLocal Go", err.Error())

	_, err = f.svc.CreateLink(member(), domain.CreateLinkRequest{Amount: float(99.996), Description: "x"})
	assert.True(t, errors.As(err, &below))

	_, err = f.svc.CreateLink(member(), domain.CreateLinkRequest{Description: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.CreateLink(member(), domain.CreateLinkRequest{Amount: float(200), Description: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidDescription)

	zero := 0
	_, err = f.svc.CreateLink(member(), domain.CreateLinkRequest{Amount: float(200), Description: "x", ExpiresInDays: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidExpiry)

	_, err = f.svc.CreateLink(context.Background(), domain.CreateLinkRequest{Amount: float(200), Description: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	f.svc.authz = authorization.Static{Err: authorization.ErrForbidden}
	_, err = f.svc.CreateLink(member(), domain.CreateLinkRequest{Amount: float(200), Description: "x"})
	assert.ErrorIs(t, err, authorization.ErrForbidden)
}

func TestGetLinkExpiresPendingLink(t *testing.T) {
	f := newFixture(t, true, config.DefaultPaymentsConfig())
	link := f.createLink(t, 150)

	got, err := f.svc.GetLink(context.Background(), link.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)

	f.clock.Advance(8 * 24 * time.Hour)
	got, err = f.svc.GetLink(context.Background(), link.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, got.Status)

	stored, err := repository.Provide().FindLinkByOrderID(context.Background(), f.conn, link.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, stored.Status)

	_, err = f.svc.GetLink(context.Background(), "VLX-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessSettlesOnce(t *testing.T) {
	f := newFixture(t, true, config.DefaultPaymentsConfig())
	link := f.createLink(t, 150)

	res, err := f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: link.OrderID, Token: "tok_123"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, res.Status)
	assert.Equal(t, "DP-1", res.PaymentID)

	require.Len(t, f.gateway.calls, 1)
	call := f.gateway.calls[0]
	assert.Equal(t, link.OrderID, call.ExternalReference)
	assert.Equal(t, "http://localhost:3000/api/webhooks/dlocal", call.NotificationURL)
	assert.Equal(t, "noreply@verlyx.com", call.PayerEmail)
	assert.Equal(t, "tok_123", call.Token)

	stored, err := repository.Provide().FindLinkByOrderID(context.Background(), f.conn, link.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, stored.Status)
	require.NotNil(t, stored.ExternalID)
	assert.Equal(t, "DP-1", *stored.ExternalID)
	require.NotNil(t, stored.PaymentMethod)
	assert.Equal(t, domain.PaymentMethodCard, *stored.PaymentMethod)
	assert.NotNil(t, stored.PaidAt)
	assert.Equal(t, int64(1), f.countPayments(t, link.OrderID))

	recorded := f.events.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, events.SubjectPaymentPaid, recorded[0].Subject)
	require.Len(t, f.notified.created, 1)
	assert.Equal(t, owner, f.notified.created[0].UserID)
	assert.Equal(t, "Pago recibido", f.notified.created[0].Title)
	assert.Equal(t, "Se recibió un pago de USD 150.00 de Acme SRL", f.notified.created[0].Message)

	_, err = f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: link.OrderID, Token: "tok_456"})
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
	assert.Len(t, f.gateway.calls, 1)
	assert.Equal(t, int64(1), f.countPayments(t, link.OrderID))
}

func TestProcessFailureAllowsRetry(t *testing.T) {
	f := newFixture(t, true, config.DefaultPaymentsConfig())
	link := f.createLink(t, 150)

	f.gateway.err = &domain.GatewayError{StatusCode: 400, Message: "Card declined"}
	_, err := f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: link.OrderID, Token: "tok"})
	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "Card declined", gwErr.Message)

	stored, err := repository.Provide().FindLinkByOrderID(context.Background(), f.conn, link.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, "Card declined", *stored.ErrorMessage)
	assert.Equal(t, int64(0), f.countPayments(t, link.OrderID))

	f.gateway.err = nil
	res, err := f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: link.OrderID, Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, res.Status)

	stored, err = repository.Provide().FindLinkByOrderID(context.Background(), f.conn, link.OrderID)
	require.NoError(t, err)
	assert.Nil(t, stored.ErrorMessage)
}

func TestProcessTransportErrorIsNotForwarded(t *testing.T) {
	f := newFixture(t, true, config.DefaultPaymentsConfig())
	link := f.createLink(t, 150)

	f.gateway.err = errors.New("dial tcp 10.0.0.1:443: connection refused")
	_, err := f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: link.OrderID, Token: "tok"})
	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "Payment processing failed", gwErr.Message)
}

func TestProcessRejectedAndPendingCharges(t *testing.T) {
	f := newFixture(t, true, config.DefaultPaymentsConfig())

	rejected := f.createLink(t, 150)
	f.gateway.charge = &domain.Charge{ID: "DP-2", Status: "REJECTED", StatusDetail: "Insufficient funds"}
	_, err := f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: rejected.OrderID, Token: "tok"})
	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "Insufficient funds", gwErr.Message)

	pending := f.createLink(t, 150)
	f.gateway.charge = &domain.Charge{ID: "DP-3", Status: "PENDING"}
	res, err := f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: pending.OrderID, Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, res.Status)

	stored, err := repository.Provide().FindLinkByOrderID(context.Background(), f.conn, pending.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	require.NotNil(t, stored.ExternalID)
	assert.Equal(t, "DP-3", *stored.ExternalID)
	assert.Equal(t, int64(0), f.countPayments(t, pending.OrderID))
}

func TestProcessRejectsUnpayableLinks(t *testing.T) {
	f := newFixture(t, true, config.DefaultPaymentsConfig())

	_, err := f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: "VLX-none", Token: "tok"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	link := f.createLink(t, 150)
	_, err = f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: link.OrderID})
	assert.ErrorIs(t, err, domain.ErrMissingPaymentData)

	f.clock.Advance(8 * 24 * time.Hour)
	_, err = f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: link.OrderID, Token: "tok"})
	assert.ErrorIs(t, err, domain.ErrLinkExpired)
	assert.Empty(t, f.gateway.calls)
}

func TestProcessRawCardRequiresOptIn(t *testing.T) {
	card := &domain.CardInput{Number: "4111 1111 1111 1111", HolderName: "Ana", Expiration: "12/30", CVV: "123"}

	f := newFixture(t, true, config.DefaultPaymentsConfig())
	link := f.createLink(t, 150)
	_, err := f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: link.OrderID, Card: card})
	assert.ErrorIs(t, err, domain.ErrRawCardDisabled)

	allowed := config.DefaultPaymentsConfig()
	allowed.AllowRawCard = true
	f = newFixture(t, true, allowed)
	link = f.createLink(t, 150)
	_, err = f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: link.OrderID, Card: card})
	require.NoError(t, err)
	require.Len(t, f.gateway.calls, 1)
	require.NotNil(t, f.gateway.calls[0].Card)
	assert.Equal(t, "4111111111111111", f.gateway.calls[0].Card.Number)
	assert.Equal(t, 2030, f.gateway.calls[0].Card.ExpirationYear)
}

func TestProcessDemoModeSkipsGateway(t *testing.T) {
	f := newFixture(t, false, config.DefaultPaymentsConfig())
	link := f.createLink(t, 150)

	res, err := f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: link.OrderID, Token: "tok"})
	require.NoError(t, err)
	assert.True(t, res.DemoMode)
	assert.Equal(t, "demo_"+link.OrderID, res.PaymentID)
	assert.Empty(t, f.gateway.calls)
	assert.Equal(t, int64(1), f.countPayments(t, link.OrderID))
}

func TestProcessRespectsOrderLock(t *testing.T) {
	f := newFixture(t, true, config.DefaultPaymentsConfig())
	link := f.createLink(t, 150)

	token, ok, err := f.locker.TryLock(context.Background(), "payment_link:"+link.OrderID, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: link.OrderID, Token: "tok"})
	assert.ErrorIs(t, err, domain.ErrPaymentInProgress)

	require.NoError(t, f.locker.Release(context.Background(), "payment_link:"+link.OrderID, token))
	_, err = f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: link.OrderID, Token: "tok"})
	assert.NoError(t, err)
}

func TestApplyEvent(t *testing.T) {
	f := newFixture(t, true, config.DefaultPaymentsConfig())
	link := f.createLink(t, 150)

	err := f.svc.ApplyEvent(context.Background(), &domain.WebhookEvent{PaymentID: "DP-7", OrderID: link.OrderID, Status: "PENDING"})
	require.NoError(t, err)

	paid := &domain.WebhookEvent{PaymentID: "DP-7", OrderID: link.OrderID, Status: "APPROVED", Amount: float(150), Currency: "USD"}
	require.NoError(t, f.svc.ApplyEvent(context.Background(), paid))
	require.NoError(t, f.svc.ApplyEvent(context.Background(), paid))
	assert.Equal(t, int64(1), f.countPayments(t, link.OrderID))
	assert.Len(t, f.notified.created, 1)

	require.NoError(t, f.svc.ApplyEvent(context.Background(), &domain.WebhookEvent{PaymentID: "DP-7", OrderID: link.OrderID, Status: "REJECTED"}))
	stored, err := repository.Provide().FindLinkByOrderID(context.Background(), f.conn, link.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, stored.Status)

	err = f.svc.ApplyEvent(context.Background(), &domain.WebhookEvent{OrderID: "VLX-unknown", Status: "PAID"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyEventMapsNonPaidStatuses(t *testing.T) {
	f := newFixture(t, true, config.DefaultPaymentsConfig())
	link := f.createLink(t, 150)

	require.NoError(t, f.svc.ApplyEvent(context.Background(), &domain.WebhookEvent{OrderID: link.OrderID, Status: "CANCELLED"}))
	stored, err := repository.Provide().FindLinkByOrderID(context.Background(), f.conn, link.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Equal(t, int64(0), f.countPayments(t, link.OrderID))
}

func TestRefund(t *testing.T) {
	f := newFixture(t, true, config.DefaultPaymentsConfig())
	link := f.createLink(t, 150)

	_, err := f.svc.Refund(member(), link.OrderID, domain.RefundLinkRequest{})
	assert.ErrorIs(t, err, domain.ErrNotRefundable)

	_, err = f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: link.OrderID, Token: "tok"})
	require.NoError(t, err)

	_, err = f.svc.Refund(member(), link.OrderID, domain.RefundLinkRequest{Amount: float(500)})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	res, err := f.svc.Refund(member(), link.OrderID, domain.RefundLinkRequest{Amount: float(50)})
	require.NoError(t, err)
	assert.Equal(t, "RF-1", res.RefundID)
	assert.Equal(t, 50.0, res.Amount)
	require.Len(t, f.gateway.refunds, 1)
	assert.Equal(t, "DP-1", f.gateway.refunds[0].PaymentID)

	stored, err := repository.Provide().FindLinkByOrderID(context.Background(), f.conn, link.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)

	var payment domain.Payment
	require.NoError(t, f.conn.Where("order_id = ?", link.OrderID).First(&payment).Error)
	assert.Equal(t, domain.PaymentStatusRefunded, payment.Status)
}

func TestApplyEventAfterRefund(t *testing.T) {
	f := newFixture(t, true, config.DefaultPaymentsConfig())
	store := repository.Provide()

	replayed := f.createLink(t, 150)
	_, err := f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: replayed.OrderID, Token: "tok"})
	require.NoError(t, err)
	_, err = f.svc.Refund(member(), replayed.OrderID, domain.RefundLinkRequest{})
	require.NoError(t, err)

	paid := &domain.WebhookEvent{PaymentID: "DP-1", OrderID: replayed.OrderID, Status: "PAID", Amount: float(150), Currency: "USD"}
	require.NoError(t, f.svc.ApplyEvent(context.Background(), paid))
	stored, err := store.FindLinkByOrderID(context.Background(), f.conn, replayed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Equal(t, int64(1), f.countPayments(t, replayed.OrderID))

	refunded := f.createLink(t, 150)
	f.gateway.charge = &domain.Charge{ID: "DP-2", Status: "PAID"}
	_, err = f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: refunded.OrderID, Token: "tok"})
	require.NoError(t, err)
	_, err = f.svc.Refund(member(), refunded.OrderID, domain.RefundLinkRequest{})
	require.NoError(t, err)

	require.NoError(t, f.svc.ApplyEvent(context.Background(), &domain.WebhookEvent{PaymentID: "DP-2", OrderID: refunded.OrderID, Status: "REFUNDED"}))
	stored, err = store.FindLinkByOrderID(context.Background(), f.conn, refunded.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)

	_, err = f.svc.Process(context.Background(), domain.ProcessRequest{OrderID: refunded.OrderID, Token: "tok"})
	assert.ErrorIs(t, err, domain.ErrLinkCancelled)
	assert.Len(t, f.gateway.calls, 2)
}

func TestApplyEventKeepsExpiredLinkClosed(t *testing.T) {
	f := newFixture(t, true, config.DefaultPaymentsConfig())
	link := f.createLink(t, 150)
	require.NoError(t, f.conn.Model(&domain.PaymentLink{}).Where("id = ?", link.ID).Update("status", domain.StatusExpired).Error)

	require.NoError(t, f.svc.ApplyEvent(context.Background(), &domain.WebhookEvent{OrderID: link.OrderID, Status: "PENDING"}))
	stored, err := repository.Provide().FindLinkByOrderID(context.Background(), f.conn, link.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, stored.Status)
}

func TestParseCard(t *testing.T) {
	cases := []struct {
		name    string
		in      domain.CardInput
		year    int
		wantErr bool
	}{
		{name: "short year", in: domain.CardInput{Number: "4111111111111111", Expiration: "01/29", CVV: "123"}, year: 2029},
		{name: "long year", in: domain.CardInput{Number: "4111111111111111", Expiration: "01/2031", CVV: "1234"}, year: 2031},
		{name: "bad month", in: domain.CardInput{Number: "4111111111111111", Expiration: "13/29", CVV: "123"}, wantErr: true},
		{name: "no separator", in: domain.CardInput{Number: "4111111111111111", Expiration: "0129", CVV: "123"}, wantErr: true},
		{name: "short number", in: domain.CardInput{Number: "4111", Expiration: "01/29", CVV: "123"}, wantErr: true},
		{name: "bad cvv", in: domain.CardInput{Number: "4111111111111111", Expiration: "01/29", CVV: "1"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			card, err := parseCard(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidCard)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.year, card.ExpirationYear)
		})
	}
}
