package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	authdomain "github.com/verlyx/hub/internal/auth/domain"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/config"
	dealdomain "github.com/verlyx/hub/internal/deal/domain"
	"github.com/verlyx/hub/internal/observability"
	paymentdomain "github.com/verlyx/hub/internal/payment/domain"
	"github.com/verlyx/hub/internal/ratelimit"
)

const testAccessToken = "good-token"

var testUserID = snowflake.ID(4242)

type fakeAuthService struct {
	authdomain.Service
}

func (fakeAuthService) Authenticate(_ context.Context, token string) (*authdomain.Principal, error) {
	if token != testAccessToken {
		return nil, authdomain.ErrInvalidToken
	}
	return &authdomain.Principal{UserID: testUserID, Email: "ana@verlyx.com", Role: "user"}, nil
}

func (fakeAuthService) Login(_ context.Context, req authdomain.LoginRequest) (*authdomain.AuthResult, error) {
	if req.Password != "correct-horse" {
		return nil, authdomain.ErrInvalidCredentials
	}
	return &authdomain.AuthResult{
		User:      &authdomain.User{ID: testUserID, Email: req.Email},
		TokenPair: authdomain.TokenPair{AccessToken: "a", RefreshToken: "r"},
	}, nil
}

func (fakeAuthService) Me(_ context.Context, userID snowflake.ID) (*authdomain.User, error) {
	return &authdomain.User{ID: userID, Email: "ana@verlyx.com"}, nil
}

type fakeDealService struct {
	dealdomain.Service

	companyID snowflake.ID
	callerID  snowflake.ID
	body      dealdomain.CreateRequest
	getErr    error
	moveErr   error
	listErr   error
}

func (f *fakeDealService) Create(ctx context.Context, req dealdomain.CreateRequest) (*dealdomain.Deal, error) {
	f.companyID, _ = companycontext.Resolve(ctx, req.MyCompanyID)
	f.callerID, _ = companycontext.UserIDFromContext(ctx)
	f.body = req
	return &dealdomain.Deal{ID: 1, MyCompanyID: f.companyID, Title: req.Title}, nil
}

func (f *fakeDealService) List(ctx context.Context, req dealdomain.ListRequest) ([]dealdomain.Deal, error) {
	f.companyID, _ = companycontext.Resolve(ctx, req.MyCompanyID)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []dealdomain.Deal{}, nil
}

func (f *fakeDealService) Get(_ context.Context, id snowflake.ID) (*dealdomain.Deal, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dealdomain.Deal{ID: id, Title: "Website"}, nil
}

func (f *fakeDealService) MoveStage(_ context.Context, id snowflake.ID, req dealdomain.MoveStageRequest) (*dealdomain.Deal, error) {
	if f.moveErr != nil {
		return nil, f.moveErr
	}
	return &dealdomain.Deal{ID: id, Stage: req.NewStage}, nil
}

type fakePaymentService struct {
	paymentdomain.Service

	processResult *paymentdomain.ProcessResult
	processErr    error
	createErr     error
}

func (f *fakePaymentService) CreateLink(context.Context, paymentdomain.CreateLinkRequest) (*paymentdomain.CreateLinkResult, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &paymentdomain.CreateLinkResult{Success: true, DemoMode: true}, nil
}

func (f *fakePaymentService) Process(context.Context, paymentdomain.ProcessRequest) (*paymentdomain.ProcessResult, error) {
	if f.processErr != nil {
		return nil, f.processErr
	}
	return f.processResult, nil
}

type fakeWebhookService struct {
	payload []byte
	err     error
}

func (f *fakeWebhookService) IngestWebhook(_ context.Context, _ string, payload []byte, _ http.Header) error {
	f.payload = payload
	return f.err
}

type fakeLimiter struct {
	result *ratelimit.RateLimitResult
	keys   []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (*ratelimit.RateLimitResult, error) {
	f.keys = append(f.keys, key)
	return f.result, nil
}

type testServer struct {
	*Server
	deals    *fakeDealService
	payments *fakePaymentService
	webhooks *fakeWebhookService
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	deals := &fakeDealService{}
	payments := &fakePaymentService{}
	webhooks := &fakeWebhookService{}

	srv := NewServer(ServerParams{
		Gin:               NewEngine(observability.Config{}, nil, []string{"https://app.verlyx.com"}),
		Cfg:               config.Config{APIPrefix: "api"},
		Authsvc:           fakeAuthService{},
		DealSvc:           deals,
		PaymentSvc:        payments,
		PaymentWebhookSvc: webhooks,
		Limiter:           limiter,
	})

	return &testServer{Server: srv, deals: deals, payments: payments, webhooks: webhooks}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	ts.Engine().ServeHTTP(rec, req)
	return rec
}

func authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testAccessToken}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}
