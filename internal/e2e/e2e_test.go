package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/config"
	"github.com/verlyx/hub/internal/migration"
	notificationdomain "github.com/verlyx/hub/internal/notification/domain"
	"github.com/verlyx/hub/internal/observability"
	obsmetrics "github.com/verlyx/hub/internal/observability/metrics"
	"github.com/verlyx/hub/internal/scheduler"
	"github.com/verlyx/hub/internal/server"
	taskdomain "github.com/verlyx/hub/internal/task/domain"
	"github.com/verlyx/hub/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type testEnv struct {
	app       *fx.App
	server    *server.Server
	db        *gorm.DB
	scheduler *scheduler.Scheduler
	node      *snowflake.Node
	httpSrv   *httptest.Server
	baseURL   string
}

var env *testEnv

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	storageDir, err := os.MkdirTemp("", "verlyx-e2e-")
	if err != nil {
		panic(err)
	}
	setDefaultEnv(storageDir)

	env, err = startEnv()
	if err != nil {
		panic(err)
	}

	code := m.Run()

	env.stop()
	_ = os.RemoveAll(storageDir)
	os.Exit(code)
}

func setDefaultEnv(storageDir string) {
	setEnvIfEmpty("ENVIRONMENT", "test")
	setEnvIfEmpty("LOG_LEVEL", "error")
	setEnvIfEmpty("JWT_SECRET", "e2e-access-secret")
	setEnvIfEmpty("JWT_REFRESH_SECRET", "e2e-refresh-secret")
	_ = os.Setenv("OTEL_ENABLED", "false")
	_ = os.Setenv("DATABASE_TYPE", "sqlite")
	_ = os.Setenv("STORAGE_DIR", storageDir)
	_ = os.Setenv("SCHEDULER_ENABLED", "false")

	// Empty gateway keys put payments in demo mode.
	for _, key := range []string{"DLOCAL_GO_API_KEY", "DLOCAL_GO_SECRET_KEY", "REDIS_ADDR", "NATS_URL"} {
		_ = os.Unsetenv(key)
	}
}

func setEnvIfEmpty(key, value string) {
	if os.Getenv(key) == "" {
		_ = os.Setenv(key, value)
	}
}

func startEnv() (*testEnv, error) {
	te := &testEnv{}

	app := fx.New(
		fx.NopLogger,
		config.Module,
		observability.Module,
		fx.Provide(func() (*snowflake.Node, error) { return snowflake.NewNode(7) }),
		fx.Provide(db.NewTest),
		clock.Module,
		migration.Module,
		server.Services,
		fx.Provide(func(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
			return server.NewEngine(obsCfg, httpMetrics, cfg.CORSOrigins)
		}),
		fx.Provide(server.NewServer),
		fx.Provide(scheduler.ProvideConfig, scheduler.New),
		fx.Populate(&te.server, &te.db, &te.scheduler, &te.node),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return nil, err
	}

	te.app = app
	te.httpSrv = httptest.NewServer(te.server.Engine())
	te.baseURL = te.httpSrv.URL + "/api"
	return te, nil
}

func (te *testEnv) stop() {
	if te == nil {
		return
	}
	if te.httpSrv != nil {
		te.httpSrv.Close()
	}
	if te.app != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = te.app.Stop(ctx)
	}
}

type apiClient struct {
	t     *testing.T
	token string
}

func (c *apiClient) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, env.baseURL+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(c.t, json.Unmarshal(raw, &out), string(raw))
	} else if len(raw) > 0 {
		var list []any
		require.NoError(c.t, json.Unmarshal(raw, &list), string(raw))
		out["items"] = list
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	resp, err := http.Get(env.httpSrv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWorkspaceFlow(t *testing.T) {
	client := &apiClient{t: t}

	status, body := client.do(http.MethodPost, "/auth/register", map[string]any{
		"email":    "founder@verlyx.com",
		"password": "s3cure-passw0rd",
		"fullName": "Ana Founder",
	})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = client.do(http.MethodPost, "/auth/register", map[string]any{
		"email":    "founder@verlyx.com",
		"password": "s3cure-passw0rd",
		"fullName": "Ana Again",
	})
	assert.Equal(t, http.StatusConflict, status, body)

	status, _ = client.do(http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = client.do(http.MethodPost, "/auth/login", map[string]any{
		"email":    "founder@verlyx.com",
		"password": "s3cure-passw0rd",
	})
	require.Equal(t, http.StatusOK, status, body)
	client.token = body["accessToken"].(string)
	require.NotEmpty(t, client.token)

	status, body = client.do(http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "founder@verlyx.com", body["email"])
	userID := body["id"].(string)

	status, body = client.do(http.MethodPost, "/my-companies", map[string]any{"name": "Verlyx Studio"})
	require.Equal(t, http.StatusCreated, status, body)
	companyID := body["id"].(string)

	status, body = client.do(http.MethodGet, "/my-companies", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["items"], 1)

	t.Run("deals", func(t *testing.T) {
		client.t = t
		status, body := client.do(http.MethodPost, "/deals", map[string]any{
			"myCompanyId": companyID,
			"title":       "Website redesign",
			"amount":      4800,
			"currency":    "USD",
		})
		require.Equal(t, http.StatusCreated, status, body)
		assert.Equal(t, "Website redesign", body["title"])

		status, body = client.do(http.MethodGet, "/deals?myCompanyId="+companyID, nil)
		require.Equal(t, http.StatusOK, status, body)
		assert.Len(t, body["items"], 1)

		status, body = client.do(http.MethodPost, "/deals", map[string]any{
			"myCompanyId": companyID,
			"title":       "   ",
		})
		assert.Equal(t, http.StatusBadRequest, status, body)
	})

	t.Run("payment link in demo mode", func(t *testing.T) {
		client.t = t
		status, body := client.do(http.MethodPost, "/payments/create-link", map[string]any{
			"my_company_id": companyID,
			"amount":        150,
			"description":   "Discovery workshop",
		})
		require.Equal(t, http.StatusCreated, status, body)
		assert.Equal(t, true, body["demo_mode"])
		link := body["payment_link"].(map[string]any)
		orderID := link["order_id"].(string)
		require.NotEmpty(t, orderID)

		status, body = client.do(http.MethodPost, "/payments/create-link", map[string]any{
			"my_company_id": companyID,
			"amount":        5,
			"description":   "Too small",
		})
		assert.Equal(t, http.StatusBadRequest, status, body)

		payer := &apiClient{t: t}
		status, body = payer.do(http.MethodGet, "/payments/get-link?order_id="+orderID, nil)
		require.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, "pending", body["payment_link"].(map[string]any)["status"])

		status, body = payer.do(http.MethodPost, "/payments/process", map[string]any{
			"order_id": orderID,
			"token":    "tok_demo",
		})
		require.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, "paid", body["status"])
		assert.Equal(t, true, body["success"])

		status, body = payer.do(http.MethodPost, "/payments/process", map[string]any{
			"order_id": orderID,
			"token":    "tok_demo",
		})
		assert.Equal(t, http.StatusBadRequest, status, body)

		status, body = client.do(http.MethodGet, "/notifications", nil)
		require.Equal(t, http.StatusOK, status, body)
		notifications := body["notifications"].([]any)
		require.Len(t, notifications, 1)
		first := notifications[0].(map[string]any)
		assert.Equal(t, notificationdomain.TypePayment, first["type"])
		assert.Equal(t, "Pago recibido", first["title"])
		assert.EqualValues(t, 1, body["unread_count"])
	})

	t.Run("overdue task reminder", func(t *testing.T) {
		client.t = t
		assignee, err := snowflake.ParseString(userID)
		require.NoError(t, err)
		company, err := snowflake.ParseString(companyID)
		require.NoError(t, err)

		due := time.Now().UTC().Add(-48 * time.Hour)
		require.NoError(t, env.db.Create(&taskdomain.Task{
			ID:          env.node.Generate(),
			MyCompanyID: company,
			Title:       "Send signed contract",
			Status:      taskdomain.StatusTodo,
			Priority:    taskdomain.PriorityHigh,
			AssignedTo:  &assignee,
			DueDate:     &due,
			CreatedAt:   due,
			UpdatedAt:   due,
		}).Error)

		require.NoError(t, env.scheduler.RunOnce(context.Background()))

		status, body := client.do(http.MethodGet, "/notifications?type="+notificationdomain.TypeDeadline, nil)
		require.Equal(t, http.StatusOK, status, body)
		notifications := body["notifications"].([]any)
		require.Len(t, notifications, 1)
		assert.Contains(t, notifications[0].(map[string]any)["message"], "Send signed contract")
	})
}
