package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authdomain "github.com/verlyx/hub/internal/auth/domain"
	"github.com/verlyx/hub/internal/auth/repository"
	"github.com/verlyx/hub/internal/auth/token"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/config"
	"github.com/verlyx/hub/pkg/db"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) (authdomain.Service, *clock.FakeClock) {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&authdomain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Now())
	tokens, err := token.NewManager(config.Config{
		JWTSecret:           "access",
		JWTRefreshSecret:    "refresh",
		JWTExpiresIn:        15 * time.Minute,
		JWTRefreshExpiresIn: 7 * 24 * time.Hour,
	}, clk)
	require.NoError(t, err)

	return New(Params{
		Log:    zaptest.NewLogger(t),
		Repo:   repository.New(dbConn),
		Tokens: tokens,
		GenID:  node,
		Clock:  clk,
	}), clk
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	res, err := svc.Register(ctx, authdomain.RegisterRequest{
		Email:    " Ana@Verlyx.com ",
		Password: "correct-password",
		FullName: "Ana Pérez",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@verlyx.com", res.User.Email)
	assert.Equal(t, authdomain.RoleUser, res.User.Role)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)

	logged, err := svc.Login(ctx, authdomain.LoginRequest{Email: "ana@verlyx.com", Password: "correct-password"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, logged.User.ID)

	principal, err := svc.Authenticate(ctx, logged.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, principal.UserID)

	me, err := svc.Me(ctx, principal.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", me.FullName)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	cases := []struct {
		name string
		req  authdomain.RegisterRequest
		want error
	}{
		{"bad email", authdomain.RegisterRequest{Email: "nope", Password: "12345678", FullName: "x"}, authdomain.ErrInvalidEmail},
		{"short password", authdomain.RegisterRequest{Email: "a@b.co", Password: "1234567", FullName: "x"}, authdomain.ErrInvalidPassword},
		{"missing name", authdomain.RegisterRequest{Email: "a@b.co", Password: "12345678", FullName: "  "}, authdomain.ErrInvalidFullName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := svc.Register(ctx, authdomain.RegisterRequest{Email: "dup@b.co", Password: "12345678", FullName: "Dup"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, authdomain.RegisterRequest{Email: "DUP@b.co", Password: "12345678", FullName: "Dup"})
	assert.ErrorIs(t, err, authdomain.ErrUserExists)
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, authdomain.RegisterRequest{Email: "bob@example.com", Password: "correct-password", FullName: "Bob"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, authdomain.LoginRequest{Email: "bob@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, authdomain.LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(t)

	res, err := svc.Register(ctx, authdomain.RegisterRequest{Email: "eve@example.com", Password: "long-enough", FullName: "Eve"})
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = svc.Refresh(ctx, res.AccessToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidRefreshToken)

	clk.Advance(8 * 24 * time.Hour)
	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidRefreshToken)
}
