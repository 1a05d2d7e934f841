package token

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/config"
)

func newManager(t *testing.T, clk clock.Clock) *Manager {
	t.Helper()
	m, err := NewManager(config.Config{
		JWTSecret:           "access-secret",
		JWTRefreshSecret:    "refresh-secret",
		JWTExpiresIn:        15 * time.Minute,
		JWTRefreshExpiresIn: 7 * 24 * time.Hour,
	}, clk)
	require.NoError(t, err)
	return m
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newManager(t, clock.NewFakeClock(time.Now()))

	raw, err := m.NewAccessToken(snowflake.ID(42), "ana@verlyx.com", "user")
	require.NoError(t, err)

	claims, err := m.ParseAccessToken(raw)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(42), id)
	assert.Equal(t, "ana@verlyx.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	m := newManager(t, clock.NewFakeClock(time.Now()))

	refresh, err := m.NewRefreshToken(1, "a@b.co", "user")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, err := m.NewAccessToken(1, "a@b.co", "user")
	require.NoError(t, err)
	_, err = m.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	clk := clock.NewFakeClock(time.Now())
	m := newManager(t, clk)

	raw, err := m.NewAccessToken(1, "a@b.co", "user")
	require.NoError(t, err)

	clk.Advance(16 * time.Minute)
	_, err = m.ParseAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewManagerRequiresSecrets(t *testing.T) {
	_, err := NewManager(config.Config{}, nil)
	assert.Error(t, err)
}
