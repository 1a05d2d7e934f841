package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/config"
)

type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType Type   `json:"token_type"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 access and refresh tokens with
// separate secrets.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	clock         clock.Clock
}

func NewManager(cfg config.Config, clk clock.Clock) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.JWTRefreshSecret == "" {
		return nil, errors.New("JWT_REFRESH_SECRET is required")
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Manager{
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.JWTExpiresIn,
		refreshTTL:    cfg.JWTRefreshExpiresIn,
		clock:         clk,
	}, nil
}

func (m *Manager) NewAccessToken(userID snowflake.ID, email, role string) (string, error) {
	return m.sign(TypeAccess, userID, email, role, m.accessTTL, m.accessSecret)
}

func (m *Manager) NewRefreshToken(userID snowflake.ID, email, role string) (string, error) {
	return m.sign(TypeRefresh, userID, email, role, m.refreshTTL, m.refreshSecret)
}

func (m *Manager) ParseAccessToken(raw string) (*Claims, error) {
	return m.parse(raw, TypeAccess, m.accessSecret)
}

func (m *Manager) ParseRefreshToken(raw string) (*Claims, error) {
	return m.parse(raw, TypeRefresh, m.refreshSecret)
}

func (m *Manager) sign(tokenType Type, userID snowflake.ID, email, role string, ttl time.Duration, secret []byte) (string, error) {
	now := m.clock.Now()
	claims := Claims{
		Email:     email,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (m *Manager) parse(raw string, want Type, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != want {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserID parses the subject claim.
func (c *Claims) UserID() (snowflake.ID, error) {
	id, err := snowflake.ParseString(c.Subject)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}
