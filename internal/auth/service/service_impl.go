package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/auth/domain"
	"github.com/verlyx/hub/internal/auth/password"
	"github.com/verlyx/hub/internal/auth/token"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const minPasswordLength = 8

type Params struct {
	fx.In

	Log    *zap.Logger
	Repo   domain.Repository
	Tokens *token.Manager
	GenID  *snowflake.Node
	Clock  clock.Clock
}

type Service struct {
	log    *zap.Logger
	repo   domain.Repository
	tokens *token.Manager
	genID  *snowflake.Node
	clock  clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		log:    p.Log.Named("auth.service"),
		repo:   p.Repo,
		tokens: p.Tokens,
		genID:  p.GenID,
		clock:  p.Clock,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return nil, domain.ErrInvalidPassword
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, domain.ErrInvalidFullName
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: hashed,
		FullName:     fullName,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return &domain.AuthResult{User: user, TokenPair: *pair}, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{User: user, TokenPair: *pair}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.ParseRefreshToken(strings.TrimSpace(refreshToken))
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidRefreshToken
	}
	return s.issue(user)
}

func (s *Service) Authenticate(_ context.Context, accessToken string) (*domain.Principal, error) {
	claims, err := s.tokens.ParseAccessToken(strings.TrimSpace(accessToken))
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return &domain.Principal{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}

func (s *Service) Me(ctx context.Context, userID snowflake.ID) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *Service) issue(user *domain.User) (*domain.TokenPair, error) {
	access, err := s.tokens.NewAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.NewRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}
