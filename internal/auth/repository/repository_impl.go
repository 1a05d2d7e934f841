package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/auth/domain"
	pkgrepo "github.com/verlyx/hub/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	users pkgrepo.Repository[domain.User]
}

func New(db *gorm.DB) domain.Repository {
	return &repo{users: pkgrepo.ProvideStore[domain.User](db)}
}

func (r *repo) Create(ctx context.Context, user *domain.User) error {
	return r.users.Create(ctx, user)
}

// FindByEmail matches case-insensitively; stored emails are lowercased on
// register but older rows may not be.
func (r *repo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return found(r.users.FindOne(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(email) = ?", email)
	}))
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	return found(r.users.FindByID(ctx, id))
}

func found(user *domain.User, err error) (*domain.User, error) {
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
