package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Scope narrows a query. Scopes are applied in order.
type Scope func(*gorm.DB) *gorm.DB

// Repository is the generic row store shared by the domain repositories.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	FindByID(ctx context.Context, id snowflake.ID) (*T, error)
	FindOne(ctx context.Context, scopes ...Scope) (*T, error)
	Find(ctx context.Context, scopes ...Scope) ([]T, error)
	Count(ctx context.Context, scopes ...Scope) (int64, error)
	Create(ctx context.Context, resource *T) error
	Save(ctx context.Context, resource *T) error
	Update(ctx context.Context, id snowflake.ID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id snowflake.ID) (int64, error)
}
