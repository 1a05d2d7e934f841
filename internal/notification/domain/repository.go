package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	UserID snowflake.ID
	Type   string
	Read   *bool
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, n *Notification) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Notification, error)
	CountUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
	FindForUser(ctx context.Context, db *gorm.DB, id, userID snowflake.ID) (*Notification, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	DeleteForUser(ctx context.Context, db *gorm.DB, id, userID snowflake.ID) (int64, error)
	MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID, fields map[string]any) (int64, error)
}
