package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, comment *Comment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Comment, error)
	// FindForUpdate locks the row where the dialect supports it.
	FindForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Comment, error)
	ListByTask(ctx context.Context, db *gorm.DB, taskID snowflake.ID) ([]Comment, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	TaskCompany(ctx context.Context, db *gorm.DB, taskID snowflake.ID) (snowflake.ID, error)
}
