package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	MyCompanyID snowflake.ID
	ProjectID   *snowflake.ID
	Folder      string
	Search      string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, doc *Document) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Document, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]Document, int64, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
