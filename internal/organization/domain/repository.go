package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	MyCompanyID snowflake.ID
	ClientID    *snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, org *Organization) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Organization, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Organization, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// Hierarchy calls get_organization_hierarchy.
	Hierarchy(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]HierarchyRow, error)
}
