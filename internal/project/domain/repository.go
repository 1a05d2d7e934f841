package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	CompanyID        snowflake.ID
	Status           string
	Priority         string
	ClientID         *snowflake.ID
	ProjectManagerID *snowflake.ID
	IncludeArchived  bool
	Search           string
	Tag              string
	StartDateFrom    *time.Time
	StartDateTo      *time.Time
	DueDateFrom      *time.Time
	DueDateTo        *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, project *Project) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Project, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]Project, int64, error)
	ListForCompany(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]Project, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
