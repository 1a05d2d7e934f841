package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	MyCompanyID snowflake.ID
	Stage       string
	ClientID    *snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, deal *Deal) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Deal, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Deal, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)

	// PipelineStats calls get_pipeline_stats.
	PipelineStats(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]PipelineStat, error)
	// MoveToStage calls move_deal_to_stage and reports whether a deal moved.
	MoveToStage(ctx context.Context, db *gorm.DB, id snowflake.ID, stage string, reason *string) (bool, error)
	// CreateProject calls create_project_from_deal and returns the new project id.
	CreateProject(ctx context.Context, db *gorm.DB, id snowflake.ID, name, description *string) (string, error)
}
