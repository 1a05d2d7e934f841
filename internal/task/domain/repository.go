package domain

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	MyCompanyID    snowflake.ID
	Status         string
	Priority       string
	ProjectID      *snowflake.ID
	DealID         *snowflake.ID
	ClientID       *snowflake.ID
	OrganizationID *snowflake.ID
	AssignedTo     *snowflake.ID
	IsBlocked      *bool
	ParentTaskID   *snowflake.ID
	Search         string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, task *Task) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Task, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]Task, int64, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// Stats calls get_tasks_stats and returns its JSON unchanged.
	Stats(ctx context.Context, db *gorm.DB, companyID snowflake.ID, projectID *snowflake.ID) (json.RawMessage, error)
	// Overdue calls get_overdue_tasks.
	Overdue(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]Task, error)
	// Hierarchy calls get_task_hierarchy.
	Hierarchy(ctx context.Context, db *gorm.DB, taskID snowflake.ID) ([]HierarchyRow, error)
}
