package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Task, error)
	List(ctx context.Context, req ListRequest) (pagination.Page[Task], error)
	Get(ctx context.Context, id snowflake.ID) (*Task, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*Task, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Stats(ctx context.Context, companyID snowflake.ID, projectID *snowflake.ID) (json.RawMessage, error)
	Overdue(ctx context.Context, companyID snowflake.ID) ([]Task, error)
	Hierarchy(ctx context.Context, taskID snowflake.ID) ([]*Node, error)
}

type CreateRequest struct {
	MyCompanyID *snowflake.ID `json:"myCompanyId"`
	Title       string        `json:"title"`
	Fields
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Title *string `json:"title"`
	Fields
}

// Fields are the task attributes shared by create and update.
type Fields struct {
	ProjectID          *snowflake.ID   `json:"projectId"`
	DealID             *snowflake.ID   `json:"dealId"`
	ClientID           *snowflake.ID   `json:"clientId"`
	OrganizationID     *snowflake.ID   `json:"organizationId"`
	ParentTaskID       *snowflake.ID   `json:"parentTaskId"`
	Description        *string         `json:"description"`
	Status             *string         `json:"status"`
	Priority           *string         `json:"priority"`
	AssignedTo         *snowflake.ID   `json:"assignedTo"`
	AssignedUsers      []string        `json:"assignedUsers"`
	StartDate          *time.Time      `json:"startDate"`
	DueDate            *time.Time      `json:"dueDate"`
	EstimatedHours     *float64        `json:"estimatedHours"`
	ActualHours        *float64        `json:"actualHours"`
	ProgressPercentage *int            `json:"progressPercentage"`
	IsBlocked          *bool           `json:"isBlocked"`
	BlockedReason      *string         `json:"blockedReason"`
	Tags               []string        `json:"tags"`
	CustomFields       map[string]any  `json:"customFields"`
	Attachments        json.RawMessage `json:"attachments"`
	Checklist          json.RawMessage `json:"checklist"`
}

type ListRequest struct {
	pagination.Pagination
	MyCompanyID    *snowflake.ID `form:"myCompanyId"`
	Status         string        `form:"status"`
	Priority       string        `form:"priority"`
	ProjectID      *snowflake.ID `form:"projectId"`
	DealID         *snowflake.ID `form:"dealId"`
	ClientID       *snowflake.ID `form:"clientId"`
	OrganizationID *snowflake.ID `form:"organizationId"`
	AssignedTo     *snowflake.ID `form:"assignedTo"`
	IsBlocked      *bool         `form:"isBlocked"`
	ParentTaskID   *snowflake.ID `form:"parentTaskId"`
	Search         string        `form:"search"`
}

var (
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidPriority = errors.New("invalid_priority")
	ErrInvalidHours    = errors.New("invalid_hours")
	ErrInvalidProgress = errors.New("invalid_progress")
	ErrInvalidParent   = errors.New("invalid_parent")
	ErrNotFound        = errors.New("not_found")
)
