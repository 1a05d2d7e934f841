package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*WithMetrics, error)
	List(ctx context.Context, req ListRequest) (pagination.Page[WithMetrics], error)
	Get(ctx context.Context, id snowflake.ID) (*WithMetrics, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*WithMetrics, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Stats(ctx context.Context, companyID *snowflake.ID) (*Stats, error)
}

type CreateRequest struct {
	MyCompanyID          *snowflake.ID  `json:"myCompanyId"`
	ClientCompanyID      *snowflake.ID  `json:"clientCompanyId"`
	CompanyID            *snowflake.ID  `json:"companyId"`
	ClientID             *snowflake.ID  `json:"clientId"`
	ClientOrganizationID *snowflake.ID  `json:"clientOrganizationId"`
	DealID               *snowflake.ID  `json:"dealId"`
	Name                 string         `json:"name"`
	Description          *string        `json:"description"`
	Status               *string        `json:"status"`
	Priority             *string        `json:"priority"`
	StartDate            *time.Time     `json:"startDate"`
	DueDate              *time.Time     `json:"dueDate"`
	CompletionDate       *time.Time     `json:"completionDate"`
	Budget               *float64       `json:"budget"`
	SpentAmount          *float64       `json:"spentAmount"`
	Currency             *string        `json:"currency"`
	ProgressPercentage   *int           `json:"progressPercentage"`
	ProjectManagerID     *snowflake.ID  `json:"projectManagerId"`
	Tags                 []string       `json:"tags"`
	CustomFields         map[string]any `json:"customFields"`
	IsArchived           *bool          `json:"isArchived"`
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	ClientCompanyID      *snowflake.ID  `json:"clientCompanyId"`
	ClientID             *snowflake.ID  `json:"clientId"`
	ClientOrganizationID *snowflake.ID  `json:"clientOrganizationId"`
	DealID               *snowflake.ID  `json:"dealId"`
	Name                 *string        `json:"name"`
	Description          *string        `json:"description"`
	Status               *string        `json:"status"`
	Priority             *string        `json:"priority"`
	StartDate            *time.Time     `json:"startDate"`
	DueDate              *time.Time     `json:"dueDate"`
	CompletionDate       *time.Time     `json:"completionDate"`
	Budget               *float64       `json:"budget"`
	SpentAmount          *float64       `json:"spentAmount"`
	Currency             *string        `json:"currency"`
	ProgressPercentage   *int           `json:"progressPercentage"`
	ProjectManagerID     *snowflake.ID  `json:"projectManagerId"`
	Tags                 []string       `json:"tags"`
	CustomFields         map[string]any `json:"customFields"`
	IsArchived           *bool          `json:"isArchived"`
}

type ListRequest struct {
	pagination.Pagination
	CompanyID        *snowflake.ID `form:"companyId"`
	Status           string        `form:"status"`
	Priority         string        `form:"priority"`
	ClientID         *snowflake.ID `form:"clientId"`
	ProjectManagerID *snowflake.ID `form:"projectManagerId"`
	IncludeArchived  bool          `form:"includeArchived"`
	Search           string        `form:"search"`
	Tag              string        `form:"tag"`
	StartDateFrom    *time.Time    `form:"startDateFrom" time_format:"2006-01-02"`
	StartDateTo      *time.Time    `form:"startDateTo" time_format:"2006-01-02"`
	DueDateFrom      *time.Time    `form:"dueDateFrom" time_format:"2006-01-02"`
	DueDateTo        *time.Time    `form:"dueDateTo" time_format:"2006-01-02"`
}

var (
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidPriority = errors.New("invalid_priority")
	ErrInvalidBudget   = errors.New("invalid_budget")
	ErrInvalidSpent    = errors.New("invalid_spent_amount")
	ErrInvalidProgress = errors.New("invalid_progress")
	ErrInvalidDates    = errors.New("invalid_dates")
	ErrNotFound        = errors.New("not_found")
)
