package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Deal, error)
	List(ctx context.Context, req ListRequest) ([]Deal, error)
	Get(ctx context.Context, id snowflake.ID) (*Deal, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*Deal, error)
	Delete(ctx context.Context, id snowflake.ID) error
	PipelineStats(ctx context.Context, companyID snowflake.ID) ([]PipelineStat, error)
	MoveStage(ctx context.Context, id snowflake.ID, req MoveStageRequest) (*Deal, error)
	CreateProject(ctx context.Context, id snowflake.ID, req CreateProjectRequest) (string, error)
}

type CreateRequest struct {
	MyCompanyID       *snowflake.ID  `json:"myCompanyId"`
	ClientID          *snowflake.ID  `json:"clientId"`
	OrganizationID    *snowflake.ID  `json:"organizationId"`
	Title             string         `json:"title"`
	Description       *string        `json:"description"`
	Stage             *string        `json:"stage"`
	Priority          *string        `json:"priority"`
	Amount            *float64       `json:"amount"`
	Currency          *string        `json:"currency"`
	Probability       *int           `json:"probability"`
	ExpectedCloseDate *time.Time     `json:"expectedCloseDate"`
	OwnerUserID       *snowflake.ID  `json:"ownerUserId"`
	AssignedUsers     []string       `json:"assignedUsers"`
	Source            *string        `json:"source"`
	SourceDetails     *string        `json:"sourceDetails"`
	PrimaryContactID  *snowflake.ID  `json:"primaryContactId"`
	Tags              []string       `json:"tags"`
	CustomFields      map[string]any `json:"customFields"`
	NextAction        *string        `json:"nextAction"`
	NextActionDate    *time.Time     `json:"nextActionDate"`
	IsActive          *bool          `json:"isActive"`
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	OrganizationID    *snowflake.ID  `json:"organizationId"`
	Title             *string        `json:"title"`
	Description       *string        `json:"description"`
	Stage             *string        `json:"stage"`
	Priority          *string        `json:"priority"`
	Amount            *float64       `json:"amount"`
	Currency          *string        `json:"currency"`
	Probability       *int           `json:"probability"`
	ExpectedCloseDate *time.Time     `json:"expectedCloseDate"`
	OwnerUserID       *snowflake.ID  `json:"ownerUserId"`
	AssignedUsers     []string       `json:"assignedUsers"`
	Source            *string        `json:"source"`
	SourceDetails     *string        `json:"sourceDetails"`
	PrimaryContactID  *snowflake.ID  `json:"primaryContactId"`
	Tags              []string       `json:"tags"`
	CustomFields      map[string]any `json:"customFields"`
	NextAction        *string        `json:"nextAction"`
	NextActionDate    *time.Time     `json:"nextActionDate"`
	IsActive          *bool          `json:"isActive"`
}

type ListRequest struct {
	MyCompanyID *snowflake.ID `form:"myCompanyId"`
	Stage       string        `form:"stage"`
	ClientID    *snowflake.ID `form:"clientId"`
}

type MoveStageRequest struct {
	NewStage string  `json:"newStage"`
	Reason   *string `json:"reason"`
}

type CreateProjectRequest struct {
	ProjectName        *string `json:"projectName"`
	ProjectDescription *string `json:"projectDescription"`
}

// StageChanged is published after a successful stage move.
type StageChanged struct {
	DealID      snowflake.ID `json:"deal_id"`
	MyCompanyID snowflake.ID `json:"my_company_id"`
	FromStage   string       `json:"from_stage"`
	ToStage     string       `json:"to_stage"`
	Reason      *string      `json:"reason,omitempty"`
	ChangedBy   snowflake.ID `json:"changed_by,omitempty"`
}

var (
	ErrInvalidCompany     = errors.New("invalid_company")
	ErrInvalidTitle       = errors.New("invalid_title")
	ErrInvalidStage       = errors.New("invalid_stage")
	ErrInvalidPriority    = errors.New("invalid_priority")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidCurrency    = errors.New("invalid_currency")
	ErrInvalidProbability = errors.New("invalid_probability")
	ErrReasonRequired     = errors.New("reason_required")
	ErrNotFound           = errors.New("not_found")
)
