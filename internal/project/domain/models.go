package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusBacklog    = "backlog"
	StatusPlanning   = "planning"
	StatusInProgress = "in_progress"
	StatusOnHold     = "on_hold"
	StatusReview     = "review"
	StatusDone       = "done"
	StatusCancelled  = "cancelled"
)

var Statuses = []string{StatusBacklog, StatusPlanning, StatusInProgress, StatusOnHold, StatusReview, StatusDone, StatusCancelled}

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

type Project struct {
	ID                   snowflake.ID                `gorm:"primaryKey" json:"id"`
	MyCompanyID          *snowflake.ID               `gorm:"index" json:"myCompanyId"`
	ClientCompanyID      *snowflake.ID               `json:"clientCompanyId"`
	CompanyID            *snowflake.ID               `gorm:"index" json:"companyId"`
	ClientID             *snowflake.ID               `gorm:"index" json:"clientId"`
	ClientOrganizationID *snowflake.ID               `json:"clientOrganizationId"`
	DealID               *snowflake.ID               `json:"dealId"`
	Name                 string                      `gorm:"type:varchar(255);not null" json:"name"`
	Description          *string                     `gorm:"type:text" json:"description"`
	Status               string                      `gorm:"type:varchar(20);not null;default:'backlog';index" json:"status"`
	Priority             string                      `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	StartDate            *time.Time                  `json:"startDate"`
	DueDate              *time.Time                  `json:"dueDate"`
	CompletionDate       *time.Time                  `json:"completionDate"`
	Budget               *float64                    `gorm:"type:numeric(15,2)" json:"budget"`
	SpentAmount          float64                     `gorm:"type:numeric(15,2);not null;default:0" json:"spentAmount"`
	Currency             string                      `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	ProgressPercentage   int                         `gorm:"not null;default:0" json:"progressPercentage"`
	ProjectManagerID     *snowflake.ID               `json:"projectManagerId"`
	Tags                 datatypes.JSONSlice[string] `json:"tags"`
	CustomFields         datatypes.JSONMap           `json:"customFields"`
	IsArchived           bool                        `gorm:"not null;default:false" json:"isArchived"`
	CreatedBy            *snowflake.ID               `json:"createdBy"`
	CreatedAt            time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt            time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Project) TableName() string { return "projects" }

// WithMetrics is a project plus values derived at read time.
type WithMetrics struct {
	Project
	Profitability           *float64 `json:"profitability,omitempty"`
	ProfitabilityPercentage *float64 `json:"profitabilityPercentage,omitempty"`
	IsOverdue               bool     `json:"isOverdue"`
	DaysRemaining           *int     `json:"daysRemaining,omitempty"`
}

type Stats struct {
	Total                   int            `json:"total"`
	Active                  int            `json:"active"`
	Completed               int            `json:"completed"`
	Cancelled               int            `json:"cancelled"`
	Archived                int            `json:"archived"`
	Overdue                 int            `json:"overdue"`
	ByStatus                map[string]int `json:"byStatus"`
	ByPriority              map[string]int `json:"byPriority"`
	TotalBudget             float64        `json:"totalBudget"`
	TotalSpent              float64        `json:"totalSpent"`
	AverageProgress         float64        `json:"averageProgress"`
	Profitability           *float64       `json:"profitability,omitempty"`
	ProfitabilityPercentage *float64       `json:"profitabilityPercentage,omitempty"`
}

func ValidStatus(status string) bool {
	return contains(Statuses, status)
}

func ValidPriority(priority string) bool {
	return contains(Priorities, priority)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
