package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusReview     = "REVIEW"
	StatusBlocked    = "BLOCKED"
	StatusDone       = "DONE"
	StatusCancelled  = "CANCELLED"
)

var Statuses = []string{StatusTodo, StatusInProgress, StatusReview, StatusBlocked, StatusDone, StatusCancelled}

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

type Task struct {
	ID                 snowflake.ID                `gorm:"primaryKey" json:"id"`
	MyCompanyID        snowflake.ID                `gorm:"not null;index" json:"myCompanyId"`
	ProjectID          *snowflake.ID               `gorm:"index" json:"projectId"`
	DealID             *snowflake.ID               `json:"dealId"`
	ClientID           *snowflake.ID               `json:"clientId"`
	OrganizationID     *snowflake.ID               `json:"organizationId"`
	ParentTaskID       *snowflake.ID               `gorm:"index" json:"parentTaskId"`
	Title              string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description        *string                     `gorm:"type:text" json:"description"`
	Status             string                      `gorm:"type:varchar(20);not null;default:'TODO';index" json:"status"`
	Priority           string                      `gorm:"type:varchar(10);not null;default:'MEDIUM'" json:"priority"`
	AssignedTo         *snowflake.ID               `gorm:"index" json:"assignedTo"`
	AssignedUsers      datatypes.JSONSlice[string] `json:"assignedUsers"`
	StartDate          *time.Time                  `json:"startDate"`
	DueDate            *time.Time                  `json:"dueDate"`
	CompletedAt        *time.Time                  `json:"completedAt"`
	EstimatedHours     *float64                    `gorm:"type:numeric(8,2)" json:"estimatedHours"`
	ActualHours        float64                     `gorm:"type:numeric(8,2);not null;default:0" json:"actualHours"`
	ProgressPercentage int                         `gorm:"not null;default:0" json:"progressPercentage"`
	IsBlocked          bool                        `gorm:"not null;default:false" json:"isBlocked"`
	BlockedReason      *string                     `gorm:"type:text" json:"blockedReason"`
	Tags               datatypes.JSONSlice[string] `json:"tags"`
	CustomFields       datatypes.JSONMap           `json:"customFields"`
	Attachments        datatypes.JSON              `json:"attachments"`
	Checklist          datatypes.JSON              `json:"checklist"`
	CreatedBy          *snowflake.ID               `json:"createdBy"`
	CreatedAt          time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt          time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Task) TableName() string { return "tasks" }

// HierarchyRow is one row of get_task_hierarchy. Extra columns are ignored.
type HierarchyRow struct {
	ID                 snowflake.ID  `gorm:"column:id" json:"id"`
	ParentTaskID       *snowflake.ID `gorm:"column:parent_task_id" json:"parentTaskId"`
	Title              string        `gorm:"column:title" json:"title"`
	Status             string        `gorm:"column:status" json:"status"`
	Priority           string        `gorm:"column:priority" json:"priority"`
	ProgressPercentage int           `gorm:"column:progress_percentage" json:"progressPercentage"`
	Level              int           `gorm:"column:level" json:"level"`
}

// Node is a task placed in its subtask tree.
type Node struct {
	HierarchyRow
	Children []*Node `json:"children"`
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
