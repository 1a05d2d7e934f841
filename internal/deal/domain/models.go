package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StageLead        = "LEAD"
	StageQualified   = "QUALIFIED"
	StageProposal    = "PROPOSAL"
	StageNegotiation = "NEGOTIATION"
	StageClosedWon   = "CLOSED_WON"
	StageClosedLost  = "CLOSED_LOST"
)

var Stages = []string{StageLead, StageQualified, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost}

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

type Deal struct {
	ID                snowflake.ID                `gorm:"primaryKey" json:"id"`
	MyCompanyID       snowflake.ID                `gorm:"not null;index" json:"myCompanyId"`
	ClientID          *snowflake.ID               `gorm:"index" json:"clientId"`
	OrganizationID    *snowflake.ID               `json:"organizationId"`
	Title             string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description       *string                     `gorm:"type:text" json:"description"`
	Stage             string                      `gorm:"type:varchar(20);not null;default:'LEAD';index" json:"stage"`
	Priority          string                      `gorm:"type:varchar(10);not null;default:'MEDIUM'" json:"priority"`
	Amount            *float64                    `gorm:"type:numeric(15,2)" json:"amount"`
	Currency          string                      `gorm:"type:varchar(3);not null;default:'ARS'" json:"currency"`
	Probability       int                         `gorm:"not null" json:"probability"`
	ExpectedRevenue   *float64                    `gorm:"type:numeric(15,2)" json:"expectedRevenue"`
	ExpectedCloseDate *time.Time                  `gorm:"type:date" json:"expectedCloseDate"`
	ActualCloseDate   *time.Time                  `gorm:"type:date" json:"actualCloseDate"`
	LostDate          *time.Time                  `json:"lostDate"`
	LostReason        *string                     `gorm:"type:text" json:"lostReason"`
	WonReason         *string                     `gorm:"type:text" json:"wonReason"`
	OwnerUserID       *snowflake.ID               `json:"ownerUserId"`
	AssignedUsers     datatypes.JSONSlice[string] `json:"assignedUsers"`
	Source            *string                     `gorm:"type:varchar(100)" json:"source"`
	SourceDetails     *string                     `gorm:"type:text" json:"sourceDetails"`
	PrimaryContactID  *snowflake.ID               `json:"primaryContactId"`
	Tags              datatypes.JSONSlice[string] `json:"tags"`
	CustomFields      datatypes.JSONMap           `json:"customFields"`
	StageChangedAt    *time.Time                  `json:"stageChangedAt"`
	DaysInStage       *int                        `json:"daysInStage"`
	NextAction        *string                     `gorm:"type:text" json:"nextAction"`
	NextActionDate    *time.Time                  `gorm:"type:date" json:"nextActionDate"`
	IsActive          bool                        `gorm:"not null" json:"isActive"`
	CreatedBy         *snowflake.ID               `json:"createdBy"`
	CreatedAt         time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt         time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Deal) TableName() string { return "deals" }

// PipelineStat is one row of get_pipeline_stats.
type PipelineStat struct {
	Stage         string  `gorm:"column:stage" json:"stage"`
	Count         int64   `gorm:"column:count" json:"count"`
	TotalAmount   float64 `gorm:"column:total_amount" json:"totalAmount"`
	AvgAmount     float64 `gorm:"column:avg_amount" json:"avgAmount"`
	TotalWeighted float64 `gorm:"column:total_weighted" json:"totalWeighted"`
}

func IsClosingStage(stage string) bool {
	return stage == StageClosedWon || stage == StageClosedLost
}

func ValidStage(stage string) bool {
	return contains(Stages, stage)
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
