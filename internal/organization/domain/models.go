// Package domain holds client organizations: the offices, branches and
// stores that belong to a client.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	TypeHeadquarters       = "HEADQUARTERS"
	TypeBranch             = "BRANCH"
	TypeOffice             = "OFFICE"
	TypeStore              = "STORE"
	TypeWarehouse          = "WAREHOUSE"
	TypeFactory            = "FACTORY"
	TypeDistributionCenter = "DISTRIBUTION_CENTER"
	TypeSalesPoint         = "SALES_POINT"
	TypeServiceCenter      = "SERVICE_CENTER"
	TypeOther              = "OTHER"
)

var Types = []string{
	TypeHeadquarters, TypeBranch, TypeOffice, TypeStore, TypeWarehouse,
	TypeFactory, TypeDistributionCenter, TypeSalesPoint, TypeServiceCenter, TypeOther,
}

// Organization is a row of client_organizations.
type Organization struct {
	ID                   snowflake.ID                `gorm:"primaryKey" json:"id"`
	MyCompanyID          snowflake.ID                `gorm:"not null;index" json:"myCompanyId"`
	ClientID             snowflake.ID                `gorm:"not null;index" json:"clientId"`
	ParentOrganizationID *snowflake.ID               `gorm:"index" json:"parentOrganizationId"`
	Name                 string                      `gorm:"type:varchar(255);not null" json:"name"`
	Code                 *string                     `gorm:"type:varchar(50)" json:"code"`
	Type                 string                      `gorm:"type:varchar(30);not null;default:'BRANCH'" json:"type"`
	Address              *string                     `gorm:"type:text" json:"address"`
	City                 *string                     `gorm:"type:varchar(100)" json:"city"`
	State                *string                     `gorm:"type:varchar(100)" json:"state"`
	Country              *string                     `gorm:"type:varchar(100)" json:"country"`
	PostalCode           *string                     `gorm:"type:varchar(20)" json:"postalCode"`
	Latitude             *float64                    `json:"latitude"`
	Longitude            *float64                    `json:"longitude"`
	Phone                *string                     `gorm:"type:varchar(50)" json:"phone"`
	Email                *string                     `gorm:"type:varchar(255)" json:"email"`
	Website              *string                     `gorm:"type:varchar(255)" json:"website"`
	EmployeesCount       *int                        `json:"employeesCount"`
	Size                 *int                        `json:"size"`
	BusinessHours        datatypes.JSON              `json:"businessHours"`
	Timezone             *string                     `gorm:"type:varchar(64)" json:"timezone"`
	PrimaryContactName   *string                     `gorm:"type:varchar(255)" json:"primaryContactName"`
	PrimaryContactEmail  *string                     `gorm:"type:varchar(255)" json:"primaryContactEmail"`
	PrimaryContactPhone  *string                     `gorm:"type:varchar(50)" json:"primaryContactPhone"`
	Tags                 datatypes.JSONSlice[string] `json:"tags"`
	CustomFields         datatypes.JSONMap           `json:"customFields"`
	Notes                *string                     `gorm:"type:text" json:"notes"`
	IsActive             bool                        `gorm:"not null" json:"isActive"`
	CreatedBy            *snowflake.ID               `json:"createdBy"`
	CreatedAt            time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt            time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Organization) TableName() string { return "client_organizations" }

// HierarchyRow is one row of get_organization_hierarchy.
type HierarchyRow struct {
	ID                   snowflake.ID  `gorm:"column:id"`
	Name                 string        `gorm:"column:name"`
	ParentOrganizationID *snowflake.ID `gorm:"column:parent_organization_id"`
	Level                int           `gorm:"column:level"`
	Path                 string        `gorm:"column:path"`
	Type                 string        `gorm:"column:type"`
}

// Node is an organization placed in its client's tree.
type Node struct {
	ID                   snowflake.ID  `json:"id"`
	Name                 string        `json:"name"`
	ParentOrganizationID *snowflake.ID `json:"parentOrganizationId"`
	Level                int           `json:"level"`
	Path                 string        `json:"path"`
	Type                 string        `json:"type"`
	Children             []*Node       `json:"children"`
}

func ValidType(t string) bool {
	for _, candidate := range Types {
		if candidate == t {
			return true
		}
	}
	return false
}
