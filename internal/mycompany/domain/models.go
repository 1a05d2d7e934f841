package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type MyCompany struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerUserID    snowflake.ID `gorm:"not null;index" json:"ownerUserId"`
	Name           string       `gorm:"type:varchar(255);not null" json:"name"`
	Type           *string      `gorm:"type:varchar(50)" json:"type"`
	Description    *string      `gorm:"type:text" json:"description"`
	LogoURL        *string      `gorm:"type:text" json:"logoUrl"`
	PrimaryColor   string       `gorm:"type:varchar(7);not null;default:'#6366f1'" json:"primaryColor"`
	SecondaryColor string       `gorm:"type:varchar(7);not null;default:'#8b5cf6'" json:"secondaryColor"`
	TaxID          *string      `gorm:"type:varchar(100)" json:"taxId"`
	Industry       *string      `gorm:"type:varchar(100)" json:"industry"`
	Website        *string      `gorm:"type:varchar(255)" json:"website"`
	Phone          *string      `gorm:"type:varchar(50)" json:"phone"`
	Email          *string      `gorm:"type:varchar(255)" json:"email"`
	Address        *string      `gorm:"type:text" json:"address"`
	City           *string      `gorm:"type:varchar(100)" json:"city"`
	Country        string       `gorm:"type:varchar(100);not null;default:'Uruguay'" json:"country"`
	IsActive       bool         `gorm:"not null" json:"isActive"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (MyCompany) TableName() string { return "my_companies" }

type Member struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	CompanyID snowflake.ID  `gorm:"not null;uniqueIndex:ux_company_members_company_user" json:"companyId"`
	UserID    snowflake.ID  `gorm:"not null;uniqueIndex:ux_company_members_company_user;index" json:"userId"`
	Role      string        `gorm:"type:varchar(20);not null" json:"role"`
	IsActive  bool          `gorm:"not null" json:"isActive"`
	InvitedBy *snowflake.ID `json:"invitedBy"`
	InvitedAt *time.Time    `json:"invitedAt"`
	JoinedAt  *time.Time    `json:"joinedAt"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`

	// Populated on list from users.
	Email    string `gorm:"->;-:migration" json:"email,omitempty"`
	FullName string `gorm:"->;-:migration" json:"fullName,omitempty"`
}

func (Member) TableName() string { return "company_members" }

var CompanyTypes = []string{
	"technology", "consulting", "retail", "services", "education", "health",
	"finance", "manufacturing", "real_estate", "marketing", "design", "legal", "other",
}
