package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	TypeContract = "contract"
	TypeInvoice  = "invoice"
	TypeReceipt  = "receipt"
	TypeQuote    = "quote"
	TypeReport   = "report"
)

var TemplateTypes = []string{TypeContract, TypeInvoice, TypeReceipt, TypeQuote, TypeReport}

func ValidTemplateType(t string) bool {
	for _, candidate := range TemplateTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

type Template struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	MyCompanyID  snowflake.ID      `gorm:"not null;index" json:"my_company_id"`
	Name         string            `gorm:"type:varchar(255);not null" json:"name"`
	Description  *string           `gorm:"type:text" json:"description"`
	TemplateType string            `gorm:"type:varchar(20);not null;index" json:"template_type"`
	TemplateData datatypes.JSONMap `json:"template_data"`
	IsActive     bool              `gorm:"not null" json:"is_active"`
	CreatedBy    *snowflake.ID     `json:"created_by"`
	CreatedAt    time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null" json:"updated_at"`
}

func (Template) TableName() string { return "pdf_templates" }

type GeneratedPDF struct {
	ID               snowflake.ID      `gorm:"primaryKey" json:"id"`
	MyCompanyID      snowflake.ID      `gorm:"not null;index" json:"my_company_id"`
	TemplateID       *snowflake.ID     `gorm:"index" json:"template_id"`
	FileName         string            `gorm:"type:varchar(255);not null" json:"file_name"`
	FilePath         string            `gorm:"type:text;not null" json:"file_path"`
	FileSize         int64             `gorm:"not null" json:"file_size"`
	DocumentData     datatypes.JSONMap `json:"document_data"`
	RelatedContactID *snowflake.ID     `json:"related_contact_id"`
	RelatedProjectID *snowflake.ID     `json:"related_project_id"`
	CreatedBy        *snowflake.ID     `json:"created_by"`
	CreatedAt        time.Time         `gorm:"not null" json:"created_at"`
}

func (GeneratedPDF) TableName() string { return "generated_pdfs" }
