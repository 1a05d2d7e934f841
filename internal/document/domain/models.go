package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Document struct {
	ID          snowflake.ID                `gorm:"primaryKey" json:"id"`
	MyCompanyID snowflake.ID                `gorm:"not null;index" json:"myCompanyId"`
	Name        string                      `gorm:"type:varchar(255);not null" json:"name"`
	FilePath    string                      `gorm:"type:text;not null" json:"filePath"`
	FileSize    *int64                      `json:"fileSize"`
	MimeType    *string                     `gorm:"type:varchar(255)" json:"mimeType"`
	Description *string                     `gorm:"type:text" json:"description"`
	Folder      *string                     `gorm:"type:varchar(255);index" json:"folder"`
	ProjectID   *snowflake.ID               `gorm:"index" json:"projectId"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	UploadedBy  *snowflake.ID               `json:"uploadedBy"`
	CreatedAt   time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Document) TableName() string { return "documents" }
