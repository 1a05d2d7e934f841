package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type TemplateFilter struct {
	MyCompanyID  snowflake.ID
	TemplateType string
	IsActive     *bool
}

type GeneratedFilter struct {
	MyCompanyID snowflake.ID
	TemplateID  *snowflake.ID
}

type Repository interface {
	InsertTemplate(ctx context.Context, db *gorm.DB, t *Template) error
	FindTemplate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Template, error)
	ListTemplates(ctx context.Context, db *gorm.DB, filter TemplateFilter) ([]Template, error)
	UpdateTemplate(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	DeleteTemplate(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	DetachGenerated(ctx context.Context, db *gorm.DB, templateID snowflake.ID) error

	InsertGenerated(ctx context.Context, db *gorm.DB, g *GeneratedPDF) error
	FindGenerated(ctx context.Context, db *gorm.DB, id snowflake.ID) (*GeneratedPDF, error)
	ListGenerated(ctx context.Context, db *gorm.DB, filter GeneratedFilter) ([]GeneratedPDF, error)
	DeleteGenerated(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
