package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*Template, error)
	ListTemplates(ctx context.Context, req ListTemplatesRequest) ([]Template, error)
	GetTemplate(ctx context.Context, id snowflake.ID) (*Template, error)
	UpdateTemplate(ctx context.Context, id snowflake.ID, req UpdateTemplateRequest) (*Template, error)
	DeleteTemplate(ctx context.Context, id snowflake.ID) error

	Generate(ctx context.Context, req GenerateRequest) (*GeneratedPDF, error)
	ListGenerated(ctx context.Context, req ListGeneratedRequest) ([]GeneratedPDF, error)
	GetGenerated(ctx context.Context, id snowflake.ID) (*GeneratedPDF, error)
	Download(ctx context.Context, id snowflake.ID) (*GeneratedPDF, string, error)
	DeleteGenerated(ctx context.Context, id snowflake.ID) error
}

type CreateTemplateRequest struct {
	MyCompanyID  *snowflake.ID  `json:"my_company_id"`
	Name         string         `json:"name"`
	Description  *string        `json:"description"`
	TemplateType string         `json:"template_type"`
	TemplateData map[string]any `json:"template_data"`
	IsActive     *bool          `json:"is_active"`
}

type ListTemplatesRequest struct {
	MyCompanyID  *snowflake.ID `form:"my_company_id"`
	TemplateType string        `form:"template_type"`
	IsActive     *bool         `form:"is_active"`
}

type UpdateTemplateRequest struct {
	Name         *string        `json:"name"`
	Description  *string        `json:"description"`
	TemplateType *string        `json:"template_type"`
	TemplateData map[string]any `json:"template_data"`
	IsActive     *bool          `json:"is_active"`
}

type GenerateRequest struct {
	TemplateID       snowflake.ID   `json:"template_id"`
	FileName         string         `json:"file_name"`
	DocumentData     map[string]any `json:"document_data"`
	RelatedContactID *snowflake.ID  `json:"related_contact_id"`
	RelatedProjectID *snowflake.ID  `json:"related_project_id"`
}

type ListGeneratedRequest struct {
	MyCompanyID *snowflake.ID `form:"my_company_id"`
	TemplateID  *snowflake.ID `form:"template_id"`
}

var (
	ErrInvalidCompany      = errors.New("invalid_company")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidTemplateType = errors.New("invalid_template_type")
	ErrInvalidTemplate     = errors.New("invalid_template")
	ErrInactiveTemplate    = errors.New("inactive_template")
	ErrInvalidDocumentData = errors.New("invalid_document_data")
	ErrFileMissing         = errors.New("file_missing")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrNotFound            = errors.New("not_found")
)
