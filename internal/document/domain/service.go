package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Document, error)
	List(ctx context.Context, req ListRequest) (pagination.Page[Document], error)
	Get(ctx context.Context, id snowflake.ID) (*Document, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*Document, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

type CreateRequest struct {
	MyCompanyID *snowflake.ID `json:"myCompanyId"`
	Name        string        `json:"name"`
	FilePath    string        `json:"filePath"`
	FileSize    *int64        `json:"fileSize"`
	MimeType    *string       `json:"mimeType"`
	Description *string       `json:"description"`
	Folder      *string       `json:"folder"`
	ProjectID   *snowflake.ID `json:"projectId"`
	Tags        []string      `json:"tags"`
}

type UpdateRequest struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	ProjectID   *snowflake.ID `json:"projectId"`
	Folder      *string       `json:"folder"`
	Tags        []string      `json:"tags"`
}

type ListRequest struct {
	pagination.Pagination
	MyCompanyID *snowflake.ID `form:"myCompanyId"`
	ProjectID   *snowflake.ID `form:"projectId"`
	Folder      string        `form:"folder"`
	Search      string        `form:"search"`
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidPath    = errors.New("invalid_file_path")
	ErrInvalidSize    = errors.New("invalid_file_size")
	ErrNotFound       = errors.New("not_found")
)
