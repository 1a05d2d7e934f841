package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateWorkspace(ctx context.Context, req CreateWorkspaceRequest) (*Workspace, error)
	ListWorkspaces(ctx context.Context, companyID *snowflake.ID) ([]Workspace, error)
	GetWorkspace(ctx context.Context, id snowflake.ID) (*Workspace, error)
	UpdateWorkspace(ctx context.Context, id snowflake.ID, req UpdateWorkspaceRequest) (*Workspace, error)
	DeleteWorkspace(ctx context.Context, id snowflake.ID) error

	CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error)
	ListPages(ctx context.Context, req ListPagesRequest) ([]Page, error)
	GetPage(ctx context.Context, id snowflake.ID) (*PageWithBlocks, error)
	UpdatePage(ctx context.Context, id snowflake.ID, req UpdatePageRequest) (*Page, error)
	DeletePage(ctx context.Context, id snowflake.ID) error
	DuplicatePage(ctx context.Context, id snowflake.ID, newTitle *string) (snowflake.ID, error)

	CreateBlock(ctx context.Context, req CreateBlockRequest) (*Block, error)
	ListBlocks(ctx context.Context, pageID snowflake.ID) ([]Block, error)
	UpdateBlock(ctx context.Context, id snowflake.ID, req UpdateBlockRequest) (*Block, error)
	DeleteBlock(ctx context.Context, id snowflake.ID) error
	ReorderBlocks(ctx context.Context, req ReorderBlocksRequest) error
}

type CreateWorkspaceRequest struct {
	MyCompanyID         *snowflake.ID `json:"myCompanyId"`
	Name                string        `json:"name"`
	Description         *string       `json:"description"`
	Icon                *string       `json:"icon"`
	Color               *string       `json:"color"`
	IsPublic            *bool         `json:"isPublic"`
	DefaultPageTemplate *string       `json:"defaultPageTemplate"`
	Order               *int          `json:"order"`
}

type UpdateWorkspaceRequest struct {
	Name                *string `json:"name"`
	Description         *string `json:"description"`
	Icon                *string `json:"icon"`
	Color               *string `json:"color"`
	IsPublic            *bool   `json:"isPublic"`
	DefaultPageTemplate *string `json:"defaultPageTemplate"`
	Order               *int    `json:"order"`
}

type CreatePageRequest struct {
	WorkspaceID     snowflake.ID  `json:"workspaceId"`
	ParentPageID    *snowflake.ID `json:"parentPageId"`
	Title           *string       `json:"title"`
	Icon            *string       `json:"icon"`
	CoverURL        *string       `json:"coverUrl"`
	IsPublic        *bool         `json:"isPublic"`
	IsTemplate      *bool         `json:"isTemplate"`
	TemplateType    *string       `json:"templateType"`
	CanComment      *bool         `json:"canComment"`
	CanEditByOthers *bool         `json:"canEditByOthers"`
}

type UpdatePageRequest struct {
	Title           *string `json:"title"`
	Icon            *string `json:"icon"`
	CoverURL        *string `json:"coverUrl"`
	IsPublic        *bool   `json:"isPublic"`
	IsTemplate      *bool   `json:"isTemplate"`
	TemplateType    *string `json:"templateType"`
	CanComment      *bool   `json:"canComment"`
	CanEditByOthers *bool   `json:"canEditByOthers"`
}

type ListPagesRequest struct {
	WorkspaceID  snowflake.ID  `form:"workspaceId"`
	ParentPageID *snowflake.ID `form:"parentPageId"`
}

type DuplicatePageRequest struct {
	NewTitle *string `json:"newTitle"`
}

type CreateBlockRequest struct {
	PageID        snowflake.ID   `json:"pageId"`
	ParentBlockID *snowflake.ID  `json:"parentBlockId"`
	Type          string         `json:"type"`
	Content       map[string]any `json:"content"`
	Order         *int           `json:"order"`
	IndentLevel   *int           `json:"indentLevel"`
}

type UpdateBlockRequest struct {
	Type        *string        `json:"type"`
	Content     map[string]any `json:"content"`
	Order       *int           `json:"order"`
	IndentLevel *int           `json:"indentLevel"`
}

type ReorderBlocksRequest struct {
	PageID snowflake.ID `json:"pageId"`
	Blocks []BlockOrder `json:"blocks"`
}

var (
	ErrInvalidCompany   = errors.New("invalid_company")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidWorkspace = errors.New("invalid_workspace")
	ErrInvalidParent    = errors.New("invalid_parent")
	ErrInvalidPage      = errors.New("invalid_page")
	ErrInvalidBlockType = errors.New("invalid_block_type")
	ErrInvalidContent   = errors.New("invalid_content")
	ErrInvalidIndent    = errors.New("invalid_indent_level")
	ErrInvalidReorder   = errors.New("invalid_reorder")
	ErrDuplicateFailed  = errors.New("duplicate_failed")
	ErrNotFound         = errors.New("not_found")
)
