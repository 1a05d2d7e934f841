package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertWorkspace(ctx context.Context, db *gorm.DB, ws *Workspace) error
	FindWorkspace(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Workspace, error)
	ListWorkspaces(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]Workspace, error)
	UpdateWorkspace(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	DeleteWorkspace(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertPage(ctx context.Context, db *gorm.DB, page *Page) error
	FindPage(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Page, error)
	// ListPages returns the children of parentID, or the root pages when nil.
	ListPages(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID, parentID *snowflake.ID) ([]Page, error)
	UpdatePage(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	DeletePage(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	DuplicatePage(ctx context.Context, db *gorm.DB, sourceID snowflake.ID, newTitle *string) (snowflake.ID, error)
	// PageCompany resolves the company that owns a page through its workspace.
	PageCompany(ctx context.Context, db *gorm.DB, pageID snowflake.ID) (snowflake.ID, error)

	InsertBlock(ctx context.Context, db *gorm.DB, block *Block) error
	FindBlock(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Block, error)
	ListBlocks(ctx context.Context, db *gorm.DB, pageID snowflake.ID) ([]Block, error)
	CountBlocks(ctx context.Context, db *gorm.DB, pageID snowflake.ID, ids []snowflake.ID) (int64, error)
	UpdateBlock(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	DeleteBlock(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
