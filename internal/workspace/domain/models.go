package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const DefaultPageTitle = "Untitled"

const (
	BlockParagraph    = "paragraph"
	BlockHeading1     = "heading_1"
	BlockHeading2     = "heading_2"
	BlockHeading3     = "heading_3"
	BlockBulletedList = "bulleted_list"
	BlockNumberedList = "numbered_list"
	BlockTodo         = "todo"
	BlockToggle       = "toggle"
	BlockQuote        = "quote"
	BlockDivider      = "divider"
	BlockCallout      = "callout"
	BlockCode         = "code"
	BlockImage        = "image"
	BlockVideo        = "video"
	BlockFile         = "file"
	BlockEmbed        = "embed"
	BlockTable        = "table"
	BlockTableRow     = "table_row"
	BlockBookmark     = "bookmark"
	BlockLinkToPage   = "link_to_page"
)

var BlockTypes = []string{
	BlockParagraph, BlockHeading1, BlockHeading2, BlockHeading3,
	BlockBulletedList, BlockNumberedList, BlockTodo, BlockToggle,
	BlockQuote, BlockDivider, BlockCallout, BlockCode,
	BlockImage, BlockVideo, BlockFile, BlockEmbed,
	BlockTable, BlockTableRow, BlockBookmark, BlockLinkToPage,
}

func ValidBlockType(t string) bool {
	for _, candidate := range BlockTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

type Workspace struct {
	ID                  snowflake.ID  `gorm:"primaryKey" json:"id"`
	MyCompanyID         snowflake.ID  `gorm:"not null;index" json:"myCompanyId"`
	Name                string        `gorm:"type:varchar(255);not null" json:"name"`
	Description         *string       `gorm:"type:text" json:"description"`
	Icon                *string       `gorm:"type:varchar(64)" json:"icon"`
	Color               *string       `gorm:"type:varchar(32)" json:"color"`
	IsPublic            bool          `gorm:"not null;default:false" json:"isPublic"`
	DefaultPageTemplate *string       `gorm:"type:varchar(64)" json:"defaultPageTemplate"`
	Order               int           `gorm:"column:order;not null;default:0" json:"order"`
	CreatedBy           *snowflake.ID `json:"createdBy"`
	CreatedAt           time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt           time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Workspace) TableName() string { return "workspaces" }

type Page struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	WorkspaceID     snowflake.ID  `gorm:"not null;index" json:"workspaceId"`
	ParentPageID    *snowflake.ID `gorm:"index" json:"parentPageId"`
	Title           string        `gorm:"type:varchar(255);not null;default:'Untitled'" json:"title"`
	Slug            string        `gorm:"type:varchar(255)" json:"slug"`
	Icon            *string       `gorm:"type:varchar(64)" json:"icon"`
	CoverURL        *string       `gorm:"type:text;column:cover_url" json:"coverUrl"`
	IsPublic        bool          `gorm:"not null;default:false" json:"isPublic"`
	IsTemplate      bool          `gorm:"not null;default:false" json:"isTemplate"`
	TemplateType    *string       `gorm:"type:varchar(64)" json:"templateType"`
	CanComment      bool          `gorm:"not null" json:"canComment"`
	CanEditByOthers bool          `gorm:"not null" json:"canEditByOthers"`
	CreatedBy       *snowflake.ID `json:"createdBy"`
	LastEditedBy    *snowflake.ID `json:"lastEditedBy"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Page) TableName() string { return "pages" }

type Block struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	PageID        snowflake.ID      `gorm:"not null;index" json:"pageId"`
	ParentBlockID *snowflake.ID     `json:"parentBlockId"`
	Type          string            `gorm:"type:varchar(32);not null" json:"type"`
	Content       datatypes.JSONMap `json:"content"`
	Order         int               `gorm:"column:order;not null;default:0" json:"order"`
	IndentLevel   int               `gorm:"not null;default:0" json:"indentLevel"`
	CreatedBy     *snowflake.ID     `json:"createdBy"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Block) TableName() string { return "blocks" }

// PageWithBlocks is a page plus its blocks in display order.
type PageWithBlocks struct {
	Page
	Blocks []Block `json:"blocks"`
}

// BlockOrder assigns a new position to one block.
type BlockOrder struct {
	ID    snowflake.ID `json:"id"`
	Order int          `json:"order"`
}
