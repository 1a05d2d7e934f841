package repository

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/workspace/domain"
	pkgrepo "github.com/verlyx/hub/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// byPosition sorts on the quoted "order" column.
func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).Order("id asc")
}

func (r *repo) InsertWorkspace(ctx context.Context, db *gorm.DB, ws *domain.Workspace) error {
	return db.WithContext(ctx).Create(ws).Error
}

func (r *repo) FindWorkspace(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Workspace, error) {
	return pkgrepo.ProvideStore[domain.Workspace](db).FindByID(ctx, id)
}

func (r *repo) ListWorkspaces(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]domain.Workspace, error) {
	return pkgrepo.ProvideStore[domain.Workspace](db).Find(ctx,
		pkgrepo.Where("my_company_id = ?", companyID),
		byPosition,
	)
}

func (r *repo) UpdateWorkspace(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.Workspace](db).Update(ctx, id, fields)
	return err
}

func (r *repo) DeleteWorkspace(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pages := tx.Model(&domain.Page{}).Select("id").Where("workspace_id = ?", id)
		if err := tx.Where("page_id IN (?)", pages).Delete(&domain.Block{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&domain.Page{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Workspace{}).Error
	})
}

func (r *repo) InsertPage(ctx context.Context, db *gorm.DB, page *domain.Page) error {
	return db.WithContext(ctx).Create(page).Error
}

func (r *repo) FindPage(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Page, error) {
	return pkgrepo.ProvideStore[domain.Page](db).FindByID(ctx, id)
}

func (r *repo) ListPages(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID, parentID *snowflake.ID) ([]domain.Page, error) {
	parent := pkgrepo.Where("parent_page_id IS NULL")
	if parentID != nil {
		parent = pkgrepo.Where("parent_page_id = ?", *parentID)
	}
	return pkgrepo.ProvideStore[domain.Page](db).Find(ctx,
		pkgrepo.Where("workspace_id = ?", workspaceID),
		parent,
		pkgrepo.OrderBy("created_at asc, id asc"),
	)
}

func (r *repo) UpdatePage(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.Page](db).Update(ctx, id, fields)
	return err
}

func (r *repo) DeletePage(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_id = ?", id).Delete(&domain.Block{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Page{}).Where("parent_page_id = ?", id).
			Update("parent_page_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Page{}).Error
	})
}

func (r *repo) DuplicatePage(ctx context.Context, db *gorm.DB, sourceID snowflake.ID, newTitle *string) (snowflake.ID, error) {
	var result any
	err := db.WithContext(ctx).Raw(
		`SELECT duplicate_page(?, ?)`,
		sourceID, newTitle,
	).Row().Scan(&result)
	if err != nil {
		return 0, err
	}
	switch v := result.(type) {
	case nil:
		return 0, nil
	case int64:
		return snowflake.ID(v), nil
	case []byte:
		return snowflake.ParseString(string(v))
	default:
		return snowflake.ParseString(fmt.Sprint(v))
	}
}

func (r *repo) PageCompany(ctx context.Context, db *gorm.DB, pageID snowflake.ID) (snowflake.ID, error) {
	var companyID snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT w.my_company_id FROM pages p JOIN workspaces w ON w.id = p.workspace_id WHERE p.id = ?`,
		pageID,
	).Scan(&companyID).Error
	return companyID, err
}

func (r *repo) InsertBlock(ctx context.Context, db *gorm.DB, block *domain.Block) error {
	return db.WithContext(ctx).Create(block).Error
}

func (r *repo) FindBlock(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Block, error) {
	return pkgrepo.ProvideStore[domain.Block](db).FindByID(ctx, id)
}

func (r *repo) ListBlocks(ctx context.Context, db *gorm.DB, pageID snowflake.ID) ([]domain.Block, error) {
	return pkgrepo.ProvideStore[domain.Block](db).Find(ctx,
		pkgrepo.Where("page_id = ?", pageID),
		byPosition,
	)
}

func (r *repo) CountBlocks(ctx context.Context, db *gorm.DB, pageID snowflake.ID, ids []snowflake.ID) (int64, error) {
	return pkgrepo.ProvideStore[domain.Block](db).Count(ctx,
		pkgrepo.Where("page_id = ? AND id IN ?", pageID, ids),
	)
}

func (r *repo) UpdateBlock(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.Block](db).Update(ctx, id, fields)
	return err
}

func (r *repo) DeleteBlock(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	_, err := pkgrepo.ProvideStore[domain.Block](db).Delete(ctx, id)
	return err
}
