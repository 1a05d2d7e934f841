package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/document/domain"
	"github.com/verlyx/hub/pkg/db/pagination"
	pkgrepo "github.com/verlyx/hub/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	return db.WithContext(ctx).Create(doc).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Document, error) {
	return pkgrepo.ProvideStore[domain.Document](db).FindByID(ctx, id)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.Document, int64, error) {
	store := pkgrepo.ProvideStore[domain.Document](db)
	scopes := []pkgrepo.Scope{
		pkgrepo.Where("my_company_id = ?", filter.MyCompanyID),
		pkgrepo.Search(filter.Search, "name", "description"),
	}
	if filter.ProjectID != nil {
		scopes = append(scopes, pkgrepo.Where("project_id = ?", *filter.ProjectID))
	}
	if folder := strings.TrimSpace(filter.Folder); folder != "" {
		scopes = append(scopes, pkgrepo.Where("folder = ?", folder))
	}

	total, err := store.Count(ctx, scopes...)
	if err != nil {
		return nil, 0, err
	}
	page = page.Normalize()
	docs, err := store.Find(ctx, append(scopes,
		pkgrepo.OrderBy("created_at desc, id desc"),
		pkgrepo.Paginate(page.Offset(), page.Limit),
	)...)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.Document](db).Update(ctx, id, fields)
	return err
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	_, err := pkgrepo.ProvideStore[domain.Document](db).Delete(ctx, id)
	return err
}
