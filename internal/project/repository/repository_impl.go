package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/project/domain"
	"github.com/verlyx/hub/pkg/db/pagination"
	pkgrepo "github.com/verlyx/hub/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Create(project).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Project, error) {
	return pkgrepo.ProvideStore[domain.Project](db).FindByID(ctx, id)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.Project, int64, error) {
	store := pkgrepo.ProvideStore[domain.Project](db)
	scopes := filterScopes(filter)

	total, err := store.Count(ctx, scopes...)
	if err != nil {
		return nil, 0, err
	}
	page = page.Normalize()
	projects, err := store.Find(ctx, append(scopes,
		pkgrepo.OrderBy("created_at desc, id desc"),
		pkgrepo.Paginate(page.Offset(), page.Limit),
	)...)
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *repo) ListForCompany(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]domain.Project, error) {
	return pkgrepo.ProvideStore[domain.Project](db).Find(ctx, pkgrepo.Where("my_company_id = ?", companyID))
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.Project](db).Update(ctx, id, fields)
	return err
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	_, err := pkgrepo.ProvideStore[domain.Project](db).Delete(ctx, id)
	return err
}

func filterScopes(f domain.ListFilter) []pkgrepo.Scope {
	scopes := []pkgrepo.Scope{
		pkgrepo.Where("my_company_id = ?", f.CompanyID),
		pkgrepo.Search(f.Search, "name", "description"),
		pkgrepo.JSONArrayContains("tags", f.Tag),
	}
	if f.Status != "" {
		scopes = append(scopes, pkgrepo.Where("status = ?", f.Status))
	}
	if f.Priority != "" {
		scopes = append(scopes, pkgrepo.Where("priority = ?", f.Priority))
	}
	if f.ClientID != nil {
		scopes = append(scopes, pkgrepo.Where("client_id = ?", *f.ClientID))
	}
	if f.ProjectManagerID != nil {
		scopes = append(scopes, pkgrepo.Where("project_manager_id = ?", *f.ProjectManagerID))
	}
	if !f.IncludeArchived {
		scopes = append(scopes, pkgrepo.Where("is_archived = ?", false))
	}
	if f.StartDateFrom != nil {
		scopes = append(scopes, pkgrepo.Where("start_date >= ?", *f.StartDateFrom))
	}
	if f.StartDateTo != nil {
		scopes = append(scopes, pkgrepo.Where("start_date <= ?", *f.StartDateTo))
	}
	if f.DueDateFrom != nil {
		scopes = append(scopes, pkgrepo.Where("due_date >= ?", *f.DueDateFrom))
	}
	if f.DueDateTo != nil {
		scopes = append(scopes, pkgrepo.Where("due_date <= ?", *f.DueDateTo))
	}
	return scopes
}
