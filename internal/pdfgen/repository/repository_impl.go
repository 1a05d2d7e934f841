package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/pdfgen/domain"
	pkgrepo "github.com/verlyx/hub/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertTemplate(ctx context.Context, db *gorm.DB, t *domain.Template) error {
	return pkgrepo.ProvideStore[domain.Template](db).Create(ctx, t)
}

func (r *repo) FindTemplate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Template, error) {
	return pkgrepo.ProvideStore[domain.Template](db).FindByID(ctx, id)
}

func (r *repo) ListTemplates(ctx context.Context, db *gorm.DB, filter domain.TemplateFilter) ([]domain.Template, error) {
	scopes := []pkgrepo.Scope{
		pkgrepo.Where("my_company_id = ?", filter.MyCompanyID),
		pkgrepo.OrderBy("created_at desc, id desc"),
	}
	if filter.TemplateType != "" {
		scopes = append(scopes, pkgrepo.Where("template_type = ?", filter.TemplateType))
	}
	if filter.IsActive != nil {
		scopes = append(scopes, pkgrepo.Where("is_active = ?", *filter.IsActive))
	}
	return pkgrepo.ProvideStore[domain.Template](db).Find(ctx, scopes...)
}

func (r *repo) UpdateTemplate(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.Template](db).Update(ctx, id, fields)
	return err
}

func (r *repo) DeleteTemplate(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	_, err := pkgrepo.ProvideStore[domain.Template](db).Delete(ctx, id)
	return err
}

func (r *repo) DetachGenerated(ctx context.Context, db *gorm.DB, templateID snowflake.ID) error {
	return db.WithContext(ctx).Model(&domain.GeneratedPDF{}).
		Where("template_id = ?", templateID).
		Update("template_id", nil).Error
}

func (r *repo) InsertGenerated(ctx context.Context, db *gorm.DB, g *domain.GeneratedPDF) error {
	return pkgrepo.ProvideStore[domain.GeneratedPDF](db).Create(ctx, g)
}

func (r *repo) FindGenerated(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.GeneratedPDF, error) {
	return pkgrepo.ProvideStore[domain.GeneratedPDF](db).FindByID(ctx, id)
}

func (r *repo) ListGenerated(ctx context.Context, db *gorm.DB, filter domain.GeneratedFilter) ([]domain.GeneratedPDF, error) {
	scopes := []pkgrepo.Scope{
		pkgrepo.Where("my_company_id = ?", filter.MyCompanyID),
		pkgrepo.OrderBy("created_at desc, id desc"),
	}
	if filter.TemplateID != nil {
		scopes = append(scopes, pkgrepo.Where("template_id = ?", *filter.TemplateID))
	}
	return pkgrepo.ProvideStore[domain.GeneratedPDF](db).Find(ctx, scopes...)
}

func (r *repo) DeleteGenerated(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	_, err := pkgrepo.ProvideStore[domain.GeneratedPDF](db).Delete(ctx, id)
	return err
}
