package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/organization/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, org *domain.Organization) error {
	return db.WithContext(ctx).Create(org).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM client_organizations WHERE id = ?`,
		id,
	).Scan(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == 0 {
		return nil, nil
	}
	return &org, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Organization, error) {
	orgs := []domain.Organization{}
	stmt := db.WithContext(ctx).
		Model(&domain.Organization{}).
		Where("my_company_id = ?", filter.MyCompanyID)
	if filter.ClientID != nil {
		stmt = stmt.Where("client_id = ?", *filter.ClientID)
	}
	if err := stmt.Order("name asc, id asc").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).Model(&domain.Organization{}).Where("id = ?", id).Updates(fields).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Organization{}).Error
}

func (r *repo) Hierarchy(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]domain.HierarchyRow, error) {
	rows := []domain.HierarchyRow{}
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, parent_organization_id, level, path, type
		 FROM get_organization_hierarchy(?)`,
		clientID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
