package repository

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/deal/domain"
	pkgrepo "github.com/verlyx/hub/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, deal *domain.Deal) error {
	return pkgrepo.ProvideStore[domain.Deal](db).Create(ctx, deal)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Deal, error) {
	return pkgrepo.ProvideStore[domain.Deal](db).FindByID(ctx, id)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Deal, error) {
	scopes := []pkgrepo.Scope{
		pkgrepo.Where("my_company_id = ?", filter.MyCompanyID),
		pkgrepo.OrderBy("created_at desc, id desc"),
	}
	if filter.Stage != "" {
		scopes = append(scopes, pkgrepo.Where("stage = ?", filter.Stage))
	}
	if filter.ClientID != nil {
		scopes = append(scopes, pkgrepo.Where("client_id = ?", *filter.ClientID))
	}
	return pkgrepo.ProvideStore[domain.Deal](db).Find(ctx, scopes...)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.Deal](db).Update(ctx, id, fields)
	return err
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	return pkgrepo.ProvideStore[domain.Deal](db).Delete(ctx, id)
}

func (r *repo) PipelineStats(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]domain.PipelineStat, error) {
	stats := []domain.PipelineStat{}
	err := db.WithContext(ctx).Raw(
		`SELECT stage, count, total_amount, avg_amount, total_weighted
		 FROM get_pipeline_stats(?)`,
		companyID,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *repo) MoveToStage(ctx context.Context, db *gorm.DB, id snowflake.ID, stage string, reason *string) (bool, error) {
	var result any
	err := db.WithContext(ctx).Raw(
		`SELECT move_deal_to_stage(?, ?, ?)`,
		id, stage, reason,
	).Row().Scan(&result)
	if err != nil {
		return false, err
	}
	switch v := result.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	default:
		return true, nil
	}
}

func (r *repo) CreateProject(ctx context.Context, db *gorm.DB, id snowflake.ID, name, description *string) (string, error) {
	var result any
	err := db.WithContext(ctx).Raw(
		`SELECT create_project_from_deal(?, ?, ?)`,
		id, name, description,
	).Row().Scan(&result)
	if err != nil {
		return "", err
	}
	switch v := result.(type) {
	case nil:
		return "", nil
	case []byte:
		return string(v), nil
	default:
		return fmt.Sprint(v), nil
	}
}
