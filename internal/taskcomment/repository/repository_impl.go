package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/taskcomment/domain"
	"github.com/verlyx/hub/pkg/db"
	pkgrepo "github.com/verlyx/hub/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, comment *domain.Comment) error {
	return conn.WithContext(ctx).Create(comment).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Comment, error) {
	return pkgrepo.ProvideStore[domain.Comment](conn).FindByID(ctx, id)
}

func (r *repo) FindForUpdate(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Comment, error) {
	return pkgrepo.ProvideStore[domain.Comment](conn).FindOne(ctx, func(tx *gorm.DB) *gorm.DB {
		if db.IsPostgres(tx) {
			tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		return tx.Where("id = ?", id)
	})
}

func (r *repo) ListByTask(ctx context.Context, conn *gorm.DB, taskID snowflake.ID) ([]domain.Comment, error) {
	return pkgrepo.ProvideStore[domain.Comment](conn).Find(ctx,
		pkgrepo.Where("task_id = ?", taskID),
		pkgrepo.OrderBy("created_at asc, id asc"),
	)
}

func (r *repo) Update(ctx context.Context, conn *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.Comment](conn).Update(ctx, id, fields)
	return err
}

func (r *repo) Delete(ctx context.Context, conn *gorm.DB, id snowflake.ID) error {
	_, err := pkgrepo.ProvideStore[domain.Comment](conn).Delete(ctx, id)
	return err
}

func (r *repo) TaskCompany(ctx context.Context, conn *gorm.DB, taskID snowflake.ID) (snowflake.ID, error) {
	var companyID snowflake.ID
	err := conn.WithContext(ctx).Raw(
		`SELECT my_company_id FROM tasks WHERE id = ?`,
		taskID,
	).Scan(&companyID).Error
	return companyID, err
}
