package repository

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/task/domain"
	"github.com/verlyx/hub/pkg/db/pagination"
	pkgrepo "github.com/verlyx/hub/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).Create(task).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Task, error) {
	return pkgrepo.ProvideStore[domain.Task](db).FindByID(ctx, id)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.Task, int64, error) {
	store := pkgrepo.ProvideStore[domain.Task](db)
	scopes := []pkgrepo.Scope{
		pkgrepo.Where("my_company_id = ?", filter.MyCompanyID),
		pkgrepo.Search(filter.Search, "title", "description"),
	}
	if filter.Status != "" {
		scopes = append(scopes, pkgrepo.Where("status = ?", filter.Status))
	}
	if filter.Priority != "" {
		scopes = append(scopes, pkgrepo.Where("priority = ?", filter.Priority))
	}
	optional := []struct {
		column string
		value  *snowflake.ID
	}{
		{"project_id", filter.ProjectID},
		{"deal_id", filter.DealID},
		{"client_id", filter.ClientID},
		{"organization_id", filter.OrganizationID},
		{"assigned_to", filter.AssignedTo},
		{"parent_task_id", filter.ParentTaskID},
	}
	for _, opt := range optional {
		if opt.value != nil {
			scopes = append(scopes, pkgrepo.Where(opt.column+" = ?", *opt.value))
		}
	}
	if filter.IsBlocked != nil {
		scopes = append(scopes, pkgrepo.Where("is_blocked = ?", *filter.IsBlocked))
	}

	total, err := store.Count(ctx, scopes...)
	if err != nil {
		return nil, 0, err
	}
	page = page.Normalize()
	tasks, err := store.Find(ctx, append(scopes,
		pkgrepo.OrderBy("created_at desc, id desc"),
		pkgrepo.Paginate(page.Offset(), page.Limit),
	)...)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.Task](db).Update(ctx, id, fields)
	return err
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	_, err := pkgrepo.ProvideStore[domain.Task](db).Delete(ctx, id)
	return err
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB, companyID snowflake.ID, projectID *snowflake.ID) (json.RawMessage, error) {
	var result any
	err := db.WithContext(ctx).Raw(
		`SELECT get_tasks_stats(?, ?)`,
		companyID, projectID,
	).Row().Scan(&result)
	if err != nil {
		return nil, err
	}
	switch v := result.(type) {
	case nil:
		return json.RawMessage("{}"), nil
	case []byte:
		return json.RawMessage(v), nil
	case string:
		return json.RawMessage(v), nil
	default:
		return json.Marshal(v)
	}
}

func (r *repo) Overdue(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]domain.Task, error) {
	tasks := []domain.Task{}
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM get_overdue_tasks(?)`,
		companyID,
	).Scan(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *repo) Hierarchy(ctx context.Context, db *gorm.DB, taskID snowflake.ID) ([]domain.HierarchyRow, error) {
	rows := []domain.HierarchyRow{}
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM get_task_hierarchy(?)`,
		taskID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
