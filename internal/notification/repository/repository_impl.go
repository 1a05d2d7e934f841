package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/notification/domain"
	pkgrepo "github.com/verlyx/hub/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	return db.WithContext(ctx).Create(n).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Notification, error) {
	scopes := []pkgrepo.Scope{
		pkgrepo.Where("user_id = ?", filter.UserID),
		pkgrepo.OrderBy("created_at desc, id desc"),
		pkgrepo.Paginate(0, filter.Limit),
	}
	if filter.Type != "" {
		scopes = append(scopes, pkgrepo.Where("type = ?", filter.Type))
	}
	if filter.Read != nil {
		scopes = append(scopes, pkgrepo.Where("is_read = ?", *filter.Read))
	}
	return pkgrepo.ProvideStore[domain.Notification](db).Find(ctx, scopes...)
}

func (r *repo) CountUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	return pkgrepo.ProvideStore[domain.Notification](db).Count(ctx,
		pkgrepo.Where("user_id = ? AND is_read = ?", userID, false),
	)
}

func (r *repo) FindForUser(ctx context.Context, db *gorm.DB, id, userID snowflake.ID) (*domain.Notification, error) {
	return pkgrepo.ProvideStore[domain.Notification](db).FindOne(ctx,
		pkgrepo.Where("id = ? AND user_id = ?", id, userID),
	)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.Notification](db).Update(ctx, id, fields)
	return err
}

func (r *repo) DeleteForUser(ctx context.Context, db *gorm.DB, id, userID snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Notification{})
	return res.RowsAffected, res.Error
}

func (r *repo) MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID, fields map[string]any) (int64, error) {
	res := db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(fields)
	return res.RowsAffected, res.Error
}
