package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (r *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	return &store[T]{db: tx}
}

// FindByID returns nil, nil when the row does not exist.
func (r *store[T]) FindByID(ctx context.Context, id snowflake.ID) (*T, error) {
	return r.FindOne(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	})
}

func (r *store[T]) FindOne(ctx context.Context, scopes ...Scope) (*T, error) {
	var result T
	err := r.query(ctx, scopes...).Limit(1).Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *store[T]) Find(ctx context.Context, scopes ...Scope) ([]T, error) {
	result := []T{}
	if err := r.query(ctx, scopes...).Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *store[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var count int64
	err := r.query(ctx, scopes...).Count(&count).Error
	return count, err
}

func (r *store[T]) Create(ctx context.Context, resource *T) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *store[T]) Save(ctx context.Context, resource *T) error {
	return r.db.WithContext(ctx).Save(resource).Error
}

func (r *store[T]) Update(ctx context.Context, id snowflake.ID, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *store[T]) Delete(ctx context.Context, id snowflake.ID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	return res.RowsAffected, res.Error
}

func (r *store[T]) query(ctx context.Context, scopes ...Scope) *gorm.DB {
	db := r.db.WithContext(ctx).Model(new(T))
	for _, scope := range scopes {
		if scope != nil {
			db = scope(db)
		}
	}
	return db
}
