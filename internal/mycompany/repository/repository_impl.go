package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/mycompany/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, company *domain.MyCompany) error {
	return db.WithContext(ctx).Create(company).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MyCompany, error) {
	var company domain.MyCompany
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM my_companies WHERE id = ?`,
		id,
	).Scan(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}

func (r *repo) ListForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.MyCompany, error) {
	companies := []domain.MyCompany{}
	err := db.WithContext(ctx).
		Model(&domain.MyCompany{}).
		Where("is_active = ?", true).
		Where(
			db.Where("owner_user_id = ?", userID).
				Or("id IN (?)", db.Model(&domain.Member{}).
					Select("company_id").
					Where("user_id = ? AND is_active = ?", userID, true)),
		).
		Order("created_at desc, id desc").
		Find(&companies).Error
	if err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).Model(&domain.MyCompany{}).Where("id = ?", id).Updates(fields).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", id).Delete(&domain.Member{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.MyCompany{}).Error
	})
}

func (r *repo) InsertMember(ctx context.Context, db *gorm.DB, member *domain.Member) error {
	return db.WithContext(ctx).Create(member).Error
}

func (r *repo) FindMember(ctx context.Context, db *gorm.DB, companyID, memberID snowflake.ID) (*domain.Member, error) {
	return r.findMember(ctx, db, "m.company_id = ? AND m.id = ?", companyID, memberID)
}

func (r *repo) FindMemberByUser(ctx context.Context, db *gorm.DB, companyID, userID snowflake.ID) (*domain.Member, error) {
	return r.findMember(ctx, db, "m.company_id = ? AND m.user_id = ?", companyID, userID)
}

func (r *repo) findMember(ctx context.Context, db *gorm.DB, where string, args ...any) (*domain.Member, error) {
	var member domain.Member
	err := db.WithContext(ctx).Raw(
		`SELECT m.*, u.email, u.full_name
		 FROM company_members m
		 LEFT JOIN users u ON u.id = m.user_id
		 WHERE `+where,
		args...,
	).Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) ListMembers(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]domain.Member, error) {
	members := []domain.Member{}
	err := db.WithContext(ctx).Raw(
		`SELECT m.*, u.email, u.full_name
		 FROM company_members m
		 LEFT JOIN users u ON u.id = m.user_id
		 WHERE m.company_id = ?
		 ORDER BY m.created_at ASC, m.id ASC`,
		companyID,
	).Scan(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repo) UpdateMember(ctx context.Context, db *gorm.DB, memberID snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).Model(&domain.Member{}).Where("id = ?", memberID).Updates(fields).Error
}

func (r *repo) DeleteMember(ctx context.Context, db *gorm.DB, memberID snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", memberID).Delete(&domain.Member{}).Error
}

func (r *repo) UserExists(ctx context.Context, db *gorm.DB, userID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Table("users").Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}
