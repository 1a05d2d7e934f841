package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, company *MyCompany) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MyCompany, error)
	ListForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]MyCompany, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertMember(ctx context.Context, db *gorm.DB, member *Member) error
	FindMember(ctx context.Context, db *gorm.DB, companyID, memberID snowflake.ID) (*Member, error)
	FindMemberByUser(ctx context.Context, db *gorm.DB, companyID, userID snowflake.ID) (*Member, error)
	ListMembers(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]Member, error)
	UpdateMember(ctx context.Context, db *gorm.DB, memberID snowflake.ID, fields map[string]any) error
	DeleteMember(ctx context.Context, db *gorm.DB, memberID snowflake.ID) error
	UserExists(ctx context.Context, db *gorm.DB, userID snowflake.ID) (bool, error)
}
