package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/pkg/db/pagination"
	"gorm.io/gorm"
)

// EntryFilter narrows expense and income lists. From and To apply to the
// payment date, falling back to the due date.
type EntryFilter struct {
	MyCompanyID snowflake.ID
	Status      string
	CategoryID  *snowflake.ID
	AccountID   *snowflake.ID
	ProjectID   *snowflake.ID
	From        *time.Time
	To          *time.Time
}

type Repository interface {
	InsertAccount(ctx context.Context, db *gorm.DB, account *Account) error
	FindAccount(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Account, error)
	ListAccounts(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]Account, error)
	UpdateAccount(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	DeleteAccount(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	AdjustBalance(ctx context.Context, db *gorm.DB, id snowflake.ID, delta float64) error

	InsertCategory(ctx context.Context, db *gorm.DB, category *Category) error
	FindCategory(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Category, error)
	ListCategories(ctx context.Context, db *gorm.DB, companyID snowflake.ID, kind string) ([]Category, error)

	InsertExpense(ctx context.Context, db *gorm.DB, expense *Expense) error
	FindExpense(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Expense, error)
	ListExpenses(ctx context.Context, db *gorm.DB, filter EntryFilter, page pagination.Pagination) ([]Expense, int64, error)
	UpdateExpense(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	DeleteExpense(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertIncome(ctx context.Context, db *gorm.DB, income *Income) error
	FindIncome(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Income, error)
	ListIncomes(ctx context.Context, db *gorm.DB, filter EntryFilter, page pagination.Pagination) ([]Income, int64, error)
	UpdateIncome(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	DeleteIncome(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertBudget(ctx context.Context, db *gorm.DB, budget *Budget) error
	FindBudget(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Budget, error)
	ListBudgets(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]Budget, error)
	DeleteBudget(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	// PaidExpenses sums paid expenses dated within [from, to]. A nil category
	// sums every category.
	PaidExpenses(ctx context.Context, db *gorm.DB, companyID snowflake.ID, categoryID *snowflake.ID, from, to time.Time) (float64, error)

	// Unpaged variants for summaries.
	ExpensesBetween(ctx context.Context, db *gorm.DB, filter EntryFilter) ([]Expense, error)
	IncomesBetween(ctx context.Context, db *gorm.DB, filter EntryFilter) ([]Income, error)
}
