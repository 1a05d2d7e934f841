package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/finance/domain"
	"github.com/verlyx/hub/pkg/db/pagination"
	pkgrepo "github.com/verlyx/hub/pkg/repository"
	"gorm.io/gorm"
)

const entryDate = "COALESCE(payment_date, due_date)"

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertAccount(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Create(account).Error
}

func (r *repo) FindAccount(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Account, error) {
	return pkgrepo.ProvideStore[domain.Account](db).FindByID(ctx, id)
}

func (r *repo) ListAccounts(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]domain.Account, error) {
	return pkgrepo.ProvideStore[domain.Account](db).Find(ctx,
		pkgrepo.Where("my_company_id = ?", companyID),
		pkgrepo.OrderBy("name asc"),
	)
}

func (r *repo) UpdateAccount(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.Account](db).Update(ctx, id, fields)
	return err
}

func (r *repo) DeleteAccount(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	_, err := pkgrepo.ProvideStore[domain.Account](db).Delete(ctx, id)
	return err
}

func (r *repo) AdjustBalance(ctx context.Context, db *gorm.DB, id snowflake.ID, delta float64) error {
	res := db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", id).
		Update("current_balance", gorm.Expr("current_balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvalidAccount
	}
	return nil
}

func (r *repo) InsertCategory(ctx context.Context, db *gorm.DB, category *domain.Category) error {
	return db.WithContext(ctx).Create(category).Error
}

func (r *repo) FindCategory(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Category, error) {
	return pkgrepo.ProvideStore[domain.Category](db).FindByID(ctx, id)
}

func (r *repo) ListCategories(ctx context.Context, db *gorm.DB, companyID snowflake.ID, kind string) ([]domain.Category, error) {
	scopes := []pkgrepo.Scope{
		pkgrepo.Where("my_company_id = ?", companyID),
		pkgrepo.OrderBy("name asc"),
	}
	if kind != "" {
		scopes = append(scopes, pkgrepo.Where("kind = ?", kind))
	}
	return pkgrepo.ProvideStore[domain.Category](db).Find(ctx, scopes...)
}

func (r *repo) InsertExpense(ctx context.Context, db *gorm.DB, expense *domain.Expense) error {
	return db.WithContext(ctx).Create(expense).Error
}

func (r *repo) FindExpense(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Expense, error) {
	return pkgrepo.ProvideStore[domain.Expense](db).FindByID(ctx, id)
}

func (r *repo) ListExpenses(ctx context.Context, db *gorm.DB, filter domain.EntryFilter, page pagination.Pagination) ([]domain.Expense, int64, error) {
	return listPage[domain.Expense](ctx, db, filter, page)
}

func (r *repo) UpdateExpense(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.Expense](db).Update(ctx, id, fields)
	return err
}

func (r *repo) DeleteExpense(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	_, err := pkgrepo.ProvideStore[domain.Expense](db).Delete(ctx, id)
	return err
}

func (r *repo) InsertIncome(ctx context.Context, db *gorm.DB, income *domain.Income) error {
	return db.WithContext(ctx).Create(income).Error
}

func (r *repo) FindIncome(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Income, error) {
	return pkgrepo.ProvideStore[domain.Income](db).FindByID(ctx, id)
}

func (r *repo) ListIncomes(ctx context.Context, db *gorm.DB, filter domain.EntryFilter, page pagination.Pagination) ([]domain.Income, int64, error) {
	return listPage[domain.Income](ctx, db, filter, page)
}

func (r *repo) UpdateIncome(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.Income](db).Update(ctx, id, fields)
	return err
}

func (r *repo) DeleteIncome(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	_, err := pkgrepo.ProvideStore[domain.Income](db).Delete(ctx, id)
	return err
}

func (r *repo) InsertBudget(ctx context.Context, db *gorm.DB, budget *domain.Budget) error {
	return db.WithContext(ctx).Create(budget).Error
}

func (r *repo) FindBudget(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Budget, error) {
	return pkgrepo.ProvideStore[domain.Budget](db).FindByID(ctx, id)
}

func (r *repo) ListBudgets(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]domain.Budget, error) {
	return pkgrepo.ProvideStore[domain.Budget](db).Find(ctx,
		pkgrepo.Where("my_company_id = ?", companyID),
		pkgrepo.OrderBy("period_start desc, id asc"),
	)
}

func (r *repo) DeleteBudget(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	_, err := pkgrepo.ProvideStore[domain.Budget](db).Delete(ctx, id)
	return err
}

func (r *repo) PaidExpenses(ctx context.Context, db *gorm.DB, companyID snowflake.ID, categoryID *snowflake.ID, from, to time.Time) (float64, error) {
	query := db.WithContext(ctx).Model(&domain.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("my_company_id = ? AND status = ?", companyID, domain.StatusPaid).
		Where(entryDate+" >= ? AND "+entryDate+" <= ?", from, to)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	var total float64
	if err := query.Row().Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) ExpensesBetween(ctx context.Context, db *gorm.DB, filter domain.EntryFilter) ([]domain.Expense, error) {
	return pkgrepo.ProvideStore[domain.Expense](db).Find(ctx, entryScopes(filter)...)
}

func (r *repo) IncomesBetween(ctx context.Context, db *gorm.DB, filter domain.EntryFilter) ([]domain.Income, error) {
	return pkgrepo.ProvideStore[domain.Income](db).Find(ctx, entryScopes(filter)...)
}

func listPage[T any](ctx context.Context, db *gorm.DB, filter domain.EntryFilter, page pagination.Pagination) ([]T, int64, error) {
	store := pkgrepo.ProvideStore[T](db)
	scopes := entryScopes(filter)

	total, err := store.Count(ctx, scopes...)
	if err != nil {
		return nil, 0, err
	}
	page = page.Normalize()
	rows, err := store.Find(ctx, append(scopes,
		pkgrepo.OrderBy(entryDate+" desc, created_at desc, id desc"),
		pkgrepo.Paginate(page.Offset(), page.Limit),
	)...)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func entryScopes(f domain.EntryFilter) []pkgrepo.Scope {
	scopes := []pkgrepo.Scope{pkgrepo.Where("my_company_id = ?", f.MyCompanyID)}
	if f.Status != "" {
		scopes = append(scopes, pkgrepo.Where("status = ?", f.Status))
	}
	if f.CategoryID != nil {
		scopes = append(scopes, pkgrepo.Where("category_id = ?", *f.CategoryID))
	}
	if f.AccountID != nil {
		scopes = append(scopes, pkgrepo.Where("account_id = ?", *f.AccountID))
	}
	if f.ProjectID != nil {
		scopes = append(scopes, pkgrepo.Where("project_id = ?", *f.ProjectID))
	}
	if f.From != nil {
		scopes = append(scopes, pkgrepo.Where(entryDate+" >= ?", *f.From))
	}
	if f.To != nil {
		scopes = append(scopes, pkgrepo.Where(entryDate+" <= ?", *f.To))
	}
	return scopes
}
