package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/pkg/db/pagination"
)

type Service interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*Account, error)
	ListAccounts(ctx context.Context, companyID *snowflake.ID) ([]Account, error)
	UpdateAccount(ctx context.Context, id snowflake.ID, req UpdateAccountRequest) (*Account, error)
	DeleteAccount(ctx context.Context, id snowflake.ID) error

	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	ListCategories(ctx context.Context, companyID *snowflake.ID, kind string) ([]Category, error)

	CreateExpense(ctx context.Context, req CreateExpenseRequest) (*Expense, error)
	ListExpenses(ctx context.Context, req ListEntriesRequest) (pagination.Page[Expense], error)
	GetExpense(ctx context.Context, id snowflake.ID) (*Expense, error)
	UpdateExpense(ctx context.Context, id snowflake.ID, req UpdateExpenseRequest) (*Expense, error)
	DeleteExpense(ctx context.Context, id snowflake.ID) error

	CreateIncome(ctx context.Context, req CreateIncomeRequest) (*Income, error)
	ListIncomes(ctx context.Context, req ListEntriesRequest) (pagination.Page[Income], error)
	GetIncome(ctx context.Context, id snowflake.ID) (*Income, error)
	UpdateIncome(ctx context.Context, id snowflake.ID, req UpdateIncomeRequest) (*Income, error)
	DeleteIncome(ctx context.Context, id snowflake.ID) error

	CreateBudget(ctx context.Context, req CreateBudgetRequest) (*Budget, error)
	ListBudgets(ctx context.Context, companyID *snowflake.ID) ([]BudgetReport, error)
	DeleteBudget(ctx context.Context, id snowflake.ID) error

	Summary(ctx context.Context, req SummaryRequest) (*Summary, error)
}

type CreateAccountRequest struct {
	MyCompanyID    *snowflake.ID `json:"myCompanyId"`
	Name           string        `json:"name"`
	Type           string        `json:"type"`
	Currency       *string       `json:"currency"`
	CurrentBalance *float64      `json:"currentBalance"`
	BankName       *string       `json:"bankName"`
	AccountNumber  *string       `json:"accountNumber"`
	Color          *string       `json:"color"`
}

type UpdateAccountRequest struct {
	Name          *string `json:"name"`
	Type          *string `json:"type"`
	BankName      *string `json:"bankName"`
	AccountNumber *string `json:"accountNumber"`
	Color         *string `json:"color"`
	IsActive      *bool   `json:"isActive"`
}

type CreateCategoryRequest struct {
	MyCompanyID *snowflake.ID `json:"myCompanyId"`
	Name        string        `json:"name"`
	Kind        string        `json:"kind"`
	Color       *string       `json:"color"`
	Icon        *string       `json:"icon"`
}

// EntryFields are shared by expenses and incomes. Nil fields are unset on
// create and unchanged on update.
type EntryFields struct {
	Amount              *float64      `json:"amount"`
	Currency            *string       `json:"currency"`
	Description         *string       `json:"description"`
	Status              *string       `json:"status"`
	CategoryID          *snowflake.ID `json:"categoryId"`
	AccountID           *snowflake.ID `json:"accountId"`
	ProjectID           *snowflake.ID `json:"projectId"`
	PaymentDate         *time.Time    `json:"paymentDate"`
	DueDate             *time.Time    `json:"dueDate"`
	InvoiceNumber       *string       `json:"invoiceNumber"`
	InvoiceDate         *time.Time    `json:"invoiceDate"`
	PaymentMethod       *string       `json:"paymentMethod"`
	IsRecurring         *bool         `json:"isRecurring"`
	RecurrenceFrequency *string       `json:"recurrenceFrequency"`
	Notes               *string       `json:"notes"`
}

type CreateExpenseRequest struct {
	MyCompanyID *snowflake.ID `json:"myCompanyId"`
	EntryFields
	SupplierName *string `json:"supplierName"`
}

type UpdateExpenseRequest struct {
	EntryFields
	SupplierName *string `json:"supplierName"`
}

type CreateIncomeRequest struct {
	MyCompanyID *snowflake.ID `json:"myCompanyId"`
	EntryFields
	ClientID   *snowflake.ID `json:"clientId"`
	ClientName *string       `json:"clientName"`
}

type UpdateIncomeRequest struct {
	EntryFields
	ClientID   *snowflake.ID `json:"clientId"`
	ClientName *string       `json:"clientName"`
}

type ListEntriesRequest struct {
	pagination.Pagination
	MyCompanyID *snowflake.ID `form:"myCompanyId"`
	Status      string        `form:"status"`
	CategoryID  *snowflake.ID `form:"categoryId"`
	AccountID   *snowflake.ID `form:"accountId"`
	ProjectID   *snowflake.ID `form:"projectId"`
	From        *time.Time    `form:"from" time_format:"2006-01-02"`
	To          *time.Time    `form:"to" time_format:"2006-01-02"`
}

type CreateBudgetRequest struct {
	MyCompanyID *snowflake.ID `json:"myCompanyId"`
	Name        string        `json:"name"`
	CategoryID  *snowflake.ID `json:"categoryId"`
	Amount      float64       `json:"amount"`
	PeriodStart time.Time     `json:"periodStart"`
	PeriodEnd   time.Time     `json:"periodEnd"`
	Currency    *string       `json:"currency"`
}

type SummaryRequest struct {
	MyCompanyID *snowflake.ID `form:"myCompanyId"`
	From        *time.Time    `form:"from" time_format:"2006-01-02"`
	To          *time.Time    `form:"to" time_format:"2006-01-02"`
}

var (
	ErrInvalidCompany     = errors.New("invalid_company")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidAccountType = errors.New("invalid_account_type")
	ErrInvalidAccount     = errors.New("invalid_account")
	ErrInvalidCategory    = errors.New("invalid_category")
	ErrInvalidKind        = errors.New("invalid_kind")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidCurrency    = errors.New("invalid_currency")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidPeriod      = errors.New("invalid_period")
	ErrNotFound           = errors.New("not_found")
)
