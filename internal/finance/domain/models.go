package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	AccountCash        = "cash"
	AccountBank        = "bank"
	AccountMercadoPago = "mercadopago"
	AccountStripe      = "stripe"
	AccountPaypal      = "paypal"
	AccountOther       = "other"
)

var AccountTypes = []string{AccountCash, AccountBank, AccountMercadoPago, AccountStripe, AccountPaypal, AccountOther}

const (
	KindExpense = "expense"
	KindIncome  = "income"
)

const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusReceived  = "received"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

var (
	ExpenseStatuses = []string{StatusPending, StatusPaid, StatusOverdue, StatusCancelled}
	IncomeStatuses  = []string{StatusPending, StatusReceived, StatusOverdue, StatusCancelled}
)

const DefaultCurrency = "USD"

type Account struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	MyCompanyID    snowflake.ID `gorm:"not null;index" json:"myCompanyId"`
	Name           string       `gorm:"type:varchar(255);not null" json:"name"`
	Type           string       `gorm:"type:varchar(20);not null" json:"type"`
	Currency       string       `gorm:"type:varchar(3);not null" json:"currency"`
	CurrentBalance float64      `gorm:"type:numeric(14,2);not null;default:0" json:"currentBalance"`
	BankName       *string      `gorm:"type:varchar(255)" json:"bankName"`
	AccountNumber  *string      `gorm:"type:varchar(64)" json:"accountNumber"`
	Color          *string      `gorm:"type:varchar(32)" json:"color"`
	IsActive       bool         `gorm:"not null" json:"isActive"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Account) TableName() string { return "accounts" }

type Category struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	MyCompanyID snowflake.ID `gorm:"not null;index" json:"myCompanyId"`
	Name        string       `gorm:"type:varchar(255);not null" json:"name"`
	Kind        string       `gorm:"type:varchar(10);not null" json:"kind"`
	Color       *string      `gorm:"type:varchar(32)" json:"color"`
	Icon        *string      `gorm:"type:varchar(64)" json:"icon"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (Category) TableName() string { return "finance_categories" }

type Expense struct {
	ID                  snowflake.ID  `gorm:"primaryKey" json:"id"`
	MyCompanyID         snowflake.ID  `gorm:"not null;index" json:"myCompanyId"`
	Amount              float64       `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency            string        `gorm:"type:varchar(3);not null" json:"currency"`
	Description         string        `gorm:"type:text;not null" json:"description"`
	Status              string        `gorm:"type:varchar(20);not null;index" json:"status"`
	CategoryID          *snowflake.ID `gorm:"index" json:"categoryId"`
	AccountID           *snowflake.ID `gorm:"index" json:"accountId"`
	ProjectID           *snowflake.ID `gorm:"index" json:"projectId"`
	SupplierName        *string       `gorm:"type:varchar(255)" json:"supplierName"`
	PaymentDate         *time.Time    `json:"paymentDate"`
	DueDate             *time.Time    `json:"dueDate"`
	InvoiceNumber       *string       `gorm:"type:varchar(64)" json:"invoiceNumber"`
	InvoiceDate         *time.Time    `json:"invoiceDate"`
	PaymentMethod       *string       `gorm:"type:varchar(32)" json:"paymentMethod"`
	IsRecurring         bool          `gorm:"not null;default:false" json:"isRecurring"`
	RecurrenceFrequency *string       `gorm:"type:varchar(20)" json:"recurrenceFrequency"`
	Notes               *string       `gorm:"type:text" json:"notes"`
	CreatedBy           *snowflake.ID `json:"createdBy"`
	CreatedAt           time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt           time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Expense) TableName() string { return "expenses" }

type Income struct {
	ID                  snowflake.ID  `gorm:"primaryKey" json:"id"`
	MyCompanyID         snowflake.ID  `gorm:"not null;index" json:"myCompanyId"`
	Amount              float64       `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency            string        `gorm:"type:varchar(3);not null" json:"currency"`
	Description         string        `gorm:"type:text;not null" json:"description"`
	Status              string        `gorm:"type:varchar(20);not null;index" json:"status"`
	CategoryID          *snowflake.ID `gorm:"index" json:"categoryId"`
	AccountID           *snowflake.ID `gorm:"index" json:"accountId"`
	ProjectID           *snowflake.ID `gorm:"index" json:"projectId"`
	ClientID            *snowflake.ID `json:"clientId"`
	ClientName          *string       `gorm:"type:varchar(255)" json:"clientName"`
	PaymentDate         *time.Time    `json:"paymentDate"`
	DueDate             *time.Time    `json:"dueDate"`
	InvoiceNumber       *string       `gorm:"type:varchar(64)" json:"invoiceNumber"`
	InvoiceDate         *time.Time    `json:"invoiceDate"`
	PaymentMethod       *string       `gorm:"type:varchar(32)" json:"paymentMethod"`
	IsRecurring         bool          `gorm:"not null;default:false" json:"isRecurring"`
	RecurrenceFrequency *string       `gorm:"type:varchar(20)" json:"recurrenceFrequency"`
	Notes               *string       `gorm:"type:text" json:"notes"`
	CreatedBy           *snowflake.ID `json:"createdBy"`
	CreatedAt           time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt           time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Income) TableName() string { return "incomes" }

type Budget struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	MyCompanyID snowflake.ID  `gorm:"not null;index" json:"myCompanyId"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	CategoryID  *snowflake.ID `json:"categoryId"`
	Amount      float64       `gorm:"type:numeric(14,2);not null" json:"amount"`
	PeriodStart time.Time     `gorm:"not null" json:"periodStart"`
	PeriodEnd   time.Time     `gorm:"not null" json:"periodEnd"`
	Currency    string        `gorm:"type:varchar(3);not null" json:"currency"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (Budget) TableName() string { return "budgets" }

// BudgetReport is a budget with its spend over the budget period.
type BudgetReport struct {
	Budget
	Actual    float64 `json:"actual"`
	Remaining float64 `json:"remaining"`
}

type CategoryTotal struct {
	CategoryID *snowflake.ID `json:"categoryId"`
	Name       string        `json:"name"`
	Kind       string        `json:"kind"`
	Total      float64       `json:"total"`
}

type Summary struct {
	TotalIncome     float64         `json:"totalIncome"`
	TotalExpenses   float64         `json:"totalExpenses"`
	Net             float64         `json:"net"`
	PendingIncome   float64         `json:"pendingIncome"`
	PendingExpenses float64         `json:"pendingExpenses"`
	ByCategory      []CategoryTotal `json:"byCategory"`
}

// Entry is the part of an expense or income that moves an account balance.
type Entry struct {
	Status    string
	AccountID *snowflake.ID
	Amount    float64
}

// Settled reports the signed balance change the entry applies to its account.
// Expenses debit when paid, incomes credit when received.
func (e Entry) Settled(kind string) (snowflake.ID, float64, bool) {
	if e.AccountID == nil {
		return 0, 0, false
	}
	switch {
	case kind == KindExpense && e.Status == StatusPaid:
		return *e.AccountID, -e.Amount, true
	case kind == KindIncome && e.Status == StatusReceived:
		return *e.AccountID, e.Amount, true
	}
	return 0, 0, false
}

func (e *Expense) Entry() Entry {
	return Entry{Status: e.Status, AccountID: e.AccountID, Amount: e.Amount}
}

func (i *Income) Entry() Entry {
	return Entry{Status: i.Status, AccountID: i.AccountID, Amount: i.Amount}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func ValidAccountType(t string) bool     { return contains(AccountTypes, t) }
func ValidExpenseStatus(s string) bool   { return contains(ExpenseStatuses, s) }
func ValidIncomeStatus(s string) bool    { return contains(IncomeStatuses, s) }
func ValidCategoryKind(kind string) bool { return kind == KindExpense || kind == KindIncome }
