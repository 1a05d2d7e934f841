package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/finance/domain"
	"github.com/verlyx/hub/internal/finance/repository"
	"github.com/verlyx/hub/pkg/db"
	"github.com/verlyx/hub/pkg/db/pagination"
	"go.uber.org/zap/zaptest"
)

func newService(t *testing.T, authz authorization.Service) (domain.Service, context.Context) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Account{}, &domain.Category{}, &domain.Expense{}, &domain.Income{}, &domain.Budget{},
	))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Repo:  repository.Provide(),
		Authz: authz,
		Clock: clock.NewFakeClock(time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)),
	})
	ctx := companycontext.WithCompanyID(companycontext.WithUserID(context.Background(), 4), 900)
	return svc, ctx
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }

func day(d int) *time.Time {
	t := time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func balance(t *testing.T, svc domain.Service, ctx context.Context, id snowflake.ID) float64 {
	t.Helper()
	accounts, err := svc.ListAccounts(ctx, nil)
	require.NoError(t, err)
	for _, a := range accounts {
		if a.ID == id {
			return a.CurrentBalance
		}
	}
	t.Fatalf("account %s not listed", id)
	return 0
}

func TestAccountDefaults(t *testing.T) {
	svc, ctx := newService(t, authorization.Static{})

	account, err := svc.CreateAccount(ctx, domain.CreateAccountRequest{Name: "Caja", Type: "cash"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCurrency, account.Currency)
	assert.True(t, account.IsActive)

	_, err = svc.CreateAccount(ctx, domain.CreateAccountRequest{Name: "Vault", Type: "crypto"})
	assert.ErrorIs(t, err, domain.ErrInvalidAccountType)
}

func TestPaidExpenseDebitsAccount(t *testing.T) {
	svc, ctx := newService(t, authorization.Static{})
	account, err := svc.CreateAccount(ctx, domain.CreateAccountRequest{Name: "Bank", Type: "bank", CurrentBalance: floatPtr(1000)})
	require.NoError(t, err)

	expense, err := svc.CreateExpense(ctx, domain.CreateExpenseRequest{EntryFields: domain.EntryFields{
		Amount:      floatPtr(200),
		Description: strPtr("Hosting"),
		AccountID:   &account.ID,
	}})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, expense.Status)
	assert.Equal(t, 1000.0, balance(t, svc, ctx, account.ID))

	_, err = svc.UpdateExpense(ctx, expense.ID, domain.UpdateExpenseRequest{EntryFields: domain.EntryFields{Status: strPtr("paid")}})
	require.NoError(t, err)
	assert.Equal(t, 800.0, balance(t, svc, ctx, account.ID))

	_, err = svc.UpdateExpense(ctx, expense.ID, domain.UpdateExpenseRequest{EntryFields: domain.EntryFields{Amount: floatPtr(250)}})
	require.NoError(t, err)
	assert.Equal(t, 750.0, balance(t, svc, ctx, account.ID))

	require.NoError(t, svc.DeleteExpense(ctx, expense.ID))
	assert.Equal(t, 1000.0, balance(t, svc, ctx, account.ID))
}

func TestReceivedIncomeCreditsAccount(t *testing.T) {
	svc, ctx := newService(t, authorization.Static{})
	account, err := svc.CreateAccount(ctx, domain.CreateAccountRequest{Name: "MP", Type: "mercadopago"})
	require.NoError(t, err)

	income, err := svc.CreateIncome(ctx, domain.CreateIncomeRequest{EntryFields: domain.EntryFields{
		Amount:      floatPtr(500),
		Description: strPtr("Retainer"),
		Status:      strPtr("received"),
		AccountID:   &account.ID,
	}})
	require.NoError(t, err)
	assert.Equal(t, 500.0, balance(t, svc, ctx, account.ID))

	_, err = svc.UpdateIncome(ctx, income.ID, domain.UpdateIncomeRequest{EntryFields: domain.EntryFields{Status: strPtr("cancelled")}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance(t, svc, ctx, account.ID))

	_, err = svc.CreateIncome(ctx, domain.CreateIncomeRequest{EntryFields: domain.EntryFields{
		Amount:      floatPtr(10),
		Description: strPtr("Wrong status"),
		Status:      strPtr("paid"),
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestEntryValidation(t *testing.T) {
	svc, ctx := newService(t, authorization.Static{})

	_, err := svc.CreateExpense(ctx, domain.CreateExpenseRequest{EntryFields: domain.EntryFields{Amount: floatPtr(0), Description: strPtr("x")}})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = svc.CreateExpense(ctx, domain.CreateExpenseRequest{EntryFields: domain.EntryFields{Amount: floatPtr(5)}})
	assert.ErrorIs(t, err, domain.ErrInvalidDescription)

	foreign := snowflake.ID(123456)
	_, err = svc.CreateExpense(ctx, domain.CreateExpenseRequest{EntryFields: domain.EntryFields{
		Amount: floatPtr(5), Description: strPtr("x"), AccountID: &foreign,
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidAccount)

	income, err := svc.CreateCategory(ctx, domain.CreateCategoryRequest{Name: "Sales", Kind: "income"})
	require.NoError(t, err)
	_, err = svc.CreateExpense(ctx, domain.CreateExpenseRequest{EntryFields: domain.EntryFields{
		Amount: floatPtr(5), Description: strPtr("x"), CategoryID: &income.ID,
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestListExpensesFilters(t *testing.T) {
	svc, ctx := newService(t, authorization.Static{})
	for i, status := range []string{"paid", "pending", "paid"} {
		_, err := svc.CreateExpense(ctx, domain.CreateExpenseRequest{EntryFields: domain.EntryFields{
			Amount:      floatPtr(float64(10 * (i + 1))),
			Description: strPtr("item"),
			Status:      strPtr(status),
			PaymentDate: day(10 * (i + 1) % 30),
		}})
		require.NoError(t, err)
	}

	page, err := svc.ListExpenses(ctx, domain.ListEntriesRequest{Status: "paid"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Meta.Total)

	page, err = svc.ListExpenses(ctx, domain.ListEntriesRequest{From: day(15), To: day(25)})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 20.0, page.Data[0].Amount)

	page, err = svc.ListExpenses(ctx, domain.ListEntriesRequest{Pagination: pagination.Pagination{Limit: 1}})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 3, page.Meta.TotalPages)
}

func TestBudgetReportsActualAndRemaining(t *testing.T) {
	svc, ctx := newService(t, authorization.Static{})
	marketing, err := svc.CreateCategory(ctx, domain.CreateCategoryRequest{Name: "Marketing", Kind: "expense"})
	require.NoError(t, err)

	_, err = svc.CreateBudget(ctx, domain.CreateBudgetRequest{
		Name: "June ads", CategoryID: &marketing.ID, Amount: 1000, PeriodStart: *day(1), PeriodEnd: *day(30),
	})
	require.NoError(t, err)

	create := func(amount float64, status string, date *time.Time) {
		_, err := svc.CreateExpense(ctx, domain.CreateExpenseRequest{EntryFields: domain.EntryFields{
			Amount: &amount, Description: strPtr("ads"), Status: &status, CategoryID: &marketing.ID, PaymentDate: date,
		}})
		require.NoError(t, err)
	}
	create(300, "paid", day(5))
	create(150.5, "paid", day(20))
	create(700, "pending", day(21))
	out := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	create(90, "paid", &out)

	reports, err := svc.ListBudgets(ctx, nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 450.5, reports[0].Actual)
	assert.Equal(t, 549.5, reports[0].Remaining)

	_, err = svc.CreateBudget(ctx, domain.CreateBudgetRequest{Name: "Bad", Amount: 10, PeriodStart: *day(10), PeriodEnd: *day(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestFinanceRequiresPermission(t *testing.T) {
	svc, ctx := newService(t, authorization.Static{Err: authorization.ErrForbidden})

	_, err := svc.ListAccounts(ctx, nil)
	assert.ErrorIs(t, err, authorization.ErrForbidden)
	_, err = svc.Summary(ctx, domain.SummaryRequest{})
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	_, err = svc.ListAccounts(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)
}
