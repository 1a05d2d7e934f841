package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	financedomain "github.com/verlyx/hub/internal/finance/domain"
)

func (s *Server) ListAccounts(c *gin.Context) {
	companyID, ok := queryID(c, "myCompanyId")
	if !ok {
		return
	}

	accounts, err := s.financeSvc.ListAccounts(c.Request.Context(), companyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, accounts)
}

func (s *Server) CreateAccount(c *gin.Context) {
	var req financedomain.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	account, err := s.financeSvc.CreateAccount(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (s *Server) UpdateAccount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req financedomain.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	account, err := s.financeSvc.UpdateAccount(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (s *Server) DeleteAccount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.financeSvc.DeleteAccount(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

func (s *Server) ListCategories(c *gin.Context) {
	companyID, ok := queryID(c, "myCompanyId")
	if !ok {
		return
	}

	categories, err := s.financeSvc.ListCategories(c.Request.Context(), companyID, strings.TrimSpace(c.Query("kind")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (s *Server) CreateCategory(c *gin.Context) {
	var req financedomain.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	category, err := s.financeSvc.CreateCategory(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (s *Server) ListExpenses(c *gin.Context) {
	var req financedomain.ListEntriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	page, err := s.financeSvc.ListExpenses(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (s *Server) CreateExpense(c *gin.Context) {
	var req financedomain.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	expense, err := s.financeSvc.CreateExpense(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, expense)
}

func (s *Server) GetExpense(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	expense, err := s.financeSvc.GetExpense(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, expense)
}

func (s *Server) UpdateExpense(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req financedomain.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	expense, err := s.financeSvc.UpdateExpense(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, expense)
}

func (s *Server) DeleteExpense(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.financeSvc.DeleteExpense(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

func (s *Server) ListIncomes(c *gin.Context) {
	var req financedomain.ListEntriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	page, err := s.financeSvc.ListIncomes(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (s *Server) CreateIncome(c *gin.Context) {
	var req financedomain.CreateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	income, err := s.financeSvc.CreateIncome(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, income)
}

func (s *Server) GetIncome(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	income, err := s.financeSvc.GetIncome(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, income)
}

func (s *Server) UpdateIncome(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req financedomain.UpdateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	income, err := s.financeSvc.UpdateIncome(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, income)
}

func (s *Server) DeleteIncome(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.financeSvc.DeleteIncome(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Income deleted successfully"})
}

func (s *Server) ListBudgets(c *gin.Context) {
	companyID, ok := queryID(c, "myCompanyId")
	if !ok {
		return
	}

	budgets, err := s.financeSvc.ListBudgets(c.Request.Context(), companyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budgets)
}

func (s *Server) CreateBudget(c *gin.Context) {
	var req financedomain.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	budget, err := s.financeSvc.CreateBudget(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, budget)
}

func (s *Server) DeleteBudget(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.financeSvc.DeleteBudget(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

func (s *Server) GetFinanceSummary(c *gin.Context) {
	var req financedomain.SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	summary, err := s.financeSvc.Summary(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func isFinanceValidationError(err error) bool {
	switch {
	case errors.Is(err, financedomain.ErrInvalidCompany),
		errors.Is(err, financedomain.ErrInvalidName),
		errors.Is(err, financedomain.ErrInvalidAccountType),
		errors.Is(err, financedomain.ErrInvalidAccount),
		errors.Is(err, financedomain.ErrInvalidCategory),
		errors.Is(err, financedomain.ErrInvalidKind),
		errors.Is(err, financedomain.ErrInvalidAmount),
		errors.Is(err, financedomain.ErrInvalidCurrency),
		errors.Is(err, financedomain.ErrInvalidDescription),
		errors.Is(err, financedomain.ErrInvalidStatus),
		errors.Is(err, financedomain.ErrInvalidPeriod):
		return true
	default:
		return false
	}
}
