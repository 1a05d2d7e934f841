package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/finance/domain"
)

func (s *Service) CreateBudget(ctx context.Context, req domain.CreateBudgetRequest) (*domain.Budget, error) {
	companyID, err := s.company(ctx, req.MyCompanyID, authorization.ActionManage)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if req.PeriodStart.IsZero() || req.PeriodEnd.Before(req.PeriodStart) {
		return nil, domain.ErrInvalidPeriod
	}
	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	if err := s.checkLinks(ctx, s.db, companyID, domain.KindExpense, nil, req.CategoryID); err != nil {
		return nil, err
	}

	budget := &domain.Budget{
		ID:          s.genID.Generate(),
		MyCompanyID: companyID,
		Name:        name,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Currency:    currency,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.InsertBudget(ctx, s.db, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *Service) ListBudgets(ctx context.Context, companyID *snowflake.ID) ([]domain.BudgetReport, error) {
	resolved, err := s.company(ctx, companyID, authorization.ActionView)
	if err != nil {
		return nil, err
	}
	budgets, err := s.repo.ListBudgets(ctx, s.db, resolved)
	if err != nil {
		return nil, err
	}
	reports := make([]domain.BudgetReport, 0, len(budgets))
	for _, budget := range budgets {
		actual, err := s.repo.PaidExpenses(ctx, s.db, resolved, budget.CategoryID, budget.PeriodStart, budget.PeriodEnd)
		if err != nil {
			return nil, err
		}
		reports = append(reports, domain.BudgetReport{
			Budget:    budget,
			Actual:    round2(actual),
			Remaining: round2(budget.Amount - actual),
		})
	}
	return reports, nil
}

func (s *Service) DeleteBudget(ctx context.Context, id snowflake.ID) error {
	budget, err := s.repo.FindBudget(ctx, s.db, id)
	if err != nil {
		return err
	}
	if budget == nil {
		return domain.ErrNotFound
	}
	if err := s.require(ctx, budget.MyCompanyID, authorization.ActionManage); err != nil {
		return err
	}
	return s.repo.DeleteBudget(ctx, s.db, budget.ID)
}
