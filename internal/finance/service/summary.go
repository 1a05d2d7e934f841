package service

import (
	"context"
	"math"
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/finance/domain"
)

const uncategorized = "Uncategorized"

func (s *Service) Summary(ctx context.Context, req domain.SummaryRequest) (*domain.Summary, error) {
	companyID, err := s.company(ctx, req.MyCompanyID, authorization.ActionView)
	if err != nil {
		return nil, err
	}
	filter := domain.EntryFilter{MyCompanyID: companyID, From: req.From, To: req.To}

	expenses, err := s.repo.ExpensesBetween(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	incomes, err := s.repo.IncomesBetween(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.ListCategories(ctx, s.db, companyID, "")
	if err != nil {
		return nil, err
	}
	return summarize(expenses, incomes, categories), nil
}

type categoryKey struct {
	kind string
	id   snowflake.ID
}

// summarize totals settled and open entries. Cancelled entries are ignored.
func summarize(expenses []domain.Expense, incomes []domain.Income, categories []domain.Category) *domain.Summary {
	names := make(map[snowflake.ID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	summary := &domain.Summary{}
	totals := map[categoryKey]*domain.CategoryTotal{}
	add := func(kind string, categoryID *snowflake.ID, amount float64) {
		key := categoryKey{kind: kind}
		if categoryID != nil {
			key.id = *categoryID
		}
		total, ok := totals[key]
		if !ok {
			total = &domain.CategoryTotal{CategoryID: categoryID, Kind: kind, Name: uncategorized}
			if categoryID != nil {
				if name, known := names[*categoryID]; known {
					total.Name = name
				}
			}
			totals[key] = total
		}
		total.Total += amount
	}

	for _, e := range expenses {
		switch e.Status {
		case domain.StatusPaid:
			summary.TotalExpenses += e.Amount
			add(domain.KindExpense, e.CategoryID, e.Amount)
		case domain.StatusPending, domain.StatusOverdue:
			summary.PendingExpenses += e.Amount
		}
	}
	for _, i := range incomes {
		switch i.Status {
		case domain.StatusReceived:
			summary.TotalIncome += i.Amount
			add(domain.KindIncome, i.CategoryID, i.Amount)
		case domain.StatusPending, domain.StatusOverdue:
			summary.PendingIncome += i.Amount
		}
	}

	summary.ByCategory = make([]domain.CategoryTotal, 0, len(totals))
	for _, total := range totals {
		total.Total = round2(total.Total)
		summary.ByCategory = append(summary.ByCategory, *total)
	}
	sort.Slice(summary.ByCategory, func(a, b int) bool {
		x, y := summary.ByCategory[a], summary.ByCategory[b]
		if x.Kind != y.Kind {
			return x.Kind < y.Kind
		}
		if x.Total != y.Total {
			return x.Total > y.Total
		}
		return x.Name < y.Name
	})

	summary.TotalIncome = round2(summary.TotalIncome)
	summary.TotalExpenses = round2(summary.TotalExpenses)
	summary.PendingIncome = round2(summary.PendingIncome)
	summary.PendingExpenses = round2(summary.PendingExpenses)
	summary.Net = round2(summary.TotalIncome - summary.TotalExpenses)
	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
