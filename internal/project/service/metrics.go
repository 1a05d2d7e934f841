package service

import (
	"math"
	"time"

	"github.com/verlyx/hub/internal/project/domain"
)

const day = 24 * time.Hour

func isClosed(status string) bool {
	return status == domain.StatusDone || status == domain.StatusCancelled
}

func withMetrics(p domain.Project, now time.Time) domain.WithMetrics {
	out := domain.WithMetrics{Project: p}
	if p.Budget != nil && *p.Budget > 0 {
		profit := *p.Budget - p.SpentAmount
		pct := profit / *p.Budget * 100
		out.Profitability = &profit
		out.ProfitabilityPercentage = &pct
	}
	if p.DueDate != nil && !isClosed(p.Status) {
		out.IsOverdue = p.DueDate.Before(now)
		if !out.IsOverdue {
			days := int(math.Ceil(float64(p.DueDate.Sub(now)) / float64(day)))
			out.DaysRemaining = &days
		}
	}
	return out
}

func computeStats(projects []domain.Project, now time.Time) *domain.Stats {
	stats := &domain.Stats{
		Total:      len(projects),
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
	}
	progress := 0
	for _, p := range projects {
		stats.ByStatus[p.Status]++
		stats.ByPriority[p.Priority]++
		switch {
		case p.Status == domain.StatusDone:
			stats.Completed++
		case p.Status == domain.StatusCancelled:
			stats.Cancelled++
		case !p.IsArchived:
			stats.Active++
		}
		if p.IsArchived {
			stats.Archived++
		}
		if p.DueDate != nil && !isClosed(p.Status) && p.DueDate.Before(now) {
			stats.Overdue++
		}
		if p.Budget != nil {
			stats.TotalBudget += *p.Budget
		}
		stats.TotalSpent += p.SpentAmount
		progress += p.ProgressPercentage
	}
	if len(projects) > 0 {
		stats.AverageProgress = float64(progress) / float64(len(projects))
	}
	if stats.TotalBudget > 0 {
		profit := stats.TotalBudget - stats.TotalSpent
		pct := profit / stats.TotalBudget * 100
		stats.Profitability = &profit
		stats.ProfitabilityPercentage = &pct
	}
	return stats
}
