package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verlyx/hub/internal/project/domain"
)

func floatPtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestWithMetrics(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name          string
		project       domain.Project
		overdue       bool
		daysRemaining *int
		profit        *float64
		profitPct     *float64
	}{
		{
			name:      "profitability",
			project:   domain.Project{Status: domain.StatusInProgress, Budget: floatPtr(1000), SpentAmount: 250},
			profit:    floatPtr(750),
			profitPct: floatPtr(75),
		},
		{
			name:    "overdue",
			project: domain.Project{Status: domain.StatusInProgress, DueDate: timePtr(now.Add(-time.Hour))},
			overdue: true,
		},
		{
			name:    "done is never overdue",
			project: domain.Project{Status: domain.StatusDone, DueDate: timePtr(now.Add(-48 * time.Hour))},
		},
		{
			name:          "days remaining rounds up",
			project:       domain.Project{Status: domain.StatusPlanning, DueDate: timePtr(now.Add(36 * time.Hour))},
			daysRemaining: intPtr(2),
		},
		{
			name:    "zero budget has no profitability",
			project: domain.Project{Status: domain.StatusBacklog, Budget: floatPtr(0)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := withMetrics(tc.project, now)
			assert.Equal(t, tc.overdue, got.IsOverdue)
			assert.Equal(t, tc.daysRemaining, got.DaysRemaining)
			assert.Equal(t, tc.profit, got.Profitability)
			assert.Equal(t, tc.profitPct, got.ProfitabilityPercentage)
		})
	}
}

func intPtr(v int) *int { return &v }

func TestComputeStats(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	projects := []domain.Project{
		{Status: domain.StatusInProgress, Priority: domain.PriorityHigh, Budget: floatPtr(1000), SpentAmount: 400, ProgressPercentage: 50, DueDate: timePtr(now.Add(-time.Hour))},
		{Status: domain.StatusDone, Priority: domain.PriorityHigh, Budget: floatPtr(500), SpentAmount: 600, ProgressPercentage: 100},
		{Status: domain.StatusCancelled, Priority: domain.PriorityLow, ProgressPercentage: 0},
		{Status: domain.StatusBacklog, Priority: domain.PriorityMedium, IsArchived: true, ProgressPercentage: 10},
	}

	stats := computeStats(projects, now)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, 1, stats.Archived)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, map[string]int{"in_progress": 1, "done": 1, "cancelled": 1, "backlog": 1}, stats.ByStatus)
	assert.Equal(t, 2, stats.ByPriority["high"])
	assert.Equal(t, 1500.0, stats.TotalBudget)
	assert.Equal(t, 1000.0, stats.TotalSpent)
	assert.Equal(t, 40.0, stats.AverageProgress)
	require.NotNil(t, stats.Profitability)
	assert.Equal(t, 500.0, *stats.Profitability)
	assert.InDelta(t, 33.333, *stats.ProfitabilityPercentage, 0.01)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := computeStats(nil, time.Now())
	assert.Equal(t, 0, stats.Total)
	assert.Zero(t, stats.AverageProgress)
	assert.Nil(t, stats.Profitability)
}
