// Package report computes spending summaries and upcoming-renewal views
// over the subscription set.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/subtrack-cli/subtrack/internal/model"
)

// SummaryStats holds the top-level spend aggregate across subscriptions.
type SummaryStats struct {
	TotalSubscriptions int
	ActiveCount        int
	TrialCount         int
	PausedCount        int

	MonthlyTotal decimal.Decimal
	AnnualTotal  decimal.Decimal
}

// CategoryStats holds aggregated spend for a single category.
type CategoryStats struct {
	CategoryID   string
	CategoryName string
	Count        int
	MonthlyTotal decimal.Decimal
	SharePercent float64
}

// BudgetStatus holds a budget's limit against current matched spending.
type BudgetStatus struct {
	Budget       model.Budget
	CurrentSpend decimal.Decimal
	UsedFraction float64
	OverLimit    bool
	AlertReached bool
}

// countsTowardSpend reports whether a subscription contributes to spend
// totals. Cancelled and expired subscriptions are kept for history but
// cost nothing going forward.
func countsTowardSpend(s model.Subscription) bool {
	return s.Status == model.StatusActive || s.Status == model.StatusTrial
}

// Aggregate computes summary statistics over the full subscription set.
func Aggregate(subs []model.Subscription) SummaryStats {
	stats := SummaryStats{
		MonthlyTotal: decimal.Zero,
		AnnualTotal:  decimal.Zero,
	}

	for _, s := range subs {
		stats.TotalSubscriptions++
		switch s.Status {
		case model.StatusActive:
			stats.ActiveCount++
		case model.StatusTrial:
			stats.TrialCount++
		case model.StatusPaused:
			stats.PausedCount++
		}

		if countsTowardSpend(s) {
			stats.MonthlyTotal = stats.MonthlyTotal.Add(s.MonthlyEquivalent())
			stats.AnnualTotal = stats.AnnualTotal.Add(s.AnnualCost())
		}
	}

	return stats
}

// AggregateByCategory computes per-category monthly spend, sorted by
// spend descending. Subscriptions without a category land in an
// "uncategorized" row with an empty CategoryID.
func AggregateByCategory(subs []model.Subscription, categories []model.Category) []CategoryStats {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	byCat := make(map[string]*CategoryStats)
	total := decimal.Zero

	for _, s := range subs {
		if !countsTowardSpend(s) {
			continue
		}
		row, ok := byCat[s.CategoryID]
		if !ok {
			name := names[s.CategoryID]
			if s.CategoryID == "" {
				name = "Uncategorized"
			}
			row = &CategoryStats{
				CategoryID:   s.CategoryID,
				CategoryName: name,
				MonthlyTotal: decimal.Zero,
			}
			byCat[s.CategoryID] = row
		}
		row.Count++
		monthly := s.MonthlyEquivalent()
		row.MonthlyTotal = row.MonthlyTotal.Add(monthly)
		total = total.Add(monthly)
	}

	rows := make([]CategoryStats, 0, len(byCat))
	for _, row := range byCat {
		if total.IsPositive() {
			share, _ := row.MonthlyTotal.Div(total).Float64()
			row.SharePercent = share * 100
		}
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].MonthlyTotal.Equal(rows[j].MonthlyTotal) {
			return rows[i].MonthlyTotal.GreaterThan(rows[j].MonthlyTotal)
		}
		return rows[i].CategoryID < rows[j].CategoryID
	})

	return rows
}

// BudgetReport computes each budget's current spend from the matched
// subscriptions' monthly equivalents.
func BudgetReport(budgets []model.Budget, subs []model.Subscription) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spend := decimal.Zero
		for _, s := range subs {
			if countsTowardSpend(s) && b.Matches(s) {
				spend = spend.Add(s.MonthlyEquivalent())
			}
		}

		status := BudgetStatus{Budget: b, CurrentSpend: spend}
		if b.MonthlyLimit.IsPositive() {
			frac, _ := spend.Div(b.MonthlyLimit).Float64()
			status.UsedFraction = frac
			status.OverLimit = spend.GreaterThan(b.MonthlyLimit)

			threshold := b.NotifyThreshold
			if threshold <= 0 {
				threshold = model.DefaultNotifyThreshold
			}
			status.AlertReached = frac >= threshold
		}
		out = append(out, status)
	}
	return out
}
