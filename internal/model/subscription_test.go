package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func sub(cost string, period BillingPeriod, cycleDays int) Subscription {
	return Subscription{
		Cost:             decimal.RequireFromString(cost),
		Period:           period,
		BillingCycleDays: cycleDays,
	}
}

func TestMonthlyEquivalent(t *testing.T) {
	cases := []struct {
		name string
		sub  Subscription
		want string
	}{
		{"daily", sub("1", PeriodDaily, 0), "30"},
		{"weekly", sub("10", PeriodWeekly, 0), "43.3"},
		{"monthly", sub("9.99", PeriodMonthly, 0), "9.99"},
		{"quarterly", sub("30", PeriodQuarterly, 0), "10"},
		{"semi_annual", sub("60", PeriodSemiAnnually, 0), "10"},
		{"annual", sub("120", PeriodAnnually, 0), "10"},
		{"annual_rounds", sub("100", PeriodAnnually, 0), "8.3333"},
		{"custom_divides_by_days", sub("90", PeriodCustom, 90), "1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.sub.MonthlyEquivalent()
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("MonthlyEquivalent() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestAnnualCost(t *testing.T) {
	cases := []struct {
		name string
		sub  Subscription
		want string
	}{
		{"daily", sub("1", PeriodDaily, 0), "365"},
		{"weekly", sub("10", PeriodWeekly, 0), "520"},
		{"monthly", sub("9.99", PeriodMonthly, 0), "119.88"},
		{"quarterly", sub("30", PeriodQuarterly, 0), "120"},
		{"semi_annual", sub("60", PeriodSemiAnnually, 0), "120"},
		{"annual", sub("120", PeriodAnnually, 0), "120"},
		{"custom_365_day_cycle", sub("50", PeriodCustom, 365), "50"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.sub.AnnualCost()
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("AnnualCost() = %s, want %s", got, tc.want)
			}
		})
	}
}

// Monthly and annual equivalents must agree through each period's
// documented months-per-year factor.
func TestMonthlyAnnualConsistency(t *testing.T) {
	tolerance := decimal.RequireFromString("0.01")

	cases := []struct {
		period        BillingPeriod
		cycleDays     int
		monthsPerYear string
	}{
		{PeriodMonthly, 0, "12"},
		{PeriodQuarterly, 0, "12"},
		{PeriodSemiAnnually, 0, "12"},
		{PeriodAnnually, 0, "12"},
	}

	for _, tc := range cases {
		s := sub("47.52", tc.period, tc.cycleDays)
		monthly := s.MonthlyEquivalent().Mul(decimal.RequireFromString(tc.monthsPerYear))
		annual := s.AnnualCost()
		if monthly.Sub(annual).Abs().GreaterThan(tolerance) {
			t.Fatalf("period %s: monthly*12 = %s, annual = %s", tc.period, monthly, annual)
		}
	}

	// Monthly must be exact, not approximate.
	s := sub("13.37", PeriodMonthly, 0)
	if !s.MonthlyEquivalent().Mul(decimal.NewFromInt(12)).Equal(s.AnnualCost()) {
		t.Fatal("monthly subscription: monthly*12 != annual")
	}
}

func TestCustomPeriodZeroCycle(t *testing.T) {
	s := sub("10", PeriodCustom, 0)
	if !s.MonthlyEquivalent().IsZero() {
		t.Fatalf("MonthlyEquivalent() with zero cycle = %s, want 0", s.MonthlyEquivalent())
	}
	if !s.AnnualCost().IsZero() {
		t.Fatalf("AnnualCost() with zero cycle = %s, want 0", s.AnnualCost())
	}
}

func TestBudgetMatches(t *testing.T) {
	streaming := Subscription{ID: "s1", CategoryID: "cat-streaming"}
	music := Subscription{ID: "s2", CategoryID: "cat-music"}

	unrestricted := Budget{}
	if !unrestricted.Matches(streaming) || !unrestricted.Matches(music) {
		t.Fatal("budget with no allow-lists should match everything")
	}

	byCategory := Budget{CategoryIDs: []string{"cat-streaming"}}
	if !byCategory.Matches(streaming) {
		t.Fatal("category allow-list should match by category")
	}
	if byCategory.Matches(music) {
		t.Fatal("category allow-list should exclude other categories")
	}

	// OR across axes: s2 is outside the category list but named directly.
	either := Budget{CategoryIDs: []string{"cat-streaming"}, SubscriptionIDs: []string{"s2"}}
	if !either.Matches(streaming) {
		t.Fatal("subscription matching only the category list should count")
	}
	if !either.Matches(music) {
		t.Fatal("subscription matching only the subscription list should count")
	}
}
