// Package model defines domain types for subscriptions, categories, and budgets.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingPeriod is the recurring charge cadence.
type BillingPeriod string

const (
	PeriodDaily        BillingPeriod = "daily"
	PeriodWeekly       BillingPeriod = "weekly"
	PeriodMonthly      BillingPeriod = "monthly"
	PeriodQuarterly    BillingPeriod = "quarterly"
	PeriodSemiAnnually BillingPeriod = "semi_annually"
	PeriodAnnually     BillingPeriod = "annually"
	PeriodCustom       BillingPeriod = "custom"
)

// AllPeriods lists every billing period in display order.
var AllPeriods = []BillingPeriod{
	PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly,
	PeriodSemiAnnually, PeriodAnnually, PeriodCustom,
}

// Valid reports whether p is a known billing period.
func (p BillingPeriod) Valid() bool {
	for _, known := range AllPeriods {
		if p == known {
			return true
		}
	}
	return false
}

// Status is the subscription lifecycle state. Transitions are not
// enforced: any status may follow any other.
type Status string

const (
	StatusActive    Status = "active"
	StatusTrial     Status = "trial"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Subscription is one recurring payment tracked by the user.
type Subscription struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Cost             decimal.Decimal `json:"cost"`
	Currency         string          `json:"currency"`
	Period           BillingPeriod   `json:"period"`
	BillingCycleDays int             `json:"billing_cycle_days,omitempty"`
	StartDate        time.Time       `json:"start_date"`
	NextBillingDate  time.Time       `json:"next_billing_date"`
	TrialEndDate     *time.Time      `json:"trial_end_date,omitempty"`
	Status           Status          `json:"status"`

	NotifyEnabled  bool `json:"notify_enabled"`
	NotifyLeadDays int  `json:"notify_lead_days"`

	CategoryID string   `json:"category_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Notes      string   `json:"notes,omitempty"`
	Links      []string `json:"links,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// moneyScale is the fixed scale used for all divided amounts. Division
// rounds half away from zero at this scale so equivalents are stable
// across runs and platforms.
const moneyScale = 4

var (
	weeksPerMonth = decimal.RequireFromString("4.33")
	daysPerMonth  = decimal.NewFromInt(30)
	daysPerYear   = decimal.NewFromInt(365)
	weeksPerYear  = decimal.NewFromInt(52)
	twelve        = decimal.NewFromInt(12)
)

// MonthlyEquivalent converts the subscription cost to a per-month amount
// using fixed period-length constants.
func (s Subscription) MonthlyEquivalent() decimal.Decimal {
	switch s.Period {
	case PeriodDaily:
		return s.Cost.Mul(daysPerMonth)
	case PeriodWeekly:
		return s.Cost.Mul(weeksPerMonth)
	case PeriodMonthly:
		return s.Cost
	case PeriodQuarterly:
		return s.Cost.DivRound(decimal.NewFromInt(3), moneyScale)
	case PeriodSemiAnnually:
		return s.Cost.DivRound(decimal.NewFromInt(6), moneyScale)
	case PeriodAnnually:
		return s.Cost.DivRound(twelve, moneyScale)
	case PeriodCustom:
		if s.BillingCycleDays <= 0 {
			return decimal.Zero
		}
		// TODO: confirm whether custom cycles should convert the day
		// count to months here; this divides by the raw cycle length,
		// matching the app's historical output.
		return s.Cost.DivRound(decimal.NewFromInt(int64(s.BillingCycleDays)), moneyScale)
	default:
		return decimal.Zero
	}
}

// AnnualCost converts the subscription cost to a per-year amount.
func (s Subscription) AnnualCost() decimal.Decimal {
	switch s.Period {
	case PeriodDaily:
		return s.Cost.Mul(daysPerYear)
	case PeriodWeekly:
		return s.Cost.Mul(weeksPerYear)
	case PeriodMonthly:
		return s.Cost.Mul(twelve)
	case PeriodQuarterly:
		return s.Cost.Mul(decimal.NewFromInt(4))
	case PeriodSemiAnnually:
		return s.Cost.Mul(decimal.NewFromInt(2))
	case PeriodAnnually:
		return s.Cost
	case PeriodCustom:
		if s.BillingCycleDays <= 0 {
			return decimal.Zero
		}
		cycles := daysPerYear.DivRound(decimal.NewFromInt(int64(s.BillingCycleDays)), moneyScale)
		return s.Cost.Mul(cycles)
	default:
		return decimal.Zero
	}
}

// OnTrial reports whether the subscription has a trial end date set.
func (s Subscription) OnTrial() bool {
	return s.TrialEndDate != nil
}
