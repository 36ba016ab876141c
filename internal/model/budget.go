package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps monthly spend across a set of subscriptions. The two
// allow-lists are alternatives: a subscription counts toward the budget
// if it matches either one, and an empty list matches everything on
// that axis.
type Budget struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	Currency     string          `json:"currency"`

	CategoryIDs     []string `json:"category_ids,omitempty"`
	SubscriptionIDs []string `json:"subscription_ids,omitempty"`

	NotifyEnabled   bool    `json:"notify_enabled"`
	NotifyThreshold float64 `json:"notify_threshold"` // fraction of limit, 0.0-1.0

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultNotifyThreshold is the alert fraction applied when none is set.
const DefaultNotifyThreshold = 0.8

// Matches reports whether the subscription counts toward this budget.
// With both allow-lists empty the budget is unrestricted. Otherwise the
// subscription matches if it appears in either list (OR, not AND).
func (b Budget) Matches(s Subscription) bool {
	if len(b.CategoryIDs) == 0 && len(b.SubscriptionIDs) == 0 {
		return true
	}
	for _, id := range b.SubscriptionIDs {
		if id == s.ID {
			return true
		}
	}
	for _, id := range b.CategoryIDs {
		if id == s.CategoryID {
			return true
		}
	}
	return false
}
