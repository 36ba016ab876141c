// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/subtrack-cli/subtrack/internal/model"
)

// FormatMoney formats an amount with its currency code, two fractional
// digits. e.g., 9.99 USD -> "9.99 USD".
func FormatMoney(amount decimal.Decimal, currency string) string {
	if currency == "" {
		return amount.StringFixed(2)
	}
	return amount.StringFixed(2) + " " + currency
}

// FormatPeriod renders a billing period for display.
// e.g., "monthly", "every 45 days".
func FormatPeriod(period model.BillingPeriod, cycleDays int) string {
	if period == model.PeriodCustom {
		return fmt.Sprintf("every %d days", cycleDays)
	}
	return strings.ReplaceAll(string(period), "_", "-")
}

// FormatDate renders a date as 2006-01-02, or "-" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// FormatDaysUntil renders the distance to a date from today.
// e.g., "today", "tomorrow", "in 5d", "3d ago".
func FormatDaysUntil(t time.Time, today time.Time) string {
	day := func(x time.Time) time.Time {
		y, m, d := x.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, x.Location())
	}
	days := int(day(t).Sub(day(today)).Hours() / 24)

	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days > 1:
		return fmt.Sprintf("in %dd", days)
	case days == -1:
		return "yesterday"
	default:
		return fmt.Sprintf("%dd ago", -days)
	}
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatStatus renders a subscription status for display.
func FormatStatus(s model.Status) string {
	return string(s)
}
