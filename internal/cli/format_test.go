package cli

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/subtrack-cli/subtrack/internal/model"
)

func TestFormatMoney(t *testing.T) {
	got := FormatMoney(decimal.RequireFromString("9.9"), "USD")
	if got != "9.90 USD" {
		t.Fatalf("FormatMoney = %q, want \"9.90 USD\"", got)
	}
	if got := FormatMoney(decimal.Zero, ""); got != "0.00" {
		t.Fatalf("FormatMoney without currency = %q, want \"0.00\"", got)
	}
}

func TestFormatPeriod(t *testing.T) {
	if got := FormatPeriod(model.PeriodSemiAnnually, 0); got != "semi-annually" {
		t.Fatalf("FormatPeriod = %q, want \"semi-annually\"", got)
	}
	if got := FormatPeriod(model.PeriodCustom, 45); got != "every 45 days" {
		t.Fatalf("FormatPeriod custom = %q, want \"every 45 days\"", got)
	}
}

func TestFormatDaysUntil(t *testing.T) {
	today := time.Date(2026, 3, 1, 15, 0, 0, 0, time.Local)
	cases := []struct {
		target time.Time
		want   string
	}{
		{time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local), "today"},
		{time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local), "tomorrow"},
		{time.Date(2026, 3, 6, 8, 0, 0, 0, time.Local), "in 5d"},
		{time.Date(2026, 2, 28, 8, 0, 0, 0, time.Local), "yesterday"},
		{time.Date(2026, 2, 26, 8, 0, 0, 0, time.Local), "3d ago"},
	}
	for _, tc := range cases {
		if got := FormatDaysUntil(tc.target, today); got != tc.want {
			t.Fatalf("FormatDaysUntil(%v) = %q, want %q", tc.target, got, tc.want)
		}
	}
}
