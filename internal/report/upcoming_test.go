package report

import (
	"errors"
	"testing"
	"time"

	"github.com/subtrack-cli/subtrack/internal/model"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func billingSub(id, next string, t *testing.T) model.Subscription {
	return model.Subscription{ID: id, NextBillingDate: mustDay(t, next)}
}

func TestUpcomingRenewalsWindow(t *testing.T) {
	today := mustDay(t, "2026-03-01")
	subs := []model.Subscription{
		billingSub("in5", "2026-03-06", t),
		billingSub("in8", "2026-03-09", t),
		billingSub("today", "2026-03-01", t),
		billingSub("boundary", "2026-03-08", t),
		billingSub("past", "2026-02-27", t),
	}

	got, err := UpcomingRenewals(subs, today, 7)
	if err != nil {
		t.Fatalf("UpcomingRenewals: %v", err)
	}

	want := []string{"today", "in5", "boundary"}
	if len(got) != len(want) {
		t.Fatalf("got %d subscriptions, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("result[%d] = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestUpcomingRenewalsInvalidWindow(t *testing.T) {
	today := mustDay(t, "2026-03-01")
	for _, days := range []int{0, -3} {
		_, err := UpcomingRenewals(nil, today, days)
		if !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("window %d: err = %v, want ErrInvalidWindow", days, err)
		}
	}
}

func TestUpcomingRenewalsTieBreakByID(t *testing.T) {
	today := mustDay(t, "2026-03-01")
	subs := []model.Subscription{
		billingSub("zeta", "2026-03-03", t),
		billingSub("alpha", "2026-03-03", t),
	}

	got, err := UpcomingRenewals(subs, today, 7)
	if err != nil {
		t.Fatalf("UpcomingRenewals: %v", err)
	}
	if got[0].ID != "alpha" || got[1].ID != "zeta" {
		t.Fatalf("tie order = [%s, %s], want [alpha, zeta]", got[0].ID, got[1].ID)
	}
}

func TestUpcomingTrialEndsSkipsMissingDates(t *testing.T) {
	today := mustDay(t, "2026-03-01")
	ends := mustDay(t, "2026-03-04")
	subs := []model.Subscription{
		{ID: "trialing", TrialEndDate: &ends},
		{ID: "no-trial", NextBillingDate: mustDay(t, "2026-03-02")},
	}

	got, err := UpcomingTrialEnds(subs, today, 7)
	if err != nil {
		t.Fatalf("UpcomingTrialEnds: %v", err)
	}
	if len(got) != 1 || got[0].ID != "trialing" {
		t.Fatalf("got %v, want only the trialing subscription", got)
	}
}
