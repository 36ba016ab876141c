package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/subtrack-cli/subtrack/internal/model"
)

// ErrInvalidWindow is returned when a lookahead window is zero or negative.
var ErrInvalidWindow = fmt.Errorf("lookahead window must be positive")

// dateOnly truncates a time to its calendar day in local time, so the
// window comparison is inclusive on day boundaries.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// UpcomingRenewals returns subscriptions whose next billing date falls
// within [today, today+windowDays], sorted by date then id.
func UpcomingRenewals(subs []model.Subscription, today time.Time, windowDays int) ([]model.Subscription, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, windowDays)
	}
	return selectInWindow(subs, today, windowDays, func(s model.Subscription) (time.Time, bool) {
		return s.NextBillingDate, !s.NextBillingDate.IsZero()
	})
}

// UpcomingTrialEnds returns subscriptions whose trial end date falls
// within [today, today+windowDays]. Subscriptions without a trial end
// date are skipped, never an error.
func UpcomingTrialEnds(subs []model.Subscription, today time.Time, windowDays int) ([]model.Subscription, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, windowDays)
	}
	return selectInWindow(subs, today, windowDays, func(s model.Subscription) (time.Time, bool) {
		if s.TrialEndDate == nil {
			return time.Time{}, false
		}
		return *s.TrialEndDate, true
	})
}

func selectInWindow(
	subs []model.Subscription,
	today time.Time,
	windowDays int,
	dateOf func(model.Subscription) (time.Time, bool),
) ([]model.Subscription, error) {
	start := dateOnly(today)
	end := start.AddDate(0, 0, windowDays)

	type dated struct {
		sub model.Subscription
		on  time.Time
	}

	var hits []dated
	for _, s := range subs {
		when, ok := dateOf(s)
		if !ok {
			continue
		}
		day := dateOnly(when)
		if day.Before(start) || day.After(end) {
			continue
		}
		hits = append(hits, dated{sub: s, on: day})
	}

	// Date ascending, id as the deterministic tie-break.
	sort.Slice(hits, func(i, j int) bool {
		if !hits[i].on.Equal(hits[j].on) {
			return hits[i].on.Before(hits[j].on)
		}
		return hits[i].sub.ID < hits[j].sub.ID
	})

	out := make([]model.Subscription, len(hits))
	for i, h := range hits {
		out[i] = h.sub
	}
	return out, nil
}
