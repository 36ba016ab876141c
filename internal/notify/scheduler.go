// Package notify schedules renewal and trial-ending reminders through
// one of two strategies: precise in-process timers when available, or a
// durable deferred queue polled by the daemon.
package notify

import (
	"fmt"
	"time"

	"github.com/subtrack-cli/subtrack/internal/model"
)

// fireHour is the local wall-clock hour reminders fire at.
const fireHour = 9

// Request describes one reminder to schedule.
type Request struct {
	SubscriptionID   string
	SubscriptionName string
	Kind             model.NotificationKind
	FireAt           time.Time
}

// Strategy is one scheduling backend. Cancel must be idempotent.
type Strategy interface {
	Schedule(req Request) error
	Cancel(subscriptionID string, kind model.NotificationKind) error
}

// Capabilities reports what the platform can do right now. Probed on
// every schedule call, never cached: exact-timer availability can
// change while the app runs.
type Capabilities interface {
	ExactTimersAvailable() bool
}

// Presenter receives the payload when a reminder fires. Presentation
// itself (OS notification, terminal bell) is outside the core.
type Presenter interface {
	Present(n model.Notification)
}

// BatchResult aggregates a schedule-all or cancel-all run.
type BatchResult struct {
	Succeeded int
	Failed    int
	LastErr   error
}

// Err returns the overall outcome: batches fail only when every item
// failed.
func (r BatchResult) Err() error {
	if r.Failed > 0 && r.Succeeded == 0 {
		return fmt.Errorf("notify: all %d operations failed: %w", r.Failed, r.LastErr)
	}
	return nil
}

// Scheduler routes schedule/cancel calls to the available strategy.
type Scheduler struct {
	caps     Capabilities
	exact    Strategy
	deferred Strategy
	now      func() time.Time
}

// NewScheduler wires the two strategies behind one front.
func NewScheduler(caps Capabilities, exact, deferred Strategy) *Scheduler {
	return &Scheduler{caps: caps, exact: exact, deferred: deferred, now: time.Now}
}

// FireTime computes when a reminder for targetDate should fire: leadDays
// before, at 09:00 local time.
func FireTime(targetDate time.Time, leadDays int) time.Time {
	day := targetDate.AddDate(0, 0, -leadDays)
	y, m, d := day.Date()
	return time.Date(y, m, d, fireHour, 0, 0, 0, time.Local)
}

// ScheduleRenewal schedules the renewal reminder for a subscription.
// Disabled notifications and fire times already in the past are silent
// successes: nothing is scheduled and nothing fires.
func (s *Scheduler) ScheduleRenewal(sub model.Subscription) error {
	return s.schedule(sub, model.KindRenewal, sub.NextBillingDate)
}

// ScheduleTrialEnding schedules the trial-ending reminder. A
// subscription without a trial end date is a no-op.
func (s *Scheduler) ScheduleTrialEnding(sub model.Subscription) error {
	if sub.TrialEndDate == nil {
		return nil
	}
	return s.schedule(sub, model.KindTrialEnding, *sub.TrialEndDate)
}

func (s *Scheduler) schedule(sub model.Subscription, kind model.NotificationKind, target time.Time) (err error) {
	// Scheduling failures surface as results, never as panics taking
	// down the caller.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notify: scheduling %s/%s: %v", sub.ID, kind, r)
		}
	}()

	if !sub.NotifyEnabled {
		return nil
	}
	if target.IsZero() {
		return nil
	}

	fireAt := FireTime(target, sub.NotifyLeadDays)
	if fireAt.Before(s.now()) {
		// Past-due reminders are skipped, not fired immediately.
		return nil
	}

	req := Request{
		SubscriptionID:   sub.ID,
		SubscriptionName: sub.Name,
		Kind:             kind,
		FireAt:           fireAt,
	}

	strategy := s.deferred
	if s.caps.ExactTimersAvailable() {
		strategy = s.exact
	}
	if schedErr := strategy.Schedule(req); schedErr != nil {
		return fmt.Errorf("notify: scheduling %s/%s: %w", sub.ID, kind, schedErr)
	}
	return nil
}

// Cancel removes any pending reminder for the pair, on both strategies,
// regardless of which one originally scheduled it. Cancelling something
// never scheduled succeeds.
func (s *Scheduler) Cancel(subscriptionID string, kind model.NotificationKind) error {
	exactErr := s.exact.Cancel(subscriptionID, kind)
	deferredErr := s.deferred.Cancel(subscriptionID, kind)
	if exactErr != nil {
		return fmt.Errorf("notify: cancelling %s/%s: %w", subscriptionID, kind, exactErr)
	}
	if deferredErr != nil {
		return fmt.Errorf("notify: cancelling %s/%s: %w", subscriptionID, kind, deferredErr)
	}
	return nil
}

// CancelAll removes both reminder kinds for a subscription.
func (s *Scheduler) CancelAll(subscriptionID string) error {
	if err := s.Cancel(subscriptionID, model.KindRenewal); err != nil {
		return err
	}
	return s.Cancel(subscriptionID, model.KindTrialEnding)
}

// Reschedule cancels then re-schedules both reminder kinds from current
// subscription data. The cancel completes before the new schedule so a
// field change can never leave two pending reminders for one pair.
func (s *Scheduler) Reschedule(sub model.Subscription) error {
	if err := s.CancelAll(sub.ID); err != nil {
		return err
	}
	if err := s.ScheduleRenewal(sub); err != nil {
		return err
	}
	return s.ScheduleTrialEnding(sub)
}

// ScheduleAllRenewals schedules renewal reminders for every
// subscription, continuing past individual failures.
func (s *Scheduler) ScheduleAllRenewals(subs []model.Subscription) BatchResult {
	var res BatchResult
	for _, sub := range subs {
		if err := s.ScheduleRenewal(sub); err != nil {
			res.Failed++
			res.LastErr = err
			continue
		}
		res.Succeeded++
	}
	return res
}

// CancelEverything removes all reminders for the given subscriptions,
// continuing past individual failures.
func (s *Scheduler) CancelEverything(subs []model.Subscription) BatchResult {
	var res BatchResult
	for _, sub := range subs {
		if err := s.CancelAll(sub.ID); err != nil {
			res.Failed++
			res.LastErr = err
			continue
		}
		res.Succeeded++
	}
	return res
}
