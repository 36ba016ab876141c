package notify

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/subtrack-cli/subtrack/internal/model"
)

type recordingStrategy struct {
	mu        sync.Mutex
	scheduled []Request
	cancelled []timerKey
	failWith  error
}

func (r *recordingStrategy) Schedule(req Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.scheduled = append(r.scheduled, req)
	return nil
}

func (r *recordingStrategy) Cancel(subID string, kind model.NotificationKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.cancelled = append(r.cancelled, timerKey{subID: subID, kind: kind})
	return nil
}

type nopPresenter struct{}

func (nopPresenter) Present(model.Notification) {}

func notifyingSub(id string, next time.Time) model.Subscription {
	return model.Subscription{
		ID:              id,
		Name:            "Streamly",
		NextBillingDate: next,
		NotifyEnabled:   true,
		NotifyLeadDays:  3,
		Status:          model.StatusActive,
	}
}

func TestFireTime(t *testing.T) {
	target := time.Date(2026, 3, 20, 17, 45, 0, 0, time.Local)
	got := FireTime(target, 3)
	want := time.Date(2026, 3, 17, 9, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("FireTime = %v, want %v", got, want)
	}
}

func TestScheduleDisabledIsNoOp(t *testing.T) {
	exact := &recordingStrategy{}
	deferred := &recordingStrategy{}
	s := NewScheduler(StaticCapabilities{Exact: true}, exact, deferred)

	sub := notifyingSub("s1", time.Now().AddDate(0, 0, 30))
	sub.NotifyEnabled = false

	if err := s.ScheduleRenewal(sub); err != nil {
		t.Fatalf("ScheduleRenewal: %v", err)
	}
	if len(exact.scheduled)+len(deferred.scheduled) != 0 {
		t.Fatal("disabled subscription scheduled a reminder")
	}
}

func TestSchedulePastFireTimeIsNoOp(t *testing.T) {
	exact := &recordingStrategy{}
	deferred := &recordingStrategy{}
	s := NewScheduler(StaticCapabilities{Exact: true}, exact, deferred)

	// Billing tomorrow with 3 lead days puts the fire time in the past.
	sub := notifyingSub("s1", time.Now().AddDate(0, 0, 1))

	if err := s.ScheduleRenewal(sub); err != nil {
		t.Fatalf("ScheduleRenewal: %v", err)
	}
	if len(exact.scheduled)+len(deferred.scheduled) != 0 {
		t.Fatal("past-due reminder was scheduled")
	}
}

func TestStrategyChosenPerCall(t *testing.T) {
	exact := &recordingStrategy{}
	deferred := &recordingStrategy{}

	available := false
	s := NewScheduler(CapabilityFunc(func() bool { return available }), exact, deferred)
	sub := notifyingSub("s1", time.Now().AddDate(0, 0, 30))

	if err := s.ScheduleRenewal(sub); err != nil {
		t.Fatalf("ScheduleRenewal: %v", err)
	}
	if len(deferred.scheduled) != 1 || len(exact.scheduled) != 0 {
		t.Fatal("unavailable exact timers should route to the deferred queue")
	}

	// Capability flips between calls; the choice must follow.
	available = true
	if err := s.ScheduleRenewal(sub); err != nil {
		t.Fatalf("ScheduleRenewal: %v", err)
	}
	if len(exact.scheduled) != 1 {
		t.Fatal("available exact timers should route to the exact strategy")
	}
}

func TestCancelHitsBothStrategies(t *testing.T) {
	exact := &recordingStrategy{}
	deferred := &recordingStrategy{}
	s := NewScheduler(StaticCapabilities{Exact: true}, exact, deferred)

	// Never scheduled; cancel still succeeds on both paths.
	if err := s.Cancel("ghost", model.KindRenewal); err != nil {
		t.Fatalf("Cancel of unscheduled pair: %v", err)
	}
	if len(exact.cancelled) != 1 || len(deferred.cancelled) != 1 {
		t.Fatal("cancel must clear both strategies")
	}
}

func TestTrialWithoutEndDateIsNoOp(t *testing.T) {
	exact := &recordingStrategy{}
	deferred := &recordingStrategy{}
	s := NewScheduler(StaticCapabilities{Exact: true}, exact, deferred)

	sub := notifyingSub("s1", time.Now().AddDate(0, 0, 30))
	if err := s.ScheduleTrialEnding(sub); err != nil {
		t.Fatalf("ScheduleTrialEnding: %v", err)
	}
	if len(exact.scheduled)+len(deferred.scheduled) != 0 {
		t.Fatal("subscription without a trial scheduled a trial reminder")
	}
}

func TestBatchContinuesPastFailures(t *testing.T) {
	boom := errors.New("boom")
	exact := &recordingStrategy{failWith: boom}
	deferred := &recordingStrategy{}

	// Exact is claimed available but fails; each item errors yet the
	// batch keeps going.
	s := NewScheduler(StaticCapabilities{Exact: true}, exact, deferred)

	subs := []model.Subscription{
		notifyingSub("s1", time.Now().AddDate(0, 0, 30)),
		notifyingSub("s2", time.Now().AddDate(0, 0, 40)),
	}
	res := s.ScheduleAllRenewals(subs)
	if res.Failed != 2 || res.Succeeded != 0 {
		t.Fatalf("batch = %+v, want 2 failures", res)
	}
	if !errors.Is(res.LastErr, boom) {
		t.Fatalf("LastErr = %v, want wrapped boom", res.LastErr)
	}
	if res.Err() == nil {
		t.Fatal("batch with zero successes must fail overall")
	}

	// One disabled item succeeds as a no-op, so the batch passes.
	disabled := notifyingSub("s3", time.Now().AddDate(0, 0, 30))
	disabled.NotifyEnabled = false
	res = s.ScheduleAllRenewals(append(subs, disabled))
	if res.Succeeded != 1 || res.Failed != 2 {
		t.Fatalf("mixed batch = %+v, want 1 success and 2 failures", res)
	}
	if res.Err() != nil {
		t.Fatalf("mixed batch overall error = %v, want nil", res.Err())
	}
}

// orderedStrategy appends every operation to a shared log so tests can
// assert cross-strategy ordering.
type orderedStrategy struct {
	label string
	ops   *[]string
}

func (o orderedStrategy) Schedule(req Request) error {
	*o.ops = append(*o.ops, o.label+":schedule:"+string(req.Kind))
	return nil
}

func (o orderedStrategy) Cancel(_ string, kind model.NotificationKind) error {
	*o.ops = append(*o.ops, o.label+":cancel:"+string(kind))
	return nil
}

func TestRescheduleCancelsBeforeScheduling(t *testing.T) {
	var ops []string
	s := NewScheduler(StaticCapabilities{Exact: true},
		orderedStrategy{label: "exact", ops: &ops},
		orderedStrategy{label: "deferred", ops: &ops},
	)

	end := time.Now().AddDate(0, 0, 20)
	sub := notifyingSub("s1", time.Now().AddDate(0, 0, 30))
	sub.TrialEndDate = &end

	if err := s.Reschedule(sub); err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	// Every cancel (both strategies, both kinds) must land before the
	// first new schedule, or a field change could leave two pending
	// reminders for one pair.
	firstSchedule := -1
	for i, op := range ops {
		if strings.Contains(op, ":schedule:") {
			firstSchedule = i
			break
		}
	}
	if firstSchedule < 0 {
		t.Fatalf("ops = %v, nothing scheduled", ops)
	}
	if firstSchedule != 4 {
		t.Fatalf("ops = %v, want 4 cancels before the first schedule", ops)
	}
	for _, op := range ops[:firstSchedule] {
		if !strings.Contains(op, ":cancel:") {
			t.Fatalf("ops = %v, op %q before first schedule is not a cancel", ops, op)
		}
	}
}

type panickyStrategy struct{}

func (panickyStrategy) Schedule(Request) error { panic("timer registry gone") }

func (panickyStrategy) Cancel(string, model.NotificationKind) error { return nil }

func TestSchedulePanicBecomesError(t *testing.T) {
	s := NewScheduler(StaticCapabilities{Exact: true}, panickyStrategy{}, &recordingStrategy{})

	sub := notifyingSub("s1", time.Now().AddDate(0, 0, 30))
	err := s.ScheduleRenewal(sub)
	if err == nil {
		t.Fatal("panic inside a strategy must surface as an error")
	}
	if !strings.Contains(err.Error(), "timer registry gone") {
		t.Fatalf("err = %v, want the panic cause carried in the message", err)
	}
}

func TestExactTimersCancelIdempotent(t *testing.T) {
	e := NewExactTimers(nopPresenter{})

	req := Request{
		SubscriptionID: "s1",
		Kind:           model.KindRenewal,
		FireAt:         time.Now().Add(time.Hour),
	}
	if err := e.Schedule(req); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if e.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", e.Pending())
	}

	for i := 0; i < 2; i++ {
		if err := e.Cancel("s1", model.KindRenewal); err != nil {
			t.Fatalf("Cancel #%d: %v", i+1, err)
		}
	}
	if e.Pending() != 0 {
		t.Fatalf("Pending after cancel = %d, want 0", e.Pending())
	}
}

func TestQueueScheduleCancelPop(t *testing.T) {
	q, err := OpenQueue(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("OpenQueue: %v", err)
	}
	defer q.Close()

	now := time.Now()
	reqs := []Request{
		{SubscriptionID: "s1", SubscriptionName: "Streamly", Kind: model.KindRenewal, FireAt: now.Add(-time.Hour)},
		{SubscriptionID: "s2", SubscriptionName: "Musely", Kind: model.KindTrialEnding, FireAt: now.Add(time.Hour)},
	}
	for _, req := range reqs {
		if err := q.Schedule(req); err != nil {
			t.Fatalf("Schedule(%s): %v", req.SubscriptionID, err)
		}
	}

	// Re-scheduling the same pair replaces, not duplicates.
	if err := q.Schedule(reqs[0]); err != nil {
		t.Fatalf("re-Schedule: %v", err)
	}
	if n, _ := q.Pending(); n != 2 {
		t.Fatalf("Pending = %d, want 2", n)
	}

	due, err := q.PopDue(now)
	if err != nil {
		t.Fatalf("PopDue: %v", err)
	}
	if len(due) != 1 || due[0].SubscriptionID != "s1" || due[0].Kind != model.KindRenewal {
		t.Fatalf("due = %+v, want only s1 renewal", due)
	}

	// Cancel is idempotent and strategy-local delete works.
	if err := q.Cancel("s2", model.KindTrialEnding); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := q.Cancel("s2", model.KindTrialEnding); err != nil {
		t.Fatalf("second Cancel: %v", err)
	}
	if n, _ := q.Pending(); n != 0 {
		t.Fatalf("Pending after cancel = %d, want 0", n)
	}

	if _, ok, err := q.NextFireAt(); err != nil || ok {
		t.Fatalf("NextFireAt on empty queue = ok=%v err=%v, want none", ok, err)
	}
}
